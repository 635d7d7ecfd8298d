package api

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cardforge/internal/api/shared"
	"cardforge/internal/export"
	"cardforge/internal/store"
)

// DeckHandler handles deck retrieval and export HTTP requests.
type DeckHandler struct {
	decks    store.DeckStore
	exporter *export.Exporter
	logger   *slog.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(decks store.DeckStore, exporter *export.Exporter, logger *slog.Logger) *DeckHandler {
	return &DeckHandler{
		decks:    decks,
		exporter: exporter,
		logger:   logger.With("component", "deck_handler"),
	}
}

// GetDeck handles GET /api/sources/{id}/deck requests, returning the most
// recent deck generated for the source.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	sourceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid source ID")
		return
	}

	deck, err := h.decks.GetBySourceID(r.Context(), sourceID)
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deck)
}

// ExportDeck handles GET /api/sources/{id}/deck/export requests. The format
// query parameter selects the serialization; it defaults to JSON.
func (h *DeckHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	sourceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid source ID")
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	deck, err := h.decks.GetBySourceID(r.Context(), sourceID)
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	// Serialize into a buffer first so an export failure still produces a
	// clean JSON error response.
	var buf bytes.Buffer
	if err := h.exporter.Write(&buf, deck, format); err != nil {
		h.logger.Error("failed to export deck", "error", err, "deck_id", deck.ID, "format", format)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to export deck")
		return
	}

	filename := fmt.Sprintf("deck-%s.%s", deck.ID, h.exporter.FileExtension(format))
	w.Header().Set("Content-Type", h.exporter.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to write export response", "error", err, "deck_id", deck.ID)
	}
}
