package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cardforge/internal/api/shared"
	"cardforge/internal/domain"
	"cardforge/internal/ingest"
	"cardforge/internal/store"
	"cardforge/internal/task"
)

// maxUploadBytes bounds the size of an uploaded document.
const maxUploadBytes = 20 << 20

// TaskFactory creates background tasks for newly uploaded sources.
type TaskFactory interface {
	CreateTask(sourceID uuid.UUID) (task.Task, error)
}

// CreateSourceRequest is the JSON request body for creating a source from
// raw text. File uploads use multipart/form-data instead.
type CreateSourceRequest struct {
	Title    string `json:"title"`
	Filename string `json:"filename" validate:"required"`
	Text     string `json:"text"     validate:"required,min=1"`
}

// SourceResponse represents the response data for a source.
type SourceResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Format     string    `json:"format"`
	Language   string    `json:"language,omitempty"`
	Status     string    `json:"status"`
	TextLength int       `json:"text_length"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SourceHandler handles source-related HTTP requests.
type SourceHandler struct {
	sources store.SourceStore
	loader  *ingest.Loader
	factory TaskFactory
	queue   task.TaskQueueWriter
	logger  *slog.Logger
}

// NewSourceHandler creates a new SourceHandler.
func NewSourceHandler(
	sources store.SourceStore,
	loader *ingest.Loader,
	factory TaskFactory,
	queue task.TaskQueueWriter,
	logger *slog.Logger,
) *SourceHandler {
	return &SourceHandler{
		sources: sources,
		loader:  loader,
		factory: factory,
		queue:   queue,
		logger:  logger.With("component", "source_handler"),
	}
}

// CreateSource handles POST /api/sources requests. It accepts either a
// multipart upload with a "file" part or a JSON body with raw text, stores
// the source, and enqueues deck generation. Responds 202 Accepted because
// generation happens asynchronously.
func (h *SourceHandler) CreateSource(w http.ResponseWriter, r *http.Request) {
	title, filename, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	source, err := h.loader.Load(title, filename, data)
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	if err := h.sources.Create(r.Context(), source); err != nil {
		h.logger.Error("failed to create source", "error", err)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	generationTask, err := h.factory.CreateTask(source.ID)
	if err != nil {
		h.logger.Error("failed to create generation task", "error", err, "source_id", source.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to schedule processing")
		return
	}

	if err := h.queue.Enqueue(generationTask); err != nil {
		h.logger.Error("failed to enqueue generation task", "error", err, "source_id", source.ID)
		status := http.StatusInternalServerError
		if errors.Is(err, task.ErrQueueFull) {
			status = http.StatusServiceUnavailable
		}
		shared.RespondWithError(w, r, status, "Failed to schedule processing")
		return
	}

	h.logger.Info("source accepted for processing",
		"source_id", source.ID,
		"format", source.Format,
		"text_length", len(source.Text))

	shared.RespondWithJSON(w, r, http.StatusAccepted, sourceToResponse(source))
}

// GetSource handles GET /api/sources/{id} requests.
func (h *SourceHandler) GetSource(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid source ID")
		return
	}

	source, err := h.sources.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sourceToResponse(source))
}

// ListSources handles GET /api/sources requests, filtered by the required
// status query parameter.
func (h *SourceHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "status query parameter is required")
		return
	}
	status, err := domain.ParseSourceStatus(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Unknown source status")
		return
	}

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	sources, err := h.sources.FindByStatus(r.Context(), status, limit, offset)
	if err != nil {
		h.logger.Error("failed to list sources", "error", err, "status", status)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	responses := make([]SourceResponse, 0, len(sources))
	for _, source := range sources {
		responses = append(responses, sourceToResponse(source))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// readUpload extracts title, filename and content from either a multipart
// upload or a JSON body. On failure it writes the error response and
// returns ok=false.
func (h *SourceHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, string, []byte, bool) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart upload")
			return "", "", nil, false
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Missing file part")
			return "", "", nil, false
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Failed to read uploaded file")
			return "", "", nil, false
		}
		if len(data) > maxUploadBytes {
			shared.RespondWithError(w, r, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
			return "", "", nil, false
		}

		return r.FormValue("title"), header.Filename, data, true
	}

	var req CreateSourceRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return "", "", nil, false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: filename and text are required")
		return "", "", nil, false
	}

	return req.Title, req.Filename, []byte(req.Text), true
}

func sourceToResponse(source *domain.Source) SourceResponse {
	return SourceResponse{
		ID:         source.ID.String(),
		Title:      source.Title,
		Format:     string(source.Format),
		Language:   source.Language,
		Status:     string(source.Status),
		TextLength: len(source.Text),
		CreatedAt:  source.CreatedAt,
		UpdatedAt:  source.UpdatedAt,
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
