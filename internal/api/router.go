package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"cardforge/internal/api/middleware"
)

// NewRouter assembles the API routes with the standard middleware chain.
func NewRouter(sources *SourceHandler, decks *DeckHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Trace)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sources", sources.CreateSource)
		r.Get("/sources", sources.ListSources)
		r.Get("/sources/{id}", sources.GetSource)
		r.Get("/sources/{id}/deck", decks.GetDeck)
		r.Get("/sources/{id}/deck/export", decks.ExportDeck)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}
