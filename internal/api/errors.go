// Package api exposes the HTTP surface of the service: source upload and
// inspection, deck retrieval, and deck export.
package api

import (
	"errors"
	"net/http"

	"cardforge/internal/export"
	"cardforge/internal/ingest"
	"cardforge/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, ingest.ErrUnsupportedFormat),
		errors.Is(err, ingest.ErrNoTextContent),
		errors.Is(err, export.ErrUnknownFormat):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// error.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, store.ErrSourceNotFound):
		return "Source not found"

	case errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, ingest.ErrUnsupportedFormat):
		return "Unsupported document format"

	case errors.Is(err, ingest.ErrNoTextContent):
		return "Document contains no extractable text"

	case errors.Is(err, export.ErrUnknownFormat):
		return "Unknown export format"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}
