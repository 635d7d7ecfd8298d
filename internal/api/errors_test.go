package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"cardforge/internal/export"
	"cardforge/internal/ingest"
	"cardforge/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		status int
	}{
		{store.ErrSourceNotFound, http.StatusNotFound},
		{store.ErrDeckNotFound, http.StatusNotFound},
		{fmt.Errorf("loading: %w", store.ErrNotFound), http.StatusNotFound},
		{store.ErrDuplicate, http.StatusConflict},
		{store.ErrInvalidEntity, http.StatusBadRequest},
		{ingest.ErrUnsupportedFormat, http.StatusBadRequest},
		{ingest.ErrNoTextContent, http.StatusBadRequest},
		{export.ErrUnknownFormat, http.StatusBadRequest},
		{errors.New("something unexpected"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.status, MapErrorToStatusCode(tc.err), tc.err.Error())
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Source not found", GetSafeErrorMessage(store.ErrSourceNotFound))
	assert.Equal(t, "Deck not found", GetSafeErrorMessage(store.ErrDeckNotFound))
	assert.Equal(t, "Unsupported document format", GetSafeErrorMessage(ingest.ErrUnsupportedFormat))

	// Internal details never leak through the safe message.
	internal := errors.New("pq: connection refused at 10.0.0.3:5432")
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(internal))
	assert.NotContains(t, GetSafeErrorMessage(internal), "10.0.0.3")
}
