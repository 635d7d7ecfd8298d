package store

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Compile-time checks that both connection pools and transactions satisfy
// the DBTX abstraction.
var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

func TestEntityNotFoundErrorsWrapErrNotFound(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrSourceNotFound, ErrDeckNotFound, ErrCardNotFound} {
		assert.ErrorIs(t, err, ErrNotFound)
		assert.True(t, IsNotFoundError(err))
	}
}

func TestIsNotFoundErrorWrapped(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("loading deck: %w", ErrDeckNotFound)
	assert.True(t, IsNotFoundError(wrapped))

	assert.False(t, IsNotFoundError(errors.New("connection refused")))
	assert.False(t, IsNotFoundError(ErrDuplicate))
	assert.False(t, IsNotFoundError(nil))
}
