// Package store provides abstractions and implementations for data
// persistence.
package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"cardforge/internal/domain"
)

// SourceStore defines the interface for source document persistence.
type SourceStore interface {
	// Create saves a new source. It validates the entity first and returns
	// the domain validation error if the data is invalid.
	Create(ctx context.Context, source *domain.Source) error

	// GetByID retrieves a source by its unique ID.
	// Returns ErrSourceNotFound if the source does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Source, error)

	// UpdateStatus updates the status of an existing source.
	// Returns ErrSourceNotFound if the source does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SourceStatus) error

	// FindByStatus retrieves sources with the given status, newest first.
	// Returns an empty slice when nothing matches.
	FindByStatus(ctx context.Context, status domain.SourceStatus, limit, offset int) ([]*domain.Source, error)

	// WithTx returns a SourceStore bound to the given transaction.
	WithTx(tx *sql.Tx) SourceStore
}
