package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"cardforge/internal/domain"
)

// ChunkStore defines the interface for chunk persistence. Chunks are written
// once per pipeline run and read back for inspection and provenance.
type ChunkStore interface {
	// CreateBatch saves all chunks of one source in a single statement
	// sequence. Chunks are validated first.
	CreateBatch(ctx context.Context, chunks []*domain.Chunk) error

	// FindBySourceID retrieves a source's chunks ordered by sequence index.
	// Returns an empty slice when the source has no chunks.
	FindBySourceID(ctx context.Context, sourceID uuid.UUID) ([]*domain.Chunk, error)

	// DeleteBySourceID removes all chunks of a source, used when a source is
	// reprocessed.
	DeleteBySourceID(ctx context.Context, sourceID uuid.UUID) error

	// WithTx returns a ChunkStore bound to the given transaction.
	WithTx(tx *sql.Tx) ChunkStore
}
