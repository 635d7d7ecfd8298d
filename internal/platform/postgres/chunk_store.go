package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"cardforge/internal/domain"
	"cardforge/internal/platform/logger"
	"cardforge/internal/store"
)

// ChunkStore implements store.ChunkStore using PostgreSQL.
type ChunkStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewChunkStore creates a PostgreSQL implementation of store.ChunkStore.
// A nil logger falls back to slog.Default.
func NewChunkStore(db store.DBTX, logger *slog.Logger) *ChunkStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ChunkStore{
		db:     db,
		logger: logger.With(slog.String("component", "chunk_store")),
	}
}

var _ store.ChunkStore = (*ChunkStore)(nil)

// CreateBatch implements store.ChunkStore.CreateBatch.
func (s *ChunkStore) CreateBatch(ctx context.Context, chunks []*domain.Chunk) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(chunks) == 0 {
		return nil
	}

	for _, chunk := range chunks {
		if err := chunk.Validate(); err != nil {
			log.Warn("chunk validation failed during batch create",
				slog.String("error", err.Error()),
				slog.String("chunk_id", chunk.ID.String()))
			return err
		}
	}

	query := `
		INSERT INTO chunks (id, source_id, text, start_offset, end_offset,
			token_count, sequence_index, oversized, tokens_estimated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close statement", slog.String("error", err.Error()))
		}
	}()

	for _, chunk := range chunks {
		_, err := stmt.ExecContext(
			ctx,
			chunk.ID,
			chunk.SourceID,
			chunk.Text,
			chunk.StartOffset,
			chunk.EndOffset,
			chunk.TokenCount,
			chunk.SequenceIndex,
			chunk.Oversized,
			chunk.TokensEstimated,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode {
				return fmt.Errorf("%w: source with ID %s not found",
					store.ErrInvalidEntity, chunk.SourceID)
			}

			log.Error("failed to insert chunk",
				slog.String("error", err.Error()),
				slog.String("chunk_id", chunk.ID.String()))
			return err
		}
	}

	log.Info("chunks saved",
		slog.String("source_id", chunks[0].SourceID.String()),
		slog.Int("count", len(chunks)))
	return nil
}

// FindBySourceID implements store.ChunkStore.FindBySourceID.
func (s *ChunkStore) FindBySourceID(ctx context.Context, sourceID uuid.UUID) ([]*domain.Chunk, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, source_id, text, start_offset, end_offset,
			token_count, sequence_index, oversized, tokens_estimated
		FROM chunks
		WHERE source_id = $1
		ORDER BY sequence_index ASC
	`

	rows, err := s.db.QueryContext(ctx, query, sourceID)
	if err != nil {
		log.Error("failed to query chunks by source",
			slog.String("error", err.Error()),
			slog.String("source_id", sourceID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	chunks := []*domain.Chunk{}
	for rows.Next() {
		var chunk domain.Chunk
		err := rows.Scan(
			&chunk.ID,
			&chunk.SourceID,
			&chunk.Text,
			&chunk.StartOffset,
			&chunk.EndOffset,
			&chunk.TokenCount,
			&chunk.SequenceIndex,
			&chunk.Oversized,
			&chunk.TokensEstimated,
		)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, &chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return chunks, nil
}

// DeleteBySourceID implements store.ChunkStore.DeleteBySourceID.
func (s *ChunkStore) DeleteBySourceID(ctx context.Context, sourceID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE source_id = $1`, sourceID)
	if err != nil {
		log.Error("failed to delete chunks by source",
			slog.String("error", err.Error()),
			slog.String("source_id", sourceID.String()))
		return err
	}

	return nil
}

// WithTx implements store.ChunkStore.WithTx.
func (s *ChunkStore) WithTx(tx *sql.Tx) store.ChunkStore {
	return &ChunkStore{db: tx, logger: s.logger}
}
