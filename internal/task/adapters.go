package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"cardforge/internal/domain"
	"cardforge/internal/pipeline"
	"cardforge/internal/store"
)

// sourceStoreAdapter implements SourceService on top of a store.SourceStore.
type sourceStoreAdapter struct {
	sources store.SourceStore
}

// NewSourceService adapts a SourceStore to the SourceService interface used
// by generation tasks.
func NewSourceService(sources store.SourceStore) (SourceService, error) {
	if sources == nil {
		return nil, errors.New("source store cannot be nil")
	}
	return &sourceStoreAdapter{sources: sources}, nil
}

func (a *sourceStoreAdapter) GetSource(ctx context.Context, sourceID uuid.UUID) (*domain.Source, error) {
	return a.sources.GetByID(ctx, sourceID)
}

func (a *sourceStoreAdapter) UpdateSourceStatus(
	ctx context.Context,
	sourceID uuid.UUID,
	status domain.SourceStatus,
) error {
	return a.sources.UpdateStatus(ctx, sourceID, status)
}

// txResultSaver implements ResultSaver by writing chunks and deck inside a
// single database transaction.
type txResultSaver struct {
	db     *sql.DB
	chunks store.ChunkStore
	decks  store.DeckStore
	logger *slog.Logger
}

// NewResultSaver creates a ResultSaver that persists pipeline results
// transactionally. A rerun replaces the previous chunks and deck of the
// source, so readers never see a mix of two runs.
func NewResultSaver(
	db *sql.DB,
	chunks store.ChunkStore,
	decks store.DeckStore,
	logger *slog.Logger,
) (ResultSaver, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}
	if chunks == nil {
		return nil, errors.New("chunk store cannot be nil")
	}
	if decks == nil {
		return nil, errors.New("deck store cannot be nil")
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	return &txResultSaver{db: db, chunks: chunks, decks: decks, logger: logger}, nil
}

func (s *txResultSaver) SaveResult(ctx context.Context, result *pipeline.Result) error {
	if result == nil || result.Deck == nil {
		return errors.New("result cannot be nil")
	}

	sourceID := result.Deck.SourceID

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		chunks := s.chunks.WithTx(tx)
		decks := s.decks.WithTx(tx)

		if err := decks.DeleteBySourceID(ctx, sourceID); err != nil {
			return fmt.Errorf("deleting previous decks: %w", err)
		}
		if err := chunks.DeleteBySourceID(ctx, sourceID); err != nil {
			return fmt.Errorf("deleting previous chunks: %w", err)
		}

		if len(result.Chunks) > 0 {
			if err := chunks.CreateBatch(ctx, result.Chunks); err != nil {
				return fmt.Errorf("saving chunks: %w", err)
			}
		}
		if err := decks.Create(ctx, result.Deck); err != nil {
			return fmt.Errorf("saving deck: %w", err)
		}

		s.logger.Debug("generation result saved",
			"source_id", sourceID,
			"deck_id", result.Deck.ID,
			"chunks", len(result.Chunks),
			"cards", result.Deck.CardCount())
		return nil
	})
}
