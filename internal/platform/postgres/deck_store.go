package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"cardforge/internal/domain"
	"cardforge/internal/platform/logger"
	"cardforge/internal/store"
)

// DeckStore implements store.DeckStore using PostgreSQL. Deck statistics are
// stored as a JSONB column; cards live in their own table keyed by deck ID
// with an explicit position preserving deck order.
type DeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewDeckStore creates a PostgreSQL implementation of store.DeckStore.
// A nil logger falls back to slog.Default.
func NewDeckStore(db store.DBTX, logger *slog.Logger) *DeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

var _ store.DeckStore = (*DeckStore)(nil)

// Create implements store.DeckStore.Create.
func (s *DeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if deck == nil {
		return errors.New("deck cannot be nil")
	}

	stats, err := json.Marshal(deck.Stats)
	if err != nil {
		return fmt.Errorf("marshaling deck stats: %w", err)
	}

	deckQuery := `
		INSERT INTO decks (id, source_id, stats, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = s.db.ExecContext(ctx, deckQuery, deck.ID, deck.SourceID, stats, deck.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode {
			return fmt.Errorf("%w: source with ID %s not found",
				store.ErrInvalidEntity, deck.SourceID)
		}

		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}

	cardQuery := `
		INSERT INTO cards (id, deck_id, chunk_id, front, back, difficulty, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	stmt, err := s.db.PrepareContext(ctx, cardQuery)
	if err != nil {
		return err
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close statement", slog.String("error", err.Error()))
		}
	}()

	for position, card := range deck.Cards {
		if err := card.Validate(); err != nil {
			log.Warn("card validation failed during deck create",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return err
		}

		_, err := stmt.ExecContext(
			ctx,
			card.ID,
			deck.ID,
			card.ChunkID,
			card.Front,
			card.Back,
			card.Difficulty,
			position,
			card.CreatedAt,
		)
		if err != nil {
			log.Error("failed to insert card",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()),
				slog.String("deck_id", deck.ID.String()))
			return err
		}
	}

	log.Info("deck saved",
		slog.String("deck_id", deck.ID.String()),
		slog.String("source_id", deck.SourceID.String()),
		slog.Int("cards", deck.CardCount()))
	return nil
}

// GetBySourceID implements store.DeckStore.GetBySourceID.
func (s *DeckStore) GetBySourceID(ctx context.Context, sourceID uuid.UUID) (*domain.Deck, error) {
	query := `
		SELECT id, source_id, stats, created_at
		FROM decks
		WHERE source_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	return s.getDeck(ctx, query, sourceID)
}

// GetByID implements store.DeckStore.GetByID.
func (s *DeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	query := `
		SELECT id, source_id, stats, created_at
		FROM decks
		WHERE id = $1
	`
	return s.getDeck(ctx, query, id)
}

func (s *DeckStore) getDeck(ctx context.Context, query string, arg any) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deck domain.Deck
	var stats []byte

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&deck.ID,
		&deck.SourceID,
		&stats,
		&deck.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDeckNotFound
		}
		log.Error("failed to get deck", slog.String("error", err.Error()))
		return nil, err
	}

	if err := json.Unmarshal(stats, &deck.Stats); err != nil {
		return nil, fmt.Errorf("unmarshaling deck stats: %w", err)
	}

	cards, err := s.loadCards(ctx, deck.ID)
	if err != nil {
		return nil, err
	}
	deck.Cards = cards

	return &deck, nil
}

func (s *DeckStore) loadCards(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, chunk_id, front, back, difficulty, created_at
		FROM cards
		WHERE deck_id = $1
		ORDER BY position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, deckID)
	if err != nil {
		log.Error("failed to query deck cards",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	cards := []*domain.Card{}
	for rows.Next() {
		var card domain.Card
		var difficulty string

		err := rows.Scan(
			&card.ID,
			&card.ChunkID,
			&card.Front,
			&card.Back,
			&difficulty,
			&card.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		card.Difficulty = domain.Difficulty(difficulty)
		cards = append(cards, &card)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

// DeleteBySourceID implements store.DeckStore.DeleteBySourceID. Cards go with
// their deck via the ON DELETE CASCADE constraint.
func (s *DeckStore) DeleteBySourceID(ctx context.Context, sourceID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE source_id = $1`, sourceID)
	if err != nil {
		log.Error("failed to delete decks by source",
			slog.String("error", err.Error()),
			slog.String("source_id", sourceID.String()))
		return err
	}

	return nil
}

// WithTx implements store.DeckStore.WithTx.
func (s *DeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &DeckStore{db: tx, logger: s.logger}
}
