package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"cardforge/internal/domain"
)

// DeckStore defines the interface for deck and card persistence. A deck and
// its cards are saved together; the deck owns its card rows.
type DeckStore interface {
	// Create saves a deck and all of its cards. Expected to run inside a
	// transaction so a partial deck is never visible.
	Create(ctx context.Context, deck *domain.Deck) error

	// GetBySourceID retrieves the most recent deck for a source, cards
	// included in deck order. Returns ErrDeckNotFound if the source has no
	// deck yet.
	GetBySourceID(ctx context.Context, sourceID uuid.UUID) (*domain.Deck, error)

	// GetByID retrieves a deck by its unique ID, cards included.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// DeleteBySourceID removes a source's decks and their cards, used when a
	// source is reprocessed.
	DeleteBySourceID(ctx context.Context, sourceID uuid.UUID) error

	// WithTx returns a DeckStore bound to the given transaction.
	WithTx(tx *sql.Tx) DeckStore
}
