// Package deck assembles validated cards into the final per-source deck.
package deck

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"cardforge/internal/domain"
)

// RunStats carries the per-source counters the assembler cannot derive from
// the validation results themselves.
type RunStats struct {
	// TotalChunks is the number of chunks the source was split into.
	TotalChunks int

	// FailedChunks counts chunks whose LLM call or response parse failed;
	// they contribute zero candidates.
	FailedChunks int

	// DroppedInParse counts structurally incomplete entries dropped while
	// parsing model responses.
	DroppedInParse int
}

// Assembler builds decks from ordered validation results.
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler(logger *slog.Logger) (*Assembler, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Assembler{logger: logger.With("component", "deck_assembler")}, nil
}

// Assemble concatenates the accepted cards of each chunk's validation result
// in chunk sequence order and computes the run statistics. Duplicate
// suppression is not re-applied here: it already happened chunk-incrementally
// during validation.
//
// Results arriving out of order are sorted by sequence index, so the deck's
// card order is always chunk order, then candidate order within each chunk.
func (a *Assembler) Assemble(
	sourceID uuid.UUID,
	results []domain.ValidationResult,
	run RunStats,
) (*domain.Deck, error) {
	if sourceID == uuid.Nil {
		return nil, errors.New("source ID cannot be empty")
	}

	ordered := make([]domain.ValidationResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SequenceIndex < ordered[j].SequenceIndex
	})

	stats := domain.DeckStats{
		TotalChunks:     run.TotalChunks,
		FailedChunks:    run.FailedChunks,
		DroppedInParse:  run.DroppedInParse,
		RejectedByCause: make(map[domain.RejectionReason]int),
	}

	var cards []*domain.Card
	for _, result := range ordered {
		stats.CandidatesSeen += len(result.Accepted) + len(result.Rejected)
		stats.CardsAccepted += len(result.Accepted)
		for _, rejected := range result.Rejected {
			stats.RejectedByCause[rejected.Reason]++
		}
		cards = append(cards, result.Accepted...)
	}

	deck := &domain.Deck{
		ID:        uuid.New(),
		SourceID:  sourceID,
		Cards:     cards,
		Stats:     stats,
		CreatedAt: time.Now().UTC(),
	}

	a.logger.Info("deck assembled",
		"source_id", sourceID.String(),
		"cards", deck.CardCount(),
		"candidates_seen", stats.CandidatesSeen,
		"failed_chunks", stats.FailedChunks)

	return deck, nil
}
