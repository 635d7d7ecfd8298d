package deck

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardforge/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustAssembler(t *testing.T) *Assembler {
	t.Helper()
	a, err := NewAssembler(discardLogger())
	require.NoError(t, err)
	return a
}

func card(t *testing.T, chunkID uuid.UUID, front string) *domain.Card {
	t.Helper()
	c, err := domain.NewCard(uuid.New(), domain.CardCandidate{
		Front:   front,
		Back:    "an answer",
		ChunkID: chunkID,
	})
	require.NoError(t, err)
	return c
}

func TestNewAssemblerNilLogger(t *testing.T) {
	t.Parallel()

	_, err := NewAssembler(nil)
	assert.Error(t, err)
}

func TestAssembleEmptyResults(t *testing.T) {
	t.Parallel()

	a := mustAssembler(t)
	sourceID := uuid.New()

	deck, err := a.Assemble(sourceID, nil, RunStats{TotalChunks: 0})
	require.NoError(t, err)

	assert.Equal(t, sourceID, deck.SourceID)
	assert.NotEqual(t, uuid.Nil, deck.ID)
	assert.Equal(t, 0, deck.CardCount())
	assert.Equal(t, 0, deck.Stats.CandidatesSeen)
	assert.NotNil(t, deck.Stats.RejectedByCause)
}

func TestAssembleNilSourceID(t *testing.T) {
	t.Parallel()

	a := mustAssembler(t)
	_, err := a.Assemble(uuid.Nil, nil, RunStats{})
	assert.Error(t, err)
}

func TestAssembleOrdersBySequenceIndex(t *testing.T) {
	t.Parallel()

	a := mustAssembler(t)
	sourceID := uuid.New()
	chunkA, chunkB := uuid.New(), uuid.New()

	// Results arrive out of order, as they would from parallel workers.
	results := []domain.ValidationResult{
		{
			ChunkID:       chunkB,
			SequenceIndex: 1,
			Accepted:      []*domain.Card{card(t, chunkB, "Third?"), card(t, chunkB, "Fourth?")},
		},
		{
			ChunkID:       chunkA,
			SequenceIndex: 0,
			Accepted:      []*domain.Card{card(t, chunkA, "First?"), card(t, chunkA, "Second?")},
		},
	}

	deck, err := a.Assemble(sourceID, results, RunStats{TotalChunks: 2})
	require.NoError(t, err)

	require.Equal(t, 4, deck.CardCount())
	assert.Equal(t, "First?", deck.Cards[0].Front)
	assert.Equal(t, "Second?", deck.Cards[1].Front)
	assert.Equal(t, "Third?", deck.Cards[2].Front)
	assert.Equal(t, "Fourth?", deck.Cards[3].Front)
}

func TestAssembleStats(t *testing.T) {
	t.Parallel()

	a := mustAssembler(t)
	sourceID := uuid.New()
	chunkA, chunkB := uuid.New(), uuid.New()

	results := []domain.ValidationResult{
		{
			ChunkID:       chunkA,
			SequenceIndex: 0,
			Accepted: []*domain.Card{
				card(t, chunkA, "Q1?"), card(t, chunkA, "Q2?"), card(t, chunkA, "Q3?"),
			},
		},
		{
			ChunkID:       chunkB,
			SequenceIndex: 1,
			Accepted:      []*domain.Card{card(t, chunkB, "Q4?")},
			Rejected: []domain.RejectedCard{
				{
					Candidate: domain.CardCandidate{Front: "q1?", Back: "dup", ChunkID: chunkB},
					Reason:    domain.RejectionDuplicateContent,
				},
			},
		},
	}

	deck, err := a.Assemble(sourceID, results, RunStats{
		TotalChunks:    3,
		FailedChunks:   1,
		DroppedInParse: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, deck.CardCount())
	assert.Equal(t, 3, deck.Stats.TotalChunks)
	assert.Equal(t, 1, deck.Stats.FailedChunks)
	assert.Equal(t, 2, deck.Stats.DroppedInParse)
	assert.Equal(t, 5, deck.Stats.CandidatesSeen)
	assert.Equal(t, 4, deck.Stats.CardsAccepted)
	assert.Equal(t, 1, deck.Stats.RejectedByCause[domain.RejectionDuplicateContent])
}

func TestAssembleIdentifierStability(t *testing.T) {
	t.Parallel()

	a := mustAssembler(t)
	sourceID := uuid.New()
	chunkID := uuid.New()

	cards := []*domain.Card{card(t, chunkID, "Q1?"), card(t, chunkID, "Q2?")}
	results := []domain.ValidationResult{
		{ChunkID: chunkID, SequenceIndex: 0, Accepted: cards},
	}

	first, err := a.Assemble(sourceID, results, RunStats{TotalChunks: 1})
	require.NoError(t, err)
	second, err := a.Assemble(sourceID, results, RunStats{TotalChunks: 1})
	require.NoError(t, err)

	require.Equal(t, first.CardCount(), second.CardCount())
	for i := range first.Cards {
		assert.Equal(t, first.Cards[i].ID, second.Cards[i].ID)
	}
}
