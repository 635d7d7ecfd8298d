package domain

import (
	"time"

	"github.com/google/uuid"
)

// RejectionReason is the enumerated reason code attached to a rejected card
// candidate. Reasons are mutually exclusive: the first failing rule wins.
type RejectionReason string

// Rejection reason codes, in the order the rules are applied.
const (
	RejectionEmptyField       RejectionReason = "empty_field"
	RejectionTooShort         RejectionReason = "too_short"
	RejectionTooLong          RejectionReason = "too_long"
	RejectionDuplicateContent RejectionReason = "duplicate_content"
	RejectionLanguageMismatch RejectionReason = "language_mismatch"
)

// RejectedCard pairs a failed candidate with the reason it was rejected.
type RejectedCard struct {
	Candidate CardCandidate   `json:"candidate"`
	Reason    RejectionReason `json:"reason"`
}

// ValidationResult is the outcome of validating one chunk's candidates.
// It is transient: produced by the validator, consumed by the assembler.
type ValidationResult struct {
	ChunkID       uuid.UUID      `json:"chunk_id"`
	SequenceIndex int            `json:"sequence_index"`
	Accepted      []*Card        `json:"accepted"`
	Rejected      []RejectedCard `json:"rejected"`
}

// DeckStats summarizes a generation run for one source.
type DeckStats struct {
	TotalChunks     int                     `json:"total_chunks"`
	FailedChunks    int                     `json:"failed_chunks"`
	CandidatesSeen  int                     `json:"candidates_seen"`
	CardsAccepted   int                     `json:"cards_accepted"`
	DroppedInParse  int                     `json:"dropped_in_parse"`
	RejectedByCause map[RejectionReason]int `json:"rejected_by_cause"`
}

// Deck is the final ordered collection of accepted cards for one source
// document. The deck exclusively owns its card sequence; card order follows
// chunk sequence order, then candidate order within each chunk.
type Deck struct {
	ID        uuid.UUID `json:"id"`
	SourceID  uuid.UUID `json:"source_id"`
	Cards     []*Card   `json:"cards"`
	Stats     DeckStats `json:"stats"`
	CreatedAt time.Time `json:"created_at"`
}

// CardCount returns the number of cards in the deck.
func (d *Deck) CardCount() int {
	return len(d.Cards)
}
