package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Common validation errors for Chunk.
var (
	ErrEmptyChunkID        = errors.New("chunk ID cannot be empty")
	ErrEmptyChunkSourceID  = errors.New("chunk source ID cannot be empty")
	ErrEmptyChunkText      = errors.New("chunk text cannot be empty")
	ErrInvalidChunkOffsets = errors.New("chunk end offset must be greater than start offset")
	ErrNegativeTokenCount  = errors.New("chunk token count cannot be negative")
	ErrNegativeSequence    = errors.New("chunk sequence index cannot be negative")
)

// Chunk is one bounded, token-budgeted span of a source document's text,
// used as the unit of LLM prompting. Chunks from the same source are
// produced in non-decreasing start offset order and may overlap by the
// configured amount. A Chunk is immutable once created.
type Chunk struct {
	ID            uuid.UUID `json:"id"`
	SourceID      uuid.UUID `json:"source_id"`
	Text          string    `json:"text"`
	StartOffset   int       `json:"start_offset"`
	EndOffset     int       `json:"end_offset"`
	TokenCount    int       `json:"token_count"`
	SequenceIndex int       `json:"sequence_index"`

	// Oversized marks a chunk built from a single unit whose token count
	// alone exceeds the configured budget. Such chunks are emitted rather
	// than dropped.
	Oversized bool `json:"oversized,omitempty"`

	// TokensEstimated is set when TokenCount came from the character-based
	// fallback estimator instead of the real tokenizer.
	TokensEstimated bool `json:"tokens_estimated,omitempty"`
}

// NewChunk creates a Chunk and enforces its invariants.
// Returns an error if validation fails.
func NewChunk(
	sourceID uuid.UUID,
	text string,
	startOffset, endOffset, tokenCount, sequenceIndex int,
) (*Chunk, error) {
	chunk := &Chunk{
		ID:            uuid.New(),
		SourceID:      sourceID,
		Text:          text,
		StartOffset:   startOffset,
		EndOffset:     endOffset,
		TokenCount:    tokenCount,
		SequenceIndex: sequenceIndex,
	}

	if err := chunk.Validate(); err != nil {
		return nil, err
	}

	return chunk, nil
}

// Validate checks the Chunk invariants.
// Returns an error if any field fails validation.
func (c *Chunk) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyChunkID
	}

	if c.SourceID == uuid.Nil {
		return ErrEmptyChunkSourceID
	}

	if strings.TrimSpace(c.Text) == "" {
		return ErrEmptyChunkText
	}

	if c.EndOffset <= c.StartOffset {
		return ErrInvalidChunkOffsets
	}

	if c.TokenCount < 0 {
		return ErrNegativeTokenCount
	}

	if c.SequenceIndex < 0 {
		return ErrNegativeSequence
	}

	return nil
}
