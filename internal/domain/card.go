package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Difficulty is the model's estimate of how hard a card is. It is advisory
// metadata; unknown values are normalized away rather than rejected.
type Difficulty string

// Recognized difficulty levels.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Common validation errors for Card.
var (
	ErrEmptyCardID      = errors.New("card ID cannot be empty")
	ErrEmptyCardChunkID = errors.New("card chunk ID cannot be empty")
	ErrEmptyCardFront   = errors.New("card front cannot be empty")
	ErrEmptyCardBack    = errors.New("card back cannot be empty")
)

// CardCandidate is an unvalidated front/back pair extracted from raw model
// output. Candidates are transient: they exist only between response parsing
// and validation.
type CardCandidate struct {
	Front      string     `json:"front"`
	Back       string     `json:"back"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	ChunkID    uuid.UUID  `json:"chunk_id"`
}

// Card is a validated candidate promoted with a stable identifier. The
// ChunkID is a non-owning back-reference recording which chunk the card was
// generated from. A Card is immutable once accepted.
type Card struct {
	ID         uuid.UUID  `json:"id"`
	Front      string     `json:"front"`
	Back       string     `json:"back"`
	ChunkID    uuid.UUID  `json:"chunk_id"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewCard promotes a candidate to a Card under the given identifier.
// The caller supplies the ID so that identifier assignment can be
// deterministic. Returns an error if validation fails.
func NewCard(id uuid.UUID, candidate CardCandidate) (*Card, error) {
	card := &Card{
		ID:         id,
		Front:      strings.TrimSpace(candidate.Front),
		Back:       strings.TrimSpace(candidate.Back),
		ChunkID:    candidate.ChunkID,
		Difficulty: normalizeDifficulty(candidate.Difficulty),
		CreatedAt:  time.Now().UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCardID
	}

	if c.ChunkID == uuid.Nil {
		return ErrEmptyCardChunkID
	}

	if c.Front == "" {
		return ErrEmptyCardFront
	}

	if c.Back == "" {
		return ErrEmptyCardBack
	}

	return nil
}

// normalizeDifficulty lowercases a recognized difficulty and drops anything
// else. Models frequently invent values here; an empty difficulty is valid.
func normalizeDifficulty(d Difficulty) Difficulty {
	switch Difficulty(strings.ToLower(string(d))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyMedium:
		return DifficultyMedium
	case DifficultyHard:
		return DifficultyHard
	default:
		return ""
	}
}
