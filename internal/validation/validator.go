// Package validation applies the card quality rules that decide which
// candidates from the model become deck cards.
//
// Rules run in a fixed order and the first failing rule determines the
// rejection reason, so reasons are mutually exclusive. Duplicate detection is
// chunk-incremental: the validator is fed the accumulated accepted set of all
// previously validated chunks of the same source, which is why chunks must be
// validated in sequence-index order.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/RadhiFadlillah/whatlanggo"
	"github.com/google/uuid"

	"cardforge/internal/domain"
)

// ErrInvalidConfig is returned for unusable validation parameters.
var ErrInvalidConfig = errors.New("invalid validation configuration")

// languageConfidenceThreshold gates the language-mismatch heuristic. Short
// card texts routinely confuse the detector, so only confident detections
// count; false negatives are acceptable.
const languageConfidenceThreshold = 0.8

// Config bounds the card quality rules. A zero MinCardLength disables the
// too-short rule beyond the empty-field check.
type Config struct {
	MinCardLength    int
	MaxCardLength    int
	MaxCardsPerChunk int
	LanguageCheck    bool
}

// Validator applies the quality rules to one chunk's candidates at a time.
type Validator struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Validator, validating the configuration.
func New(cfg Config, logger *slog.Logger) (*Validator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.MaxCardLength <= 0 {
		return nil, fmt.Errorf("%w: max card length must be positive, got %d", ErrInvalidConfig, cfg.MaxCardLength)
	}

	if cfg.MinCardLength < 0 || cfg.MinCardLength >= cfg.MaxCardLength {
		return nil, fmt.Errorf("%w: min card length must satisfy 0 <= min < max, got min=%d max=%d",
			ErrInvalidConfig, cfg.MinCardLength, cfg.MaxCardLength)
	}

	if cfg.MaxCardsPerChunk <= 0 {
		return nil, fmt.Errorf("%w: max cards per chunk must be positive, got %d", ErrInvalidConfig, cfg.MaxCardsPerChunk)
	}

	return &Validator{
		cfg:    cfg,
		logger: logger.With("component", "card_validator"),
	}, nil
}

// AcceptedSet holds the normalized front texts accepted so far for one
// source. It is not safe for concurrent use: the pipeline guarantees a
// single ordered merge pass per source.
type AcceptedSet struct {
	fronts map[string]struct{}
}

// NewAcceptedSet returns an empty accepted set.
func NewAcceptedSet() *AcceptedSet {
	return &AcceptedSet{fronts: make(map[string]struct{})}
}

func (s *AcceptedSet) contains(normalizedFront string) bool {
	_, ok := s.fronts[normalizedFront]
	return ok
}

func (s *AcceptedSet) add(normalizedFront string) {
	s.fronts[normalizedFront] = struct{}{}
}

// Len returns the number of distinct accepted fronts.
func (s *AcceptedSet) Len() int {
	return len(s.fronts)
}

// Validate applies the quality rules to one chunk's candidates against the
// accumulated accepted set, which it updates in place with every acceptance.
//
// Accepted candidates are promoted to Cards with deterministic identifiers:
// the ID is derived from the chunk ID and the candidate's input position, so
// re-validating the same inputs in the same order yields the same IDs.
// Candidates beyond MaxCardsPerChunk are truncated before the rules run;
// the prompt already asks the model for at most that many cards.
func (v *Validator) Validate(
	chunk *domain.Chunk,
	candidates []domain.CardCandidate,
	sourceLanguage string,
	accepted *AcceptedSet,
) (domain.ValidationResult, error) {
	if chunk == nil {
		return domain.ValidationResult{}, errors.New("chunk cannot be nil")
	}
	if accepted == nil {
		return domain.ValidationResult{}, errors.New("accepted set cannot be nil")
	}

	result := domain.ValidationResult{
		ChunkID:       chunk.ID,
		SequenceIndex: chunk.SequenceIndex,
	}

	if len(candidates) > v.cfg.MaxCardsPerChunk {
		v.logger.Debug("truncating candidate list to per-chunk cap",
			"chunk_id", chunk.ID.String(),
			"candidates", len(candidates),
			"cap", v.cfg.MaxCardsPerChunk)
		candidates = candidates[:v.cfg.MaxCardsPerChunk]
	}

	for i, candidate := range candidates {
		if reason, rejected := v.check(candidate, sourceLanguage, accepted); rejected {
			result.Rejected = append(result.Rejected, domain.RejectedCard{
				Candidate: candidate,
				Reason:    reason,
			})
			continue
		}

		card, err := domain.NewCard(cardID(chunk.ID, i), candidate)
		if err != nil {
			return domain.ValidationResult{}, fmt.Errorf("promoting candidate %d of chunk %s: %w",
				i, chunk.ID, err)
		}

		accepted.add(normalizeFront(candidate.Front))
		result.Accepted = append(result.Accepted, card)
	}

	return result, nil
}

// check runs the ordered rules and returns the first failing reason.
func (v *Validator) check(
	candidate domain.CardCandidate,
	sourceLanguage string,
	accepted *AcceptedSet,
) (domain.RejectionReason, bool) {
	front := strings.TrimSpace(candidate.Front)
	back := strings.TrimSpace(candidate.Back)

	if front == "" || back == "" {
		return domain.RejectionEmptyField, true
	}

	frontLen := utf8.RuneCountInString(front)
	backLen := utf8.RuneCountInString(back)

	if frontLen < v.cfg.MinCardLength || backLen < v.cfg.MinCardLength {
		return domain.RejectionTooShort, true
	}

	if frontLen > v.cfg.MaxCardLength || backLen > v.cfg.MaxCardLength {
		return domain.RejectionTooLong, true
	}

	if accepted.contains(normalizeFront(front)) {
		return domain.RejectionDuplicateContent, true
	}

	if v.cfg.LanguageCheck && languageMismatch(front+" "+back, sourceLanguage) {
		return domain.RejectionLanguageMismatch, true
	}

	return "", false
}

// cardID derives a deterministic card identifier from the chunk ID and the
// candidate's position in the input order.
func cardID(chunkID uuid.UUID, ordinal int) uuid.UUID {
	return uuid.NewSHA1(chunkID, []byte(fmt.Sprintf("card:%d", ordinal)))
}

// normalizeFront lowercases and collapses whitespace so duplicate detection
// is a case-insensitive exact match, not fuzzy similarity.
func normalizeFront(front string) string {
	return strings.ToLower(strings.Join(strings.Fields(front), " "))
}

// languageMismatch reports whether the card text is confidently detected as
// a language other than the source document's. Unknown source language or an
// unsure detection never rejects.
func languageMismatch(text, sourceLanguage string) bool {
	if sourceLanguage == "" {
		return false
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() || info.Confidence < languageConfidenceThreshold {
		return false
	}

	return info.Lang.Iso6393() != sourceLanguage
}
