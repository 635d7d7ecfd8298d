package validation

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardforge/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		MinCardLength:    3,
		MaxCardLength:    100,
		MaxCardsPerChunk: 8,
		LanguageCheck:    false,
	}
}

func mustValidator(t *testing.T, cfg Config) *Validator {
	t.Helper()
	v, err := New(cfg, discardLogger())
	require.NoError(t, err)
	return v
}

func testChunk(t *testing.T, seq int) *domain.Chunk {
	t.Helper()
	chunk, err := domain.NewChunk(uuid.New(), "chunk text for testing purposes", 0, 31, 8, seq)
	require.NoError(t, err)
	return chunk
}

func candidate(chunkID uuid.UUID, front, back string) domain.CardCandidate {
	return domain.CardCandidate{Front: front, Back: back, ChunkID: chunkID}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero max length", Config{MinCardLength: 0, MaxCardLength: 0, MaxCardsPerChunk: 5}},
		{"negative min length", Config{MinCardLength: -1, MaxCardLength: 100, MaxCardsPerChunk: 5}},
		{"min at max", Config{MinCardLength: 100, MaxCardLength: 100, MaxCardsPerChunk: 5}},
		{"zero cards per chunk", Config{MinCardLength: 3, MaxCardLength: 100, MaxCardsPerChunk: 0}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tc.cfg, discardLogger())
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := New(testConfig(), nil)
	assert.Error(t, err)
}

func TestValidateAcceptsWellFormedCandidates(t *testing.T) {
	t.Parallel()

	v := mustValidator(t, testConfig())
	chunk := testChunk(t, 0)
	candidates := []domain.CardCandidate{
		candidate(chunk.ID, "What is mitosis?", "Cell division producing identical daughter cells."),
		candidate(chunk.ID, "What is meiosis?", "Cell division producing gametes."),
	}

	result, err := v.Validate(chunk, candidates, "", NewAcceptedSet())
	require.NoError(t, err)

	assert.Equal(t, chunk.ID, result.ChunkID)
	assert.Equal(t, 0, result.SequenceIndex)
	require.Len(t, result.Accepted, 2)
	assert.Empty(t, result.Rejected)

	for i, card := range result.Accepted {
		assert.Equal(t, candidates[i].Front, card.Front)
		assert.Equal(t, chunk.ID, card.ChunkID)
		assert.NotEqual(t, uuid.Nil, card.ID)
	}
	assert.NotEqual(t, result.Accepted[0].ID, result.Accepted[1].ID)
}

func TestValidateRejectionReasonOrder(t *testing.T) {
	t.Parallel()

	v := mustValidator(t, testConfig())
	chunk := testChunk(t, 0)
	long := strings.Repeat("x", 101)

	tests := []struct {
		name   string
		cand   domain.CardCandidate
		reason domain.RejectionReason
	}{
		{"empty front", candidate(chunk.ID, "   ", "A valid back side."), domain.RejectionEmptyField},
		{"empty back", candidate(chunk.ID, "A valid front?", ""), domain.RejectionEmptyField},
		{"short front", candidate(chunk.ID, "Q?", "A valid back side."), domain.RejectionTooShort},
		{"long back", candidate(chunk.ID, "A valid front?", long), domain.RejectionTooLong},
		// Empty beats length: an all-whitespace front is EmptyField even
		// though its trimmed length is also below the minimum.
		{"empty wins over short", candidate(chunk.ID, " ", "ok?"), domain.RejectionEmptyField},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result, err := v.Validate(chunk, []domain.CardCandidate{tc.cand}, "", NewAcceptedSet())
			require.NoError(t, err)
			assert.Empty(t, result.Accepted)
			require.Len(t, result.Rejected, 1)
			assert.Equal(t, tc.reason, result.Rejected[0].Reason)
		})
	}
}

func TestValidateDuplicateContent(t *testing.T) {
	t.Parallel()

	v := mustValidator(t, testConfig())
	chunk := testChunk(t, 0)
	candidates := []domain.CardCandidate{
		candidate(chunk.ID, "What is DNA?", "Deoxyribonucleic acid."),
		candidate(chunk.ID, "  what   IS dna? ", "The molecule of heredity."),
	}

	result, err := v.Validate(chunk, candidates, "", NewAcceptedSet())
	require.NoError(t, err)

	require.Len(t, result.Accepted, 1)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "What is DNA?", result.Accepted[0].Front)
	assert.Equal(t, domain.RejectionDuplicateContent, result.Rejected[0].Reason)
}

func TestValidateDuplicateAcrossChunks(t *testing.T) {
	t.Parallel()

	v := mustValidator(t, testConfig())
	accepted := NewAcceptedSet()

	first := testChunk(t, 0)
	result, err := v.Validate(first,
		[]domain.CardCandidate{candidate(first.ID, "What is RNA?", "Ribonucleic acid.")},
		"", accepted)
	require.NoError(t, err)
	require.Len(t, result.Accepted, 1)

	second := testChunk(t, 1)
	result, err = v.Validate(second,
		[]domain.CardCandidate{candidate(second.ID, "WHAT IS RNA?", "A nucleic acid.")},
		"", accepted)
	require.NoError(t, err)

	assert.Empty(t, result.Accepted)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, domain.RejectionDuplicateContent, result.Rejected[0].Reason)
	assert.Equal(t, 1, accepted.Len())
}

func TestValidateTruncatesToPerChunkCap(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.MaxCardsPerChunk = 2
	v := mustValidator(t, cfg)
	chunk := testChunk(t, 0)

	candidates := []domain.CardCandidate{
		candidate(chunk.ID, "First question?", "First answer."),
		candidate(chunk.ID, "Second question?", "Second answer."),
		candidate(chunk.ID, "Third question?", "Third answer."),
	}

	result, err := v.Validate(chunk, candidates, "", NewAcceptedSet())
	require.NoError(t, err)
	assert.Len(t, result.Accepted, 2)
	assert.Empty(t, result.Rejected)
}

func TestValidateDeterministicIdentifiers(t *testing.T) {
	t.Parallel()

	v := mustValidator(t, testConfig())
	chunk := testChunk(t, 0)
	candidates := []domain.CardCandidate{
		candidate(chunk.ID, "What is ATP?", "The cell's energy currency."),
		candidate(chunk.ID, "What is ADP?", "ATP minus one phosphate."),
	}

	first, err := v.Validate(chunk, candidates, "", NewAcceptedSet())
	require.NoError(t, err)
	second, err := v.Validate(chunk, candidates, "", NewAcceptedSet())
	require.NoError(t, err)

	require.Len(t, first.Accepted, 2)
	require.Len(t, second.Accepted, 2)
	for i := range first.Accepted {
		assert.Equal(t, first.Accepted[i].ID, second.Accepted[i].ID)
	}
}

func TestValidateLanguageMismatch(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.LanguageCheck = true
	v := mustValidator(t, cfg)
	chunk := testChunk(t, 0)

	// A long unambiguous Russian sentence against an English source. Long
	// texts keep the detector confident; short ones are deliberately spared.
	russian := candidate(chunk.ID,
		"Что такое фотосинтез и почему он важен для растений?",
		"Фотосинтез преобразует световую энергию в химическую энергию в клетках растений.")
	english := candidate(chunk.ID,
		"What is photosynthesis and why does it matter?",
		"Photosynthesis converts light energy into chemical energy inside plant cells.")

	result, err := v.Validate(chunk, []domain.CardCandidate{russian, english}, "eng", NewAcceptedSet())
	require.NoError(t, err)

	require.Len(t, result.Accepted, 1)
	assert.Equal(t, english.Front, result.Accepted[0].Front)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, domain.RejectionLanguageMismatch, result.Rejected[0].Reason)
}

func TestValidateLanguageCheckDisabled(t *testing.T) {
	t.Parallel()

	v := mustValidator(t, testConfig())
	chunk := testChunk(t, 0)

	russian := candidate(chunk.ID,
		"Что такое фотосинтез и почему он важен для растений?",
		"Фотосинтез преобразует световую энергию в химическую энергию.")

	result, err := v.Validate(chunk, []domain.CardCandidate{russian}, "eng", NewAcceptedSet())
	require.NoError(t, err)
	assert.Len(t, result.Accepted, 1)
}

func TestValidateUnknownSourceLanguageNeverRejects(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.LanguageCheck = true
	v := mustValidator(t, cfg)
	chunk := testChunk(t, 0)

	result, err := v.Validate(chunk,
		[]domain.CardCandidate{candidate(chunk.ID, "Une question en français?", "Une réponse détaillée en français.")},
		"", NewAcceptedSet())
	require.NoError(t, err)
	assert.Len(t, result.Accepted, 1)
}

func TestNormalizeFront(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "what is dna?", normalizeFront("  What   IS\tDNA? "))
	assert.Equal(t, "", normalizeFront("   "))
}
