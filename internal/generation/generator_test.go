package generation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCompleter returns a canned response or error.
type stubCompleter struct {
	response string
	err      error
	prompts  []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewCardGeneratorValidatesDependencies(t *testing.T) {
	t.Parallel()

	prompts, err := NewPromptBuilder("", 5, "")
	require.NoError(t, err)
	llm := &stubCompleter{}

	_, err = NewCardGenerator(nil, prompts, llm)
	assert.Error(t, err)

	_, err = NewCardGenerator(discardLogger(), nil, llm)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewCardGenerator(discardLogger(), prompts, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGenerateCandidates(t *testing.T) {
	t.Parallel()

	prompts, err := NewPromptBuilder("", 5, "")
	require.NoError(t, err)
	llm := &stubCompleter{
		response: `{"cards":[{"front":"Q1","back":"A1"},{"front":"Q2","back":""}]}`,
	}

	gen, err := NewCardGenerator(discardLogger(), prompts, llm)
	require.NoError(t, err)

	chunk := testChunk(t, "Photosynthesis converts light into chemical energy.")
	set, err := gen.GenerateCandidates(context.Background(), chunk)
	require.NoError(t, err)

	require.Len(t, set.Candidates, 1)
	assert.Equal(t, "Q1", set.Candidates[0].Front)
	assert.Equal(t, chunk.ID, set.Candidates[0].ChunkID)
	assert.Equal(t, 1, set.Dropped)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], chunk.Text)
}

func TestGenerateCandidatesPropagatesProviderError(t *testing.T) {
	t.Parallel()

	prompts, err := NewPromptBuilder("", 5, "")
	require.NoError(t, err)
	llm := &stubCompleter{err: fmt.Errorf("%w: connection refused", ErrTransientFailure)}

	gen, err := NewCardGenerator(discardLogger(), prompts, llm)
	require.NoError(t, err)

	_, err = gen.GenerateCandidates(context.Background(), testChunk(t, "some text"))
	assert.ErrorIs(t, err, ErrTransientFailure)
}

func TestGenerateCandidatesMalformedResponse(t *testing.T) {
	t.Parallel()

	prompts, err := NewPromptBuilder("", 5, "")
	require.NoError(t, err)
	llm := &stubCompleter{response: "I cannot help with that."}

	gen, err := NewCardGenerator(discardLogger(), prompts, llm)
	require.NoError(t, err)

	_, err = gen.GenerateCandidates(context.Background(), testChunk(t, "some text"))
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGenerateCandidatesNilChunk(t *testing.T) {
	t.Parallel()

	prompts, err := NewPromptBuilder("", 5, "")
	require.NoError(t, err)

	gen, err := NewCardGenerator(discardLogger(), prompts, &stubCompleter{})
	require.NoError(t, err)

	_, err = gen.GenerateCandidates(context.Background(), nil)
	assert.ErrorIs(t, err, ErrGenerationFailed)
}
