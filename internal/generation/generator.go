// Package generation turns text chunks into unvalidated card candidates by
// prompting a language model and parsing its raw output.
//
// The package sits between the pipeline and the concrete LLM providers: a
// provider only has to implement TextCompleter (prompt in, raw text out,
// retries included); prompt construction and tolerant response parsing live
// here so every provider gets the same treatment.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cardforge/internal/domain"
)

// TextCompleter is the provider boundary. Implementations are expected to
// handle their own retry policy for transient transport failures and to
// return an error wrapping ErrContentBlocked, ErrTransientFailure, or
// ErrGenerationFailed as appropriate.
type TextCompleter interface {
	// Complete sends the prompt to the model and returns its raw text output.
	Complete(ctx context.Context, prompt string) (string, error)
}

// CandidateSet is the parsed output for one chunk: the structurally complete
// candidates plus the count of entries dropped during parsing.
type CandidateSet struct {
	Candidates []domain.CardCandidate
	Dropped    int
}

// Generator defines the interface for producing card candidates from a chunk.
// This is the boundary the pipeline depends on.
type Generator interface {
	// GenerateCandidates prompts the model with the chunk text and parses the
	// response. Returns ErrMalformedResponse when nothing structured can be
	// recovered, or a provider error for transport failures. Both are soft
	// failures scoped to the single chunk.
	GenerateCandidates(ctx context.Context, chunk *domain.Chunk) (CandidateSet, error)
}

// CardGenerator implements Generator by composing a prompt builder, a
// text-completion provider, and the tolerant response parser.
type CardGenerator struct {
	logger  *slog.Logger
	prompts *PromptBuilder
	llm     TextCompleter
}

// NewCardGenerator creates a CardGenerator with the provided dependencies.
func NewCardGenerator(logger *slog.Logger, prompts *PromptBuilder, llm TextCompleter) (*CardGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if prompts == nil {
		return nil, fmt.Errorf("%w: prompt builder cannot be nil", ErrInvalidConfig)
	}
	if llm == nil {
		return nil, fmt.Errorf("%w: text completer cannot be nil", ErrInvalidConfig)
	}

	return &CardGenerator{
		logger:  logger.With("component", "card_generator"),
		prompts: prompts,
		llm:     llm,
	}, nil
}

// GenerateCandidates prompts the model with the chunk text and parses the
// raw response into card candidates tagged with the chunk's ID.
func (g *CardGenerator) GenerateCandidates(ctx context.Context, chunk *domain.Chunk) (CandidateSet, error) {
	if chunk == nil {
		return CandidateSet{}, fmt.Errorf("%w: chunk cannot be nil", ErrGenerationFailed)
	}

	prompt, err := g.prompts.Build(chunk)
	if err != nil {
		return CandidateSet{}, fmt.Errorf("%w: building prompt: %v", ErrGenerationFailed, err)
	}

	g.logger.DebugContext(ctx, "prompting model for chunk",
		"chunk_id", chunk.ID.String(),
		"sequence_index", chunk.SequenceIndex,
		"prompt_length", len(prompt))

	raw, err := g.llm.Complete(ctx, prompt)
	if err != nil {
		return CandidateSet{}, err
	}

	candidates, dropped, err := ParseResponse(raw, chunk.ID)
	if err != nil {
		return CandidateSet{}, err
	}

	g.logger.DebugContext(ctx, "parsed model response",
		"chunk_id", chunk.ID.String(),
		"candidates", len(candidates),
		"dropped", dropped)

	return CandidateSet{Candidates: candidates, Dropped: dropped}, nil
}
