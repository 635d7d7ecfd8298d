// Package pipeline runs the full chunk-generate-validate-assemble flow for
// one source document.
//
// LLM calls are dispatched in parallel under a bounded limit, but validation
// is a single ordered merge pass: results are applied to the shared accepted
// set strictly in chunk sequence order, which the duplicate-detection rule
// requires. Per-chunk generation or parse failures degrade to zero cards plus
// a statistic; the caller always gets a deck for a started source.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"cardforge/internal/chunker"
	"cardforge/internal/deck"
	"cardforge/internal/domain"
	"cardforge/internal/generation"
	"cardforge/internal/validation"
)

// Result is the outcome of one pipeline run. Chunks are returned alongside
// the deck so the caller can persist them with the cards.
type Result struct {
	Deck   *domain.Deck
	Chunks []*domain.Chunk
}

// Pipeline wires the processing stages for one source.
type Pipeline struct {
	logger      *slog.Logger
	chunker     *chunker.Chunker
	generator   generation.Generator
	validator   *validation.Validator
	assembler   *deck.Assembler
	concurrency int
}

// New creates a Pipeline from already-constructed stages.
func New(
	logger *slog.Logger,
	splitter *chunker.Chunker,
	generator generation.Generator,
	validator *validation.Validator,
	assembler *deck.Assembler,
	concurrency int,
) (*Pipeline, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if splitter == nil {
		return nil, errors.New("chunker cannot be nil")
	}
	if generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if validator == nil {
		return nil, errors.New("validator cannot be nil")
	}
	if assembler == nil {
		return nil, errors.New("assembler cannot be nil")
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}

	return &Pipeline{
		logger:      logger.With("component", "pipeline"),
		chunker:     splitter,
		generator:   generator,
		validator:   validator,
		assembler:   assembler,
		concurrency: concurrency,
	}, nil
}

// chunkOutcome is one chunk's generation result, indexed by sequence.
type chunkOutcome struct {
	set generation.CandidateSet
	err error
}

// Run processes the source end to end and returns the assembled deck.
//
// Only stage-internal invariant violations return an error; a chunk whose
// LLM call or parse fails is recorded in the deck statistics instead. Context
// cancellation surfaces as failed chunks for calls still in flight.
func (p *Pipeline) Run(ctx context.Context, source *domain.Source) (*Result, error) {
	if source == nil {
		return nil, errors.New("source cannot be nil")
	}

	chunks, err := p.chunker.Split(source.ID, source.Text)
	if err != nil {
		return nil, fmt.Errorf("chunking source %s: %w", source.ID, err)
	}

	p.logger.InfoContext(ctx, "source chunked",
		"source_id", source.ID.String(),
		"chunks", len(chunks))

	if len(chunks) == 0 {
		emptyDeck, err := p.assembler.Assemble(source.ID, nil, deck.RunStats{})
		if err != nil {
			return nil, err
		}
		return &Result{Deck: emptyDeck}, nil
	}

	outcomes := p.generateAll(ctx, chunks)

	// Single ordered merge pass: validation updates the shared accepted set
	// strictly in sequence-index order, never concurrently.
	accepted := validation.NewAcceptedSet()
	results := make([]domain.ValidationResult, 0, len(chunks))
	run := deck.RunStats{TotalChunks: len(chunks)}

	for i, chunk := range chunks {
		outcome := outcomes[i]
		if outcome.err != nil {
			p.logger.WarnContext(ctx, "chunk failed, continuing without its cards",
				"source_id", source.ID.String(),
				"chunk_id", chunk.ID.String(),
				"sequence_index", chunk.SequenceIndex,
				"error", outcome.err)
			run.FailedChunks++
			results = append(results, domain.ValidationResult{
				ChunkID:       chunk.ID,
				SequenceIndex: chunk.SequenceIndex,
			})
			continue
		}

		run.DroppedInParse += outcome.set.Dropped

		result, err := p.validator.Validate(chunk, outcome.set.Candidates, source.Language, accepted)
		if err != nil {
			return nil, fmt.Errorf("validating chunk %s: %w", chunk.ID, err)
		}
		results = append(results, result)
	}

	assembled, err := p.assembler.Assemble(source.ID, results, run)
	if err != nil {
		return nil, err
	}

	return &Result{Deck: assembled, Chunks: chunks}, nil
}

// generateAll runs the LLM calls for all chunks under the concurrency bound.
// Workers never abort the group: per-chunk errors land in the outcome slot.
func (p *Pipeline) generateAll(ctx context.Context, chunks []*domain.Chunk) []chunkOutcome {
	outcomes := make([]chunkOutcome, len(chunks))

	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			set, err := p.generator.GenerateCandidates(ctx, chunk)
			outcomes[i] = chunkOutcome{set: set, err: err}
			return nil
		})
	}

	// Wait never returns an error here; workers always return nil.
	_ = g.Wait()

	return outcomes
}
