// Package chunker splits cleaned source text into overlapping, token-budgeted
// chunks along paragraph, sentence, or word boundaries.
//
// The splitter is a pure transformation: identical input and configuration
// always produce an identical chunk sequence. Unit spans tile the input text
// exactly (each unit carries its trailing separator), so the emitted chunks
// collectively cover every input character, with consecutive chunks sharing
// the configured overlap.
package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"cardforge/internal/domain"
	"cardforge/internal/token"
)

// Strategy selects the unit at which chunk boundaries are preferred.
type Strategy string

// Supported boundary strategies.
const (
	StrategyParagraph Strategy = "paragraph"
	StrategySentence  Strategy = "sentence"
	StrategyWord      Strategy = "word"
)

// ErrInvalidConfig is returned for unusable chunking parameters. It is fatal
// for the source being processed: the caller must not retry with the same
// configuration.
var ErrInvalidConfig = errors.New("invalid chunking configuration")

// Config bounds the chunker. OverlapTokens must be strictly below MaxTokens;
// out-of-range values are reported, never silently clamped.
type Config struct {
	MaxTokens     int
	OverlapTokens int
	Strategy      Strategy
}

// Chunker splits text into chunks under the configured token budget.
type Chunker struct {
	cfg     Config
	counter token.Counter
}

// ParseStrategy converts a configuration string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(s)) {
	case StrategyParagraph:
		return StrategyParagraph, nil
	case StrategySentence:
		return StrategySentence, nil
	case StrategyWord:
		return StrategyWord, nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, s)
	}
}

// New creates a Chunker, validating the configuration.
func New(cfg Config, counter token.Counter) (*Chunker, error) {
	if counter == nil {
		return nil, fmt.Errorf("%w: token counter cannot be nil", ErrInvalidConfig)
	}

	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("%w: max_tokens must be positive, got %d", ErrInvalidConfig, cfg.MaxTokens)
	}

	if cfg.OverlapTokens < 0 || cfg.OverlapTokens >= cfg.MaxTokens {
		return nil, fmt.Errorf("%w: overlap_tokens must satisfy 0 <= overlap < max_tokens, got overlap=%d max=%d",
			ErrInvalidConfig, cfg.OverlapTokens, cfg.MaxTokens)
	}

	if _, err := ParseStrategy(string(cfg.Strategy)); err != nil {
		return nil, err
	}

	return &Chunker{cfg: cfg, counter: counter}, nil
}

// Split divides text into an ordered chunk sequence for the given source.
// Empty or whitespace-only input yields an empty sequence, not an error.
//
// Units are accumulated greedily until adding the next one would exceed the
// token budget; the chunk then closes and the next chunk re-includes the
// trailing units whose cumulative token count reaches the overlap budget,
// always cut at a unit boundary. A single unit whose own token count exceeds
// the budget is emitted as its own chunk flagged Oversized rather than being
// dropped; no overlap is carried out of an oversized chunk, since re-including
// it would exceed the configured overlap bound.
func (c *Chunker) Split(sourceID uuid.UUID, text string) ([]*domain.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	units := segment(text, c.cfg.Strategy)
	if len(units) == 0 {
		return nil, nil
	}

	// Count each unit once; overlap bookkeeping reuses these counts.
	counts := make([]int, len(units))
	for i, u := range units {
		counts[i] = c.counter.Count(text[u.start:u.end])
	}

	var chunks []*domain.Chunk
	seq := 0
	start := 0 // index of the first unit of the chunk being built

	emit := func(first, last int, oversized bool) error {
		chunkText := text[units[first].start:units[last].end]
		chunk, err := domain.NewChunk(
			sourceID,
			chunkText,
			units[first].start,
			units[last].end,
			c.counter.Count(chunkText),
			seq,
		)
		if err != nil {
			return err
		}
		chunk.Oversized = oversized
		chunk.TokensEstimated = c.counter.Estimated()
		chunks = append(chunks, chunk)
		seq++
		return nil
	}

	accumulated := 0
	for i := 0; i < len(units); i++ {
		if counts[i] > c.cfg.MaxTokens {
			// A unit over budget becomes its own flagged chunk. Overlap is
			// neither carried into nor out of it; re-including an oversized
			// unit would exceed the configured overlap bound.
			if start < i {
				if err := emit(start, i-1, false); err != nil {
					return nil, err
				}
			}
			if err := emit(i, i, true); err != nil {
				return nil, err
			}
			start = i + 1
			accumulated = 0
			continue
		}

		if start < i && accumulated+counts[i] > c.cfg.MaxTokens {
			if err := emit(start, i-1, false); err != nil {
				return nil, err
			}
			start = c.overlapStart(counts, start, i-1)
			accumulated = sum(counts[start:i])
		}

		accumulated += counts[i]
	}

	if start < len(units) {
		if err := emit(start, len(units)-1, false); err != nil {
			return nil, err
		}
	}

	return chunks, nil
}

// overlapStart walks backward from the closing unit until the re-included
// tail reaches the overlap budget. The result never precedes the closed
// chunk's own first unit, so a short chunk is re-included whole at most.
func (c *Chunker) overlapStart(counts []int, chunkStart, chunkEnd int) int {
	if c.cfg.OverlapTokens == 0 {
		return chunkEnd + 1
	}

	total := 0
	k := chunkEnd + 1
	for k > chunkStart {
		total += counts[k-1]
		k--
		if total >= c.cfg.OverlapTokens {
			break
		}
	}
	return k
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
