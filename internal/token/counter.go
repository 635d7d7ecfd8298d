// Package token provides token counting for text spans, used by the chunker
// to enforce per-chunk token budgets.
//
// Counting prefers a real BPE tokenizer (tiktoken). When the requested
// encoding is unavailable the counter degrades to a character-based
// estimate; callers can see the difference via Estimated and must label
// such counts as estimates in chunk metadata rather than treating them
// as exact.
package token

import (
	"log/slog"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// estimateCharsPerToken is the character-per-token ratio of the fallback
// estimator. Roughly accurate for English prose under cl100k_base.
const estimateCharsPerToken = 4

// DefaultEncoding is the encoding used when the configuration names none.
// cl100k_base matches the GPT-3.5/4 family and is a reasonable proxy for
// most local chat models.
const DefaultEncoding = "cl100k_base"

// Counter reports the token length of a text span. Implementations must be
// pure and deterministic: the same text always yields the same count.
type Counter interface {
	// Count returns the number of tokens in text. Always >= 0.
	Count(text string) int

	// Estimated reports whether counts are heuristic estimates rather than
	// exact tokenizer output.
	Estimated() bool
}

// tiktokenCounter counts with a real BPE encoding.
type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// estimateCounter approximates token counts from character length.
type estimateCounter struct{}

// NewCounter returns a Counter for the named encoding, falling back to the
// character-based estimator when the encoding cannot be loaded. The fallback
// is logged once here; per-call behavior is identical either way.
func NewCounter(encoding string, logger *slog.Logger) Counter {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		if logger != nil {
			logger.Warn("tokenizer unavailable, falling back to character estimate",
				"encoding", encoding,
				"error", err)
		}
		return estimateCounter{}
	}

	return &tiktokenCounter{encoding: enc}
}

// NewEstimateCounter returns the character-based fallback counter directly.
func NewEstimateCounter() Counter {
	return estimateCounter{}
}

func (c *tiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.encoding.Encode(text, nil, nil))
}

func (c *tiktokenCounter) Estimated() bool { return false }

func (estimateCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	n := utf8.RuneCountInString(text) / estimateCharsPerToken
	if n < 1 {
		n = 1
	}
	return n
}

func (estimateCounter) Estimated() bool { return true }
