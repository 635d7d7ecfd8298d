// Package lmstudio provides a generation.TextCompleter backed by any
// OpenAI-compatible local inference server (LM Studio, Ollama, llama.cpp).
package lmstudio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"cardforge/internal/config"
	"cardforge/internal/generation"
)

// DefaultBaseURL is LM Studio's default local endpoint.
const DefaultBaseURL = "http://localhost:1234/v1"

// Client implements generation.TextCompleter against an OpenAI-compatible
// chat completions endpoint, with exponential backoff for transient failures.
type Client struct {
	logger *slog.Logger
	llm    *openai.LLM
	cfg    config.LLMConfig
}

// New creates a Client from the LLM configuration. An empty BaseURL targets
// the LM Studio default; local servers ignore the API key, so a placeholder
// is sent when none is configured.
func New(logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	token := cfg.APIKey
	if token == "" {
		token = "lm-studio"
	}

	llm, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(token),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: creating openai client: %v", generation.ErrInvalidConfig, err)
	}

	return &Client{
		logger: logger.With("component", "lmstudio_client", "model", cfg.Model),
		llm:    llm,
		cfg:    cfg,
	}, nil
}

// Complete sends the prompt as a single-turn chat completion and returns the
// model's raw text. Transport failures are retried with exponential backoff
// and jitter up to MaxRetries; an empty completion is permanent.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", generation.ErrGenerationFailed)
	}

	maxRetries := c.cfg.MaxRetries
	baseDelaySeconds := c.cfg.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		out, err := c.complete(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !errors.Is(err, generation.ErrTransientFailure) {
			return "", err
		}

		c.logger.WarnContext(ctx, "completion attempt failed",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1,
			"error", err)

		if attempt == maxRetries {
			break
		}

		// delay = baseDelay * 2^attempt * jitter in [0.5, 1.0)
		backoff := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5) * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}

	return "", fmt.Errorf("%w: exceeded %d attempts: %v",
		generation.ErrTransientFailure, maxRetries+1, lastErr)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithTemperature(c.cfg.Temperature),
		llms.WithMaxTokens(c.cfg.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%w: model returned an empty completion", generation.ErrGenerationFailed)
	}

	return out, nil
}
