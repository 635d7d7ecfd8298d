package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config file and from environment
// variables with the CARDFORGE_ prefix. Environment variables take precedence
// over file values, which take precedence over defaults. Returns a populated
// Config or an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("CARDFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration against its struct tags plus the
// cross-field rules the tags cannot express.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Chunking.OverlapTokens >= cfg.Chunking.MaxTokens {
		return fmt.Errorf(
			"invalid configuration: chunking.overlap_tokens (%d) must be less than chunking.max_tokens (%d)",
			cfg.Chunking.OverlapTokens, cfg.Chunking.MaxTokens)
	}

	if cfg.Validation.MinCardLength >= cfg.Validation.MaxCardLength {
		return fmt.Errorf(
			"invalid configuration: validation.min_card_length (%d) must be less than validation.max_card_length (%d)",
			cfg.Validation.MinCardLength, cfg.Validation.MaxCardLength)
	}

	return nil
}

// setDefaults registers the default value for every setting that has one.
// Database URL and LLM model intentionally have no defaults: the service
// refuses to start without them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("llm.provider", "lmstudio")
	v.SetDefault("llm.base_url", "http://localhost:1234/v1")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 2500)
	v.SetDefault("llm.timeout_seconds", 120)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)

	v.SetDefault("chunking.max_tokens", 400)
	v.SetDefault("chunking.overlap_tokens", 50)
	v.SetDefault("chunking.strategy", "paragraph")
	v.SetDefault("chunking.encoding", "cl100k_base")

	v.SetDefault("validation.min_card_length", 5)
	v.SetDefault("validation.max_card_length", 500)
	v.SetDefault("validation.max_cards_per_chunk", 8)
	v.SetDefault("validation.language_check", true)

	v.SetDefault("pipeline.concurrency", 3)

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 50)

	v.SetDefault("cleaner.remove_urls", true)
	v.SetDefault("cleaner.remove_emails", true)

	v.SetDefault("export.output_dir", "data/output")
	v.SetDefault("export.pretty_json", true)
}
