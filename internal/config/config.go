package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm"        validate:"required"`
	Chunking   ChunkingConfig   `mapstructure:"chunking"   validate:"required"`
	Validation ValidationConfig `mapstructure:"validation" validate:"required"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"   validate:"required"`
	Task       TaskConfig       `mapstructure:"task"       validate:"required"`
	Cleaner    CleanerConfig    `mapstructure:"cleaner"`
	Export     ExportConfig     `mapstructure:"export"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// LLMConfig contains the settings for the card-generating language model.
// Provider selects the backend: "lmstudio" targets any OpenAI-compatible
// local server, "gemini" targets the Gemini API.
type LLMConfig struct {
	Provider           string  `mapstructure:"provider"             validate:"required,oneof=lmstudio gemini"`
	BaseURL            string  `mapstructure:"base_url"             validate:"omitempty,url"`
	Model              string  `mapstructure:"model"                validate:"required"`
	APIKey             string  `mapstructure:"api_key"`
	Temperature        float64 `mapstructure:"temperature"          validate:"gte=0,lte=2"`
	MaxTokens          int     `mapstructure:"max_tokens"           validate:"required,gt=0"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds"      validate:"required,gt=0"`
	MaxRetries         int     `mapstructure:"max_retries"          validate:"gte=0"`
	RetryDelaySeconds  int     `mapstructure:"retry_delay_seconds"  validate:"gte=0"`
	PromptTemplatePath string  `mapstructure:"prompt_template_path"`
}

// ChunkingConfig bounds how source text is split into chunks.
// OverlapTokens must stay below MaxTokens; the chunker reports a
// configuration error rather than clamping silently.
type ChunkingConfig struct {
	MaxTokens     int    `mapstructure:"max_tokens"     validate:"required,gt=0"`
	OverlapTokens int    `mapstructure:"overlap_tokens" validate:"gte=0"`
	Strategy      string `mapstructure:"strategy"       validate:"required,oneof=paragraph sentence word"`
	Encoding      string `mapstructure:"encoding"`
}

// ValidationConfig bounds the card quality rules.
type ValidationConfig struct {
	MinCardLength    int  `mapstructure:"min_card_length"     validate:"gte=0"`
	MaxCardLength    int  `mapstructure:"max_card_length"     validate:"required,gt=0"`
	MaxCardsPerChunk int  `mapstructure:"max_cards_per_chunk" validate:"required,gt=0"`
	LanguageCheck    bool `mapstructure:"language_check"`
}

// PipelineConfig bounds the per-source generation run.
type PipelineConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"required,gt=0"`
}

// TaskConfig bounds the background task machinery: how many worker
// goroutines consume the queue and how many tasks it buffers.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize   int `mapstructure:"queue_size"   validate:"required,gt=0"`
}

// CleanerConfig toggles the ingest text cleaning passes.
type CleanerConfig struct {
	RemoveURLs   bool `mapstructure:"remove_urls"`
	RemoveEmails bool `mapstructure:"remove_emails"`
}

// ExportConfig contains deck export settings.
type ExportConfig struct {
	OutputDir  string `mapstructure:"output_dir"`
	PrettyJSON bool   `mapstructure:"pretty_json"`
}
