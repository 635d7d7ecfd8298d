package generation

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"cardforge/internal/domain"
)

//go:embed templates/flashcard.tmpl
var defaultPromptTemplate string

// promptData is the data passed to the prompt template.
type promptData struct {
	ChunkText string
	MaxCards  int
	Language  string
}

// PromptBuilder renders the flashcard prompt for a chunk. It is safe for
// concurrent use: the parsed template is read-only after construction.
type PromptBuilder struct {
	tmpl     *template.Template
	maxCards int
	language string
}

// NewPromptBuilder parses the prompt template and returns a builder.
// An empty templatePath selects the embedded default template. maxCards
// bounds how many cards the model is asked for per chunk; language, when
// non-empty, is the source document's detected language and is passed to
// the template so the model keeps the cards in that language.
func NewPromptBuilder(templatePath string, maxCards int, language string) (*PromptBuilder, error) {
	if maxCards <= 0 {
		return nil, fmt.Errorf("%w: max cards per chunk must be positive, got %d", ErrInvalidConfig, maxCards)
	}

	content := defaultPromptTemplate
	if templatePath != "" {
		raw, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				ErrInvalidConfig, templatePath, err)
		}
		content = string(raw)
	}

	tmpl, err := template.New("flashcard").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}

	return &PromptBuilder{tmpl: tmpl, maxCards: maxCards, language: language}, nil
}

// WithLanguage returns a copy of the builder targeting the given language.
// The parsed template is shared.
func (b *PromptBuilder) WithLanguage(language string) *PromptBuilder {
	clone := *b
	clone.language = language
	return &clone
}

// Build renders the prompt for one chunk.
func (b *PromptBuilder) Build(chunk *domain.Chunk) (string, error) {
	if chunk == nil || chunk.Text == "" {
		return "", fmt.Errorf("chunk text cannot be empty")
	}

	var buf bytes.Buffer
	err := b.tmpl.Execute(&buf, promptData{
		ChunkText: chunk.Text,
		MaxCards:  b.maxCards,
		Language:  b.language,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return buf.String(), nil
}
