// Package export serializes decks for consumption outside the service:
// a JSON document preserving every deck field, and a tab-separated file
// importable into Anki.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cardforge/internal/config"
	"cardforge/internal/domain"
)

// DefaultOutputDir receives exported deck files when no directory is
// configured.
const DefaultOutputDir = "data/output"

// Format selects an export serialization.
type Format string

// Supported export formats.
const (
	FormatJSON Format = "json"
	FormatTSV  Format = "tsv"
)

// ErrUnknownFormat is returned for format strings no exporter handles.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat converts a query-string value into a Format. An empty value
// defaults to JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatTSV:
		return FormatTSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Exporter writes decks in the supported formats.
type Exporter struct {
	pretty    bool
	outputDir string
}

// NewExporter creates an Exporter from the export configuration.
func NewExporter(cfg config.ExportConfig) *Exporter {
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	return &Exporter{pretty: cfg.PrettyJSON, outputDir: outputDir}
}

// Write serializes the deck to w in the given format.
func (e *Exporter) Write(w io.Writer, deck *domain.Deck, format Format) error {
	if deck == nil {
		return errors.New("deck cannot be nil")
	}

	switch format {
	case FormatJSON:
		return e.writeJSON(w, deck)
	case FormatTSV:
		return e.writeTSV(w, deck)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ContentType returns the MIME type for the given format.
func (e *Exporter) ContentType(format Format) string {
	switch format {
	case FormatTSV:
		return "text/tab-separated-values; charset=utf-8"
	default:
		return "application/json; charset=utf-8"
	}
}

// FileExtension returns the filename extension for the given format.
func (e *Exporter) FileExtension(format Format) string {
	switch format {
	case FormatTSV:
		return "tsv"
	default:
		return "json"
	}
}

// WriteFile serializes the deck into the configured output directory,
// creating it if needed, and returns the written path.
func (e *Exporter) WriteFile(deck *domain.Deck, format Format) (string, error) {
	if deck == nil {
		return "", errors.New("deck cannot be nil")
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(e.outputDir, fmt.Sprintf("deck-%s.%s", deck.ID, e.FileExtension(format)))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}

	if err := e.Write(f, deck, format); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}

func (e *Exporter) writeJSON(w io.Writer, deck *domain.Deck) error {
	enc := json.NewEncoder(w)
	if e.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(deck); err != nil {
		return fmt.Errorf("encoding deck JSON: %w", err)
	}
	return nil
}

// writeTSV emits one front/back pair per line with Anki file headers, so the
// file imports without manual separator configuration. Tabs and newlines
// inside fields are replaced with HTML-safe equivalents.
func (e *Exporter) writeTSV(w io.Writer, deck *domain.Deck) error {
	var sb strings.Builder
	sb.WriteString("#separator:tab\n")
	sb.WriteString("#html:true\n")

	for _, card := range deck.Cards {
		sb.WriteString(tsvField(card.Front))
		sb.WriteByte('\t')
		sb.WriteString(tsvField(card.Back))
		sb.WriteByte('\n')
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("writing deck TSV: %w", err)
	}
	return nil
}

func tsvField(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	s = strings.ReplaceAll(s, "\n", "<br>")
	return s
}
