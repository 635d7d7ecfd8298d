// Package ingest turns uploaded document files into Source entities: format
// detection, text extraction, cleaning, and language detection.
//
// The rest of the system only ever sees the extracted, cleaned text; no
// binary content passes this boundary.
package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/RadhiFadlillah/whatlanggo"

	"cardforge/internal/domain"
)

// Common ingest errors.
var (
	// ErrUnsupportedFormat is returned for file extensions no extractor
	// handles.
	ErrUnsupportedFormat = errors.New("unsupported source format")

	// ErrNoTextContent is returned when extraction and cleaning leave no
	// usable text.
	ErrNoTextContent = errors.New("no text content in source")
)

// Loader builds Source entities from raw uploads.
type Loader struct {
	cleaner *Cleaner
	logger  *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(cleaner *Cleaner, logger *slog.Logger) (*Loader, error) {
	if cleaner == nil {
		return nil, errors.New("cleaner cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Loader{
		cleaner: cleaner,
		logger:  logger.With("component", "ingest_loader"),
	}, nil
}

// Load extracts, cleans, and language-detects the given file content and
// returns a pending Source. An empty title falls back to the filename
// without its extension.
func (l *Loader) Load(title, filename string, data []byte) (*domain.Source, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	raw, err := ExtractText(format, data)
	if err != nil {
		return nil, fmt.Errorf("extracting %s text: %w", format, err)
	}

	text, cleanStats := l.cleaner.CleanWithStats(raw)
	if text == "" {
		return nil, ErrNoTextContent
	}

	if title == "" {
		base := filepath.Base(filename)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	language := DetectLanguage(text)

	source, err := domain.NewSource(title, format, language, text)
	if err != nil {
		return nil, err
	}

	l.logger.Info("source ingested",
		"source_id", source.ID.String(),
		"format", string(format),
		"language", language,
		"text_length", len(text),
		"urls_removed", cleanStats.URLsRemoved,
		"page_lines_removed", cleanStats.PageLinesRemoved,
		"hyphens_repaired", cleanStats.HyphensRepaired)

	return source, nil
}

// DetectFormat maps a filename extension to a source format.
func DetectFormat(filename string) (domain.SourceFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text":
		return domain.SourceFormatTXT, nil
	case ".md", ".markdown":
		return domain.SourceFormatMarkdown, nil
	case ".html", ".htm":
		return domain.SourceFormatHTML, nil
	case ".pdf":
		return domain.SourceFormatPDF, nil
	case ".docx":
		return domain.SourceFormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// DetectLanguage returns the ISO 639-3 code of the text's dominant language,
// or an empty string when detection is not confident enough to act on.
func DetectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6393()
}
