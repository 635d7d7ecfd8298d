package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceFormat identifies the original file format of a source document.
type SourceFormat string

// Supported source formats.
const (
	SourceFormatTXT      SourceFormat = "txt"
	SourceFormatMarkdown SourceFormat = "md"
	SourceFormatPDF      SourceFormat = "pdf"
	SourceFormatDOCX     SourceFormat = "docx"
	SourceFormatHTML     SourceFormat = "html"
)

// SourceStatus represents the processing state of a source document.
type SourceStatus string

// Possible source status values.
const (
	SourceStatusPending             SourceStatus = "pending"
	SourceStatusProcessing          SourceStatus = "processing"
	SourceStatusCompleted           SourceStatus = "completed"
	SourceStatusCompletedWithErrors SourceStatus = "completed_with_errors"
	SourceStatusFailed              SourceStatus = "failed"
)

// Common validation errors for Source.
var (
	ErrEmptySourceID      = errors.New("source ID cannot be empty")
	ErrEmptySourceTitle   = errors.New("source title cannot be empty")
	ErrEmptySourceText    = errors.New("source text cannot be empty")
	ErrInvalidFormat      = errors.New("invalid source format")
	ErrInvalidSourceState = errors.New("invalid source status")
)

// Source represents one ingested document: its extracted, cleaned text plus
// identifying metadata. The text is immutable after ingestion; only Status
// and UpdatedAt change while the document is processed.
type Source struct {
	ID        uuid.UUID    `json:"id"`
	Title     string       `json:"title"`
	Format    SourceFormat `json:"format"`
	Language  string       `json:"language,omitempty"`
	Text      string       `json:"text"`
	Status    SourceStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewSource creates a Source in the pending state with a fresh ID.
// Language may be empty when detection was inconclusive.
// Returns an error if validation fails.
func NewSource(title string, format SourceFormat, language, text string) (*Source, error) {
	src := &Source{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		Format:    format,
		Language:  language,
		Text:      text,
		Status:    SourceStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := src.Validate(); err != nil {
		return nil, err
	}

	return src, nil
}

// Validate checks if the Source has valid data.
// Returns an error if any field fails validation.
func (s *Source) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySourceID
	}

	if s.Title == "" {
		return ErrEmptySourceTitle
	}

	if strings.TrimSpace(s.Text) == "" {
		return ErrEmptySourceText
	}

	if !isValidSourceFormat(s.Format) {
		return ErrInvalidFormat
	}

	if !isValidSourceStatus(s.Status) {
		return ErrInvalidSourceState
	}

	return nil
}

// UpdateStatus transitions the source to the given status and refreshes the
// UpdatedAt timestamp. Returns an error if the status is unknown.
func (s *Source) UpdateStatus(status SourceStatus) error {
	if !isValidSourceStatus(status) {
		return ErrInvalidSourceState
	}

	s.Status = status
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// ParseSourceStatus converts a raw string into a SourceStatus.
// Returns ErrInvalidSourceState for unknown values.
func ParseSourceStatus(raw string) (SourceStatus, error) {
	status := SourceStatus(raw)
	if !isValidSourceStatus(status) {
		return "", ErrInvalidSourceState
	}
	return status, nil
}

func isValidSourceFormat(format SourceFormat) bool {
	switch format {
	case SourceFormatTXT, SourceFormatMarkdown, SourceFormatPDF,
		SourceFormatDOCX, SourceFormatHTML:
		return true
	default:
		return false
	}
}

func isValidSourceStatus(status SourceStatus) bool {
	switch status {
	case SourceStatusPending, SourceStatusProcessing, SourceStatusCompleted,
		SourceStatusCompletedWithErrors, SourceStatusFailed:
		return true
	default:
		return false
	}
}
