package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewSource(t *testing.T) {
	t.Parallel()

	src, err := NewSource("Biology Notes", SourceFormatMarkdown, "eng", "Mitochondria are organelles.")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if src.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if src.Status != SourceStatusPending {
		t.Errorf("Expected status %s, got %s", SourceStatusPending, src.Status)
	}

	if src.Language != "eng" {
		t.Errorf("Expected language eng, got %s", src.Language)
	}

	if src.CreatedAt.IsZero() || src.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	// Empty title
	if _, err := NewSource("  ", SourceFormatTXT, "", "text"); !errors.Is(err, ErrEmptySourceTitle) {
		t.Errorf("Expected %v, got %v", ErrEmptySourceTitle, err)
	}

	// Whitespace-only text
	if _, err := NewSource("t", SourceFormatTXT, "", " \n\t "); !errors.Is(err, ErrEmptySourceText) {
		t.Errorf("Expected %v, got %v", ErrEmptySourceText, err)
	}

	// Unknown format
	if _, err := NewSource("t", SourceFormat("epub"), "", "text"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Expected %v, got %v", ErrInvalidFormat, err)
	}

	// Language may be empty when detection was inconclusive
	if _, err := NewSource("t", SourceFormatTXT, "", "text"); err != nil {
		t.Errorf("Expected no error for empty language, got %v", err)
	}
}

func TestSourceUpdateStatus(t *testing.T) {
	t.Parallel()

	src, err := NewSource("t", SourceFormatTXT, "", "text")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	before := src.UpdatedAt
	if err := src.UpdateStatus(SourceStatusProcessing); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if src.Status != SourceStatusProcessing {
		t.Errorf("Expected status %s, got %s", SourceStatusProcessing, src.Status)
	}

	if src.UpdatedAt.Before(before) {
		t.Error("Expected UpdatedAt to advance")
	}

	if err := src.UpdateStatus(SourceStatus("bogus")); !errors.Is(err, ErrInvalidSourceState) {
		t.Errorf("Expected %v, got %v", ErrInvalidSourceState, err)
	}
}
