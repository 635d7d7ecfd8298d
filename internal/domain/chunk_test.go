package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewChunk(t *testing.T) {
	t.Parallel()

	sourceID := uuid.New()

	chunk, err := NewChunk(sourceID, "Some chunk text.", 0, 16, 5, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if chunk.ID == uuid.Nil {
		t.Error("Expected non-nil chunk ID")
	}

	if chunk.SourceID != sourceID {
		t.Errorf("Expected source ID %s, got %s", sourceID, chunk.SourceID)
	}

	if chunk.Oversized || chunk.TokensEstimated {
		t.Error("Expected flags to default to false")
	}
}

func TestChunkValidate(t *testing.T) {
	t.Parallel()

	sourceID := uuid.New()

	tests := []struct {
		name    string
		text    string
		start   int
		end     int
		tokens  int
		seq     int
		wantErr error
	}{
		{"valid", "text", 0, 4, 1, 0, nil},
		{"end equals start", "text", 4, 4, 1, 0, ErrInvalidChunkOffsets},
		{"end before start", "text", 5, 4, 1, 0, ErrInvalidChunkOffsets},
		{"blank text", "   ", 0, 3, 1, 0, ErrEmptyChunkText},
		{"negative tokens", "text", 0, 4, -1, 0, ErrNegativeTokenCount},
		{"negative sequence", "text", 0, 4, 1, -1, ErrNegativeSequence},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewChunk(sourceID, tc.text, tc.start, tc.end, tc.tokens, tc.seq)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
		})
	}

	if _, err := NewChunk(uuid.Nil, "text", 0, 4, 1, 0); !errors.Is(err, ErrEmptyChunkSourceID) {
		t.Errorf("Expected %v, got %v", ErrEmptyChunkSourceID, err)
	}
}
