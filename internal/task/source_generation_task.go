package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"cardforge/internal/domain"
	"cardforge/internal/pipeline"
)

// Common errors returned when constructing a SourceGenerationTask.
var (
	ErrNilSourceService = errors.New("source service cannot be nil")
	ErrNilDeckBuilder   = errors.New("deck builder cannot be nil")
	ErrNilResultSaver   = errors.New("result saver cannot be nil")
	ErrNilLogger        = errors.New("logger cannot be nil")
	ErrEmptySourceID    = errors.New("source ID cannot be empty")
)

// SourceService defines the source operations the task needs: loading the
// document and recording its processing status.
type SourceService interface {
	// GetSource retrieves a source by its ID.
	GetSource(ctx context.Context, sourceID uuid.UUID) (*domain.Source, error)

	// UpdateSourceStatus records a status transition for the source.
	UpdateSourceStatus(ctx context.Context, sourceID uuid.UUID, status domain.SourceStatus) error
}

// DeckBuilder defines the generation pipeline boundary.
type DeckBuilder interface {
	// Run chunks the source, generates and validates cards, and assembles
	// the resulting deck.
	Run(ctx context.Context, source *domain.Source) (*pipeline.Result, error)
}

// ResultSaver persists a pipeline result atomically.
type ResultSaver interface {
	// SaveResult stores the result's chunks and deck in a single
	// transaction, replacing any previous run for the same source.
	SaveResult(ctx context.Context, result *pipeline.Result) error
}

// sourceGenerationPayload represents the serialized data stored in the task.
type sourceGenerationPayload struct {
	SourceID uuid.UUID `json:"source_id"`
}

// SourceGenerationTask implements the Task interface for generating a
// flashcard deck from a source document.
type SourceGenerationTask struct {
	id       uuid.UUID
	sourceID uuid.UUID
	sources  SourceService
	builder  DeckBuilder
	saver    ResultSaver
	logger   *slog.Logger
	status   TaskStatus
}

// NewSourceGenerationTask creates a new source generation task.
func NewSourceGenerationTask(
	sourceID uuid.UUID,
	sources SourceService,
	builder DeckBuilder,
	saver ResultSaver,
	logger *slog.Logger,
) (*SourceGenerationTask, error) {
	if sources == nil {
		return nil, ErrNilSourceService
	}
	if builder == nil {
		return nil, ErrNilDeckBuilder
	}
	if saver == nil {
		return nil, ErrNilResultSaver
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if sourceID == uuid.Nil {
		return nil, ErrEmptySourceID
	}

	return &SourceGenerationTask{
		id:       uuid.New(),
		sourceID: sourceID,
		sources:  sources,
		builder:  builder,
		saver:    saver,
		logger:   logger.With("task_type", TaskTypeSourceGeneration, "source_id", sourceID),
		status:   TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier.
func (t *SourceGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier.
func (t *SourceGenerationTask) Type() string {
	return TaskTypeSourceGeneration
}

// Payload returns the task data as a byte slice.
func (t *SourceGenerationTask) Payload() []byte {
	data, err := json.Marshal(sourceGenerationPayload{SourceID: t.sourceID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status.
func (t *SourceGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute runs the full generation lifecycle: load the source, mark it
// processing, run the pipeline, persist the result, and record the final
// status. A source whose run had failed chunks finishes as
// completed_with_errors; a pipeline or persistence error marks it failed.
func (t *SourceGenerationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting source generation task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("task cancelled by context", "error", err)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	source, err := t.sources.GetSource(ctx, t.sourceID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to retrieve source", "error", err)
		return fmt.Errorf("failed to retrieve source: %w", err)
	}

	t.logger.Info("retrieved source",
		"title", source.Title,
		"format", source.Format,
		"source_status", source.Status)

	if err := t.sources.UpdateSourceStatus(ctx, t.sourceID, domain.SourceStatusProcessing); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to update source status to processing", "error", err)
		return fmt.Errorf("failed to update source status to processing: %w", err)
	}

	result, err := t.builder.Run(ctx, source)
	if err != nil {
		_ = t.sources.UpdateSourceStatus(ctx, t.sourceID, domain.SourceStatusFailed)
		t.status = TaskStatusFailed
		t.logger.Error("pipeline run failed", "error", err)
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	t.logger.Info("pipeline run finished",
		"chunks", len(result.Chunks),
		"cards", result.Deck.CardCount(),
		"failed_chunks", result.Deck.Stats.FailedChunks)

	if err := t.saver.SaveResult(ctx, result); err != nil {
		_ = t.sources.UpdateSourceStatus(ctx, t.sourceID, domain.SourceStatusFailed)
		t.status = TaskStatusFailed
		t.logger.Error("failed to save generation result", "error", err)
		return fmt.Errorf("failed to save generation result: %w", err)
	}

	finalStatus := domain.SourceStatusCompleted
	if result.Deck.Stats.FailedChunks > 0 {
		finalStatus = domain.SourceStatusCompletedWithErrors
	}
	if result.Deck.CardCount() == 0 {
		t.logger.Warn("source processing completed but no cards were accepted")
	}

	if err := t.sources.UpdateSourceStatus(ctx, t.sourceID, finalStatus); err != nil {
		// The deck is already saved, so log the error rather than fail
		// the task.
		t.logger.Error("failed to update source final status, but deck was saved",
			"error", err,
			"final_status", finalStatus)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("source generation task completed",
		"final_status", finalStatus,
		"cards_generated", result.Deck.CardCount())
	return nil
}
