package task

import (
	"log/slog"

	"github.com/google/uuid"
)

// SourceGenerationTaskFactory creates SourceGenerationTask instances with a
// fixed set of dependencies, so handlers only need a source ID.
type SourceGenerationTaskFactory struct {
	sources SourceService
	builder DeckBuilder
	saver   ResultSaver
	logger  *slog.Logger
}

// NewSourceGenerationTaskFactory creates a new factory for source generation
// tasks.
func NewSourceGenerationTaskFactory(
	sources SourceService,
	builder DeckBuilder,
	saver ResultSaver,
	logger *slog.Logger,
) *SourceGenerationTaskFactory {
	return &SourceGenerationTaskFactory{
		sources: sources,
		builder: builder,
		saver:   saver,
		logger:  logger.With("component", "source_generation_task_factory"),
	}
}

// CreateTask creates a new SourceGenerationTask for the specified source.
func (f *SourceGenerationTaskFactory) CreateTask(sourceID uuid.UUID) (Task, error) {
	return NewSourceGenerationTask(sourceID, f.sources, f.builder, f.saver, f.logger)
}
