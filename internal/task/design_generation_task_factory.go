package task

import (
	"log/slog"

	"github.com/google/uuid"
)

// DesignGenerationTaskFactory creates DesignGenerationTask instances
type DesignGenerationTaskFactory struct {
	worlds    WorldReader
	generator Generator
	designs   DesignWriter
	logger    *slog.Logger
}

// NewDesignGenerationTaskFactory creates a new factory for DesignGenerationTasks
func NewDesignGenerationTaskFactory(
	worlds WorldReader,
	generator Generator,
	designs DesignWriter,
	logger *slog.Logger,
) *DesignGenerationTaskFactory {
	return &DesignGenerationTaskFactory{
		worlds:    worlds,
		generator: generator,
		designs:   designs,
		logger:    logger.With("component", "design_generation_task_factory"),
	}
}

// CreateTask creates a new DesignGenerationTask for the specified world
func (f *DesignGenerationTaskFactory) CreateTask(worldID uuid.UUID) (Task, error) {
	task, err := NewDesignGenerationTask(
		worldID,
		f.worlds,
		f.generator,
		f.designs,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}
