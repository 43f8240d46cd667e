package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/domain"
)

// Common errors
var (
	ErrNilWorldReader  = errors.New("world reader cannot be nil")
	ErrNilGenerator    = errors.New("generator cannot be nil")
	ErrNilDesignWriter = errors.New("design writer cannot be nil")
	ErrNilLogger       = errors.New("logger cannot be nil")
	ErrEmptyWorldID    = errors.New("world ID cannot be empty")
)

// WorldReader provides the world lookup the task needs. The interface is
// declared here, next to its consumer, and is satisfied by store.WorldStore.
type WorldReader interface {
	// GetByID retrieves a world by its unique ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.World, error)
}

// Generator defines the interface for design generation services.
// It is satisfied by the Gemini-backed generator in platform/gemini.
type Generator interface {
	// GenerateDesign produces a visual design for the given world
	GenerateDesign(ctx context.Context, world *domain.World) (*domain.WorldDesign, error)
}

// DesignWriter persists a generated design. Satisfied by store.DesignStore.
type DesignWriter interface {
	// Upsert saves the design for its world, replacing any existing one
	Upsert(ctx context.Context, design *domain.WorldDesign) error
}

// designGenerationPayload represents the serialized data stored in the task
type designGenerationPayload struct {
	WorldID uuid.UUID `json:"world_id"`
}

// DesignGenerationTask implements the Task interface for generating a
// visual design for a learning world. Failure is non-fatal for the world:
// until a design exists, views fall back to the subject's default theme.
type DesignGenerationTask struct {
	id        uuid.UUID
	worldID   uuid.UUID
	worlds    WorldReader
	generator Generator
	designs   DesignWriter
	logger    *slog.Logger
	status    TaskStatus
}

// NewDesignGenerationTask creates a new design generation task
func NewDesignGenerationTask(
	worldID uuid.UUID,
	worlds WorldReader,
	generator Generator,
	designs DesignWriter,
	logger *slog.Logger,
) (*DesignGenerationTask, error) {
	if worlds == nil {
		return nil, ErrNilWorldReader
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if designs == nil {
		return nil, ErrNilDesignWriter
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if worldID == uuid.Nil {
		return nil, ErrEmptyWorldID
	}

	return &DesignGenerationTask{
		id:        uuid.New(),
		worldID:   worldID,
		worlds:    worlds,
		generator: generator,
		designs:   designs,
		logger:    logger.With("task_type", TaskTypeDesignGeneration, "world_id", worldID),
		status:    TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *DesignGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *DesignGenerationTask) Type() string {
	return TaskTypeDesignGeneration
}

// Payload returns the task data as a byte slice
func (t *DesignGenerationTask) Payload() []byte {
	payload := designGenerationPayload{
		WorldID: t.worldID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *DesignGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute runs the design generation task: it loads the world, asks the
// generator for a design, and saves the result. Each step updates the
// task status and is logged; a failure at any step fails the task without
// touching the world itself.
func (t *DesignGenerationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting design generation task")

	if err := ctx.Err(); err != nil {
		return t.fail(fmt.Errorf("task cancelled by context: %w", err))
	}

	world, err := t.worlds.GetByID(ctx, t.worldID)
	if err != nil {
		return t.fail(fmt.Errorf("failed to retrieve world: %w", err))
	}

	t.logger.Info("retrieved world",
		"subject", world.Subject,
		"section_count", len(world.Sections))

	design, err := t.generator.GenerateDesign(ctx, world)
	if err != nil {
		return t.fail(fmt.Errorf("failed to generate design: %w", err))
	}

	if err := t.designs.Upsert(ctx, design); err != nil {
		return t.fail(fmt.Errorf("failed to save generated design: %w", err))
	}

	t.status = TaskStatusCompleted
	t.logger.Info("design generation task completed successfully",
		"module_design_count", len(design.ModuleDesigns))
	return nil
}

func (t *DesignGenerationTask) fail(err error) error {
	t.status = TaskStatusFailed
	t.logger.Error("design generation task failed", "error", err)
	return err
}
