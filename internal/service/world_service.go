package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/events"
	"github.com/strategiert/lernwelt-api/internal/progression"
	"github.com/strategiert/lernwelt-api/internal/store"
	"github.com/strategiert/lernwelt-api/internal/theme"
)

// WorldRepository defines the repository interface for the service layer.
// It is aligned with store.WorldStore plus access to the underlying
// database for transaction management.
type WorldRepository interface {
	// Create saves a new world and its sections to the store
	Create(ctx context.Context, world *domain.World) error

	// GetByID retrieves a world by its unique ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.World, error)

	// List retrieves worlds ordered by creation time, newest first
	List(ctx context.Context, limit, offset int) ([]*domain.World, error)

	// WithTx returns a new repository instance that uses the provided transaction
	WithTx(tx *sql.Tx) WorldRepository

	// DB returns the underlying database connection
	DB() *sql.DB
}

// ProgressRepository is the service-layer view of per-user section
// completion.
type ProgressRepository interface {
	// MarkCompleted records that the user finished the section
	MarkCompleted(ctx context.Context, userID, worldID uuid.UUID, sectionID string) error

	// GetCompletedSections returns the set of completed section IDs
	GetCompletedSections(ctx context.Context, userID, worldID uuid.UUID) (map[string]bool, error)
}

// DesignRepository is the service-layer view of stored AI designs.
type DesignRepository interface {
	// GetByWorldID retrieves the design for a world, or store.ErrDesignNotFound
	GetByWorldID(ctx context.Context, worldID uuid.UUID) (*domain.WorldDesign, error)
}


// Common sentinel errors for WorldService
var (
	// ErrWorldNotFound indicates that the world does not exist
	ErrWorldNotFound = errors.New("world not found")

	// ErrSectionNotFound indicates that the world has no section with the given ID
	ErrSectionNotFound = errors.New("section not found in world")

	// ErrSectionLocked indicates a navigation request to a section the
	// user has not yet unlocked. The tracker itself treats this as a
	// silent no-op; the sentinel exists so the transport layer can
	// report the rejection instead of leaving clients guessing.
	ErrSectionLocked = errors.New("section is locked")
)

// WorldServiceError wraps errors from the world service with context.
type WorldServiceError struct {
	// Operation is the operation that failed (e.g., "create_world", "get_world_view")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for WorldServiceError.
func (e *WorldServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("world service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("world service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *WorldServiceError) Unwrap() error {
	return e.Err
}

// NewWorldServiceError creates a new WorldServiceError.
// It returns known sentinel errors directly without wrapping.
func NewWorldServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrWorldNotFound) || errors.Is(err, ErrSectionNotFound) ||
		errors.Is(err, ErrSectionLocked) {
		return err
	}

	if errors.Is(err, store.ErrWorldNotFound) {
		return ErrWorldNotFound
	}

	return &WorldServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// SectionView is one section of a world with its computed display
// state and resolved presentation values.
type SectionView struct {
	ID            string                   `json:"id"`
	Title         string                   `json:"title"`
	ComponentType string                   `json:"component_type"`
	ModuleType    domain.ModuleType        `json:"module_type,omitempty"`
	State         progression.SectionState `json:"state"`
	Icon          string                   `json:"icon"`
	VisualFocus   string                   `json:"visual_focus,omitempty"`
}

// WorldView is the fully assembled presentation of a world for one
// user: the world itself, resolved theme colors and per-section states.
type WorldView struct {
	World          *domain.World `json:"world"`
	PrimaryColor   string        `json:"primary_color"`
	AccentColor    string        `json:"accent_color"`
	Icon           string        `json:"icon"`
	Sections       []SectionView `json:"sections"`
	CompletedCount int           `json:"completed_count"`
	TotalCount     int           `json:"total_count"`
}

// WorldService provides world-related operations: creation with
// background design generation, view assembly and progress recording.
type WorldService interface {
	// CreateWorld creates a new world and enqueues AI design generation for it
	CreateWorld(
		ctx context.Context,
		creatorID uuid.UUID,
		title, description, subject string,
		sections []domain.Section,
	) (*domain.World, error)

	// GetWorldView assembles the presentation of a world for a user at a
	// given position: resolved theme plus per-section display states
	GetWorldView(ctx context.Context, worldID, userID uuid.UUID, currentIndex int) (*WorldView, error)

	// ListWorlds retrieves worlds ordered by creation time, newest first
	ListWorlds(ctx context.Context, limit, offset int) ([]*domain.World, error)

	// MarkSectionCompleted records that the user finished a section.
	// Repeat completions are no-ops.
	MarkSectionCompleted(ctx context.Context, worldID, userID uuid.UUID, sectionID string) error

	// Navigate validates a move to the section at the given index.
	// Returns ErrSectionLocked when the accessibility rule rejects it.
	Navigate(ctx context.Context, worldID, userID uuid.UUID, currentIndex, targetIndex int) error
}

// worldServiceImpl implements the WorldService interface
type worldServiceImpl struct {
	worldRepo    WorldRepository
	progressRepo ProgressRepository
	designRepo   DesignRepository
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewWorldService creates a new WorldService.
// It returns an error if any of the required dependencies are nil.
func NewWorldService(
	worldRepo WorldRepository,
	progressRepo ProgressRepository,
	designRepo DesignRepository,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (WorldService, error) {
	if worldRepo == nil {
		return nil, &WorldServiceError{
			Operation: "create_service",
			Message:   "worldRepo cannot be nil",
		}
	}
	if progressRepo == nil {
		return nil, &WorldServiceError{
			Operation: "create_service",
			Message:   "progressRepo cannot be nil",
		}
	}
	if designRepo == nil {
		return nil, &WorldServiceError{
			Operation: "create_service",
			Message:   "designRepo cannot be nil",
		}
	}
	if eventEmitter == nil {
		return nil, &WorldServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &worldServiceImpl{
		worldRepo:    worldRepo,
		progressRepo: progressRepo,
		designRepo:   designRepo,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "world_service"),
	}, nil
}

// CreateWorld creates a new world and emits an event requesting AI
// design generation. The world is usable immediately with subject
// theming; the generated design arrives asynchronously or never.
func (s *worldServiceImpl) CreateWorld(
	ctx context.Context,
	creatorID uuid.UUID,
	title, description, subject string,
	sections []domain.Section,
) (*domain.World, error) {
	world, err := domain.NewWorld(creatorID, title, description, subject, sections)
	if err != nil {
		s.logger.Error("failed to create world object",
			"error", err,
			"creator_id", creatorID)
		return nil, NewWorldServiceError("create_world", "failed to create world object", err)
	}

	err = store.RunInTransaction(ctx, s.worldRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.worldRepo.WithTx(tx)

		if err := txRepo.Create(ctx, world); err != nil {
			s.logger.Error("failed to create world in transaction",
				"error", err,
				"creator_id", creatorID,
				"world_id", world.ID)
			return NewWorldServiceError("create_world", "failed to save world to database", err)
		}
		return nil
	})

	if err != nil {
		// Error is already wrapped in the transaction
		return nil, err
	}

	s.logger.Info("world created successfully",
		"world_id", world.ID,
		"creator_id", creatorID,
		"section_count", len(world.Sections))

	event, err := events.NewDesignRequestEvent(world.ID)
	if err != nil {
		s.logger.Error("failed to create design generation event",
			"error", err,
			"world_id", world.ID)
		return nil, NewWorldServiceError("create_world", "failed to create event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit design generation event",
			"error", err,
			"world_id", world.ID,
			"event_id", event.ID)
		return nil, NewWorldServiceError("create_world", "failed to emit event", err)
	}

	s.logger.Info("design generation event emitted successfully",
		"world_id", world.ID,
		"event_id", event.ID)

	return world, nil
}

// GetWorldView assembles the full presentation of a world for a user.
// A missing or unreadable design is not an error: the view degrades to
// the subject's static theme.
func (s *worldServiceImpl) GetWorldView(
	ctx context.Context,
	worldID, userID uuid.UUID,
	currentIndex int,
) (*WorldView, error) {
	world, err := s.worldRepo.GetByID(ctx, worldID)
	if err != nil {
		s.logger.Error("failed to retrieve world",
			"error", err,
			"world_id", worldID)
		if errors.Is(err, store.ErrWorldNotFound) {
			return nil, ErrWorldNotFound
		}
		return nil, NewWorldServiceError("get_world_view", "failed to retrieve world", err)
	}

	design, err := s.designRepo.GetByWorldID(ctx, worldID)
	if err != nil {
		if !errors.Is(err, store.ErrDesignNotFound) {
			// Theme degradation beats a failed page load.
			s.logger.Warn("failed to retrieve design, falling back to subject theme",
				"error", err,
				"world_id", worldID)
		}
		design = nil
	}

	completed, err := s.progressRepo.GetCompletedSections(ctx, userID, worldID)
	if err != nil {
		s.logger.Error("failed to retrieve progress",
			"error", err,
			"world_id", worldID,
			"user_id", userID)
		return nil, NewWorldServiceError("get_world_view", "failed to retrieve progress", err)
	}

	tracker := progression.NewTracker(world.Sections, completed, currentIndex)
	states := tracker.States()
	done, total := tracker.Progress()

	sectionViews := make([]SectionView, len(world.Sections))
	for i, sec := range world.Sections {
		sectionViews[i] = SectionView{
			ID:            sec.ID,
			Title:         theme.ResolveModuleTitle(design, i, sec),
			ComponentType: sec.ComponentType,
			ModuleType:    sec.ModuleType,
			State:         states[i],
			Icon:          theme.ResolveIcon(world.Subject, sec.ModuleType),
			VisualFocus:   theme.ResolveModuleVisual(design, i),
		}
	}

	return &WorldView{
		World:          world,
		PrimaryColor:   theme.ResolvePrimaryColor(design, world.Subject),
		AccentColor:    theme.ResolveAccentColor(design, world.Subject),
		Icon:           theme.ForSubject(world.Subject).Icon,
		Sections:       sectionViews,
		CompletedCount: done,
		TotalCount:     total,
	}, nil
}

// ListWorlds retrieves worlds ordered newest-first.
func (s *worldServiceImpl) ListWorlds(ctx context.Context, limit, offset int) ([]*domain.World, error) {
	worlds, err := s.worldRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list worlds",
			"error", err,
			"limit", limit,
			"offset", offset)
		return nil, NewWorldServiceError("list_worlds", "failed to list worlds", err)
	}
	return worlds, nil
}

// MarkSectionCompleted records a completion after verifying the
// section actually belongs to the world.
func (s *worldServiceImpl) MarkSectionCompleted(
	ctx context.Context,
	worldID, userID uuid.UUID,
	sectionID string,
) error {
	world, err := s.worldRepo.GetByID(ctx, worldID)
	if err != nil {
		if errors.Is(err, store.ErrWorldNotFound) {
			return ErrWorldNotFound
		}
		return NewWorldServiceError("mark_section_completed", "failed to retrieve world", err)
	}

	if world.SectionIndex(sectionID) < 0 {
		s.logger.Warn("completion request for unknown section",
			"world_id", worldID,
			"section_id", sectionID)
		return ErrSectionNotFound
	}

	if err := s.progressRepo.MarkCompleted(ctx, userID, worldID, sectionID); err != nil {
		s.logger.Error("failed to mark section completed",
			"error", err,
			"world_id", worldID,
			"user_id", userID,
			"section_id", sectionID)
		return NewWorldServiceError("mark_section_completed", "failed to record completion", err)
	}

	s.logger.Info("section marked completed",
		"world_id", worldID,
		"user_id", userID,
		"section_id", sectionID)
	return nil
}

// Navigate checks whether the user may move to targetIndex given their
// completed set and current position. The progression gate itself is a
// silent local decision; this wrapper surfaces the rejection so the
// HTTP layer can answer with a conflict instead of nothing.
func (s *worldServiceImpl) Navigate(
	ctx context.Context,
	worldID, userID uuid.UUID,
	currentIndex, targetIndex int,
) error {
	world, err := s.worldRepo.GetByID(ctx, worldID)
	if err != nil {
		if errors.Is(err, store.ErrWorldNotFound) {
			return ErrWorldNotFound
		}
		return NewWorldServiceError("navigate", "failed to retrieve world", err)
	}

	completed, err := s.progressRepo.GetCompletedSections(ctx, userID, worldID)
	if err != nil {
		return NewWorldServiceError("navigate", "failed to retrieve progress", err)
	}

	tracker := progression.NewTracker(world.Sections, completed, currentIndex)
	if !tracker.Navigate(targetIndex) {
		return ErrSectionLocked
	}
	return nil
}
