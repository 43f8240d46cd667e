package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/domain"
)

// WorldStore defines the interface for world data persistence.
// Worlds own their ordered section list; sections are stored with the
// world and returned in progression order.
type WorldStore interface {
	// Create saves a new world and its sections.
	// All data must be valid according to domain validation rules.
	// Returns validation errors if the world data is invalid.
	Create(ctx context.Context, world *domain.World) error

	// GetByID retrieves a world by its unique ID, sections included and
	// ordered by position.
	// Returns ErrWorldNotFound if the world does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.World, error)

	// List retrieves worlds ordered by creation time, newest first.
	// Returns an empty slice when no worlds exist.
	List(ctx context.Context, limit, offset int) ([]*domain.World, error)

	// WithTx returns a new WorldStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller
	// (typically a service) via RunInTransaction.
	WithTx(tx *sql.Tx) WorldStore
}

// ProgressStore defines the interface for per-user section completion.
// The completed set grows monotonically; there is no un-complete path.
type ProgressStore interface {
	// MarkCompleted records that the user finished the section. Marking
	// an already-completed section is a no-op, not an error.
	MarkCompleted(ctx context.Context, userID, worldID uuid.UUID, sectionID string) error

	// GetCompletedSections returns the set of section identifiers the
	// user has finished in the world. Returns an empty set when the
	// user has no progress.
	GetCompletedSections(ctx context.Context, userID, worldID uuid.UUID) (map[string]bool, error)

	// WithTx returns a new ProgressStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProgressStore
}
