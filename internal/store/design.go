package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/strategiert/lernwelt-api/internal/domain"
)

// DesignStore defines the interface for AI-generated world design
// persistence. A world has at most one design; regeneration replaces
// the prior one.
type DesignStore interface {
	// Upsert saves the design for its world, replacing any existing one.
	// Returns validation errors if the design data is invalid.
	Upsert(ctx context.Context, design *domain.WorldDesign) error

	// GetByWorldID retrieves the design for a world.
	// Returns ErrDesignNotFound if no design has been generated. Callers
	// must tolerate that condition indefinitely and fall back to subject
	// theming.
	GetByWorldID(ctx context.Context, worldID uuid.UUID) (*domain.WorldDesign, error)
}
