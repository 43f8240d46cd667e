package generation

import (
	"context"

	"github.com/strategiert/lernwelt-api/internal/domain"
)

// DesignGenerator defines the interface for generating a visual design
// for a learning world. It is the boundary between the application core
// and external AI/LLM services; the engine only ever consumes the
// resulting WorldDesign through the theme fallback chain, so a
// generator that fails forever is tolerated.
type DesignGenerator interface {
	// GenerateDesign produces a WorldDesign for the given world: a color
	// palette and per-section module designs aligned with the world's
	// section order. Returns an error from errors.go when generation
	// fails; callers decide whether to retry based on ErrTransientFailure.
	GenerateDesign(ctx context.Context, world *domain.World) (*domain.WorldDesign, error)
}
