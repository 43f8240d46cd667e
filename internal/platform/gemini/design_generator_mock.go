package gemini

import (
	"context"

	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/generation"
)

// MockDesignGenerator is a configurable mock implementation of
// generation.DesignGenerator for tests that must not reach the API.
type MockDesignGenerator struct {
	// GenerateDesignFunc overrides the default behavior when set
	GenerateDesignFunc func(ctx context.Context, world *domain.World) (*domain.WorldDesign, error)

	// Design and Err are returned when no function override is set
	Design *domain.WorldDesign
	Err    error

	// Calls counts how often GenerateDesign was invoked
	Calls int
}

// Ensure MockDesignGenerator implements generation.DesignGenerator
var _ generation.DesignGenerator = (*MockDesignGenerator)(nil)

// GenerateDesign implements generation.DesignGenerator.
func (m *MockDesignGenerator) GenerateDesign(
	ctx context.Context,
	world *domain.World,
) (*domain.WorldDesign, error) {
	m.Calls++
	if m.GenerateDesignFunc != nil {
		return m.GenerateDesignFunc(ctx, world)
	}
	return m.Design, m.Err
}
