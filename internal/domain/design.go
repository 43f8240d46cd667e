package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Design-specific validation errors
var (
	// ErrDesignWorldIDEmpty is returned when a design's world ID is empty or nil.
	ErrDesignWorldIDEmpty = errors.New("design world ID cannot be empty")
)

// ModuleDesign carries the AI-generated presentation values for a single
// section. ModuleDesigns are index-aligned with World.Sections: the
// design at position i describes the section at position i. Positions
// beyond the shorter of the two sequences have no design and consumers
// must fall back to section-level defaults.
type ModuleDesign struct {
	Title       string `json:"title,omitempty"`
	VisualFocus string `json:"visual_focus,omitempty"`
}

// WorldDesign is an AI-produced visual theme overriding subject defaults
// for a specific world. It may be absent for a world indefinitely (the
// generator runs asynchronously and may never succeed), and any of its
// fields may be empty; consumers resolve every value through a fallback
// chain and never depend on a field being populated.
type WorldDesign struct {
	WorldID       uuid.UUID      `json:"world_id"`
	PrimaryColor  string         `json:"primary_color,omitempty"`
	AccentColor   string         `json:"accent_color,omitempty"`
	ModuleDesigns []ModuleDesign `json:"module_designs,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewWorldDesign creates a new WorldDesign for the given world.
// Partial values are allowed; only the world ID is mandatory.
func NewWorldDesign(worldID uuid.UUID, primaryColor, accentColor string, moduleDesigns []ModuleDesign) (*WorldDesign, error) {
	design := &WorldDesign{
		WorldID:       worldID,
		PrimaryColor:  primaryColor,
		AccentColor:   accentColor,
		ModuleDesigns: moduleDesigns,
		CreatedAt:     time.Now().UTC(),
	}

	if err := design.Validate(); err != nil {
		return nil, err
	}

	return design, nil
}

// Validate checks if the WorldDesign has valid data.
func (d *WorldDesign) Validate() error {
	if d.WorldID == uuid.Nil {
		return ErrDesignWorldIDEmpty
	}
	return nil
}
