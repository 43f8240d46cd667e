package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// World-specific validation errors
var (
	// ErrWorldIDEmpty is returned when a world ID is empty or nil.
	ErrWorldIDEmpty = errors.New("world ID cannot be empty")

	// ErrWorldCreatorIDEmpty is returned when a world's creator ID is empty or nil.
	ErrWorldCreatorIDEmpty = errors.New("world creator ID cannot be empty")

	// ErrWorldTitleEmpty is returned when a world's title is empty.
	ErrWorldTitleEmpty = errors.New("world title cannot be empty")

	// ErrSectionIDEmpty is returned when a section within a world has no identifier.
	ErrSectionIDEmpty = errors.New("section ID cannot be empty")

	// ErrSectionTitleEmpty is returned when a section within a world has no title.
	ErrSectionTitleEmpty = errors.New("section title cannot be empty")

	// ErrInvalidModuleType is returned when a section carries an unknown module type.
	ErrInvalidModuleType = errors.New("invalid module type")
)

// ModuleType classifies the pedagogical role of a section within a world.
// It influences default iconography when no AI design is present.
type ModuleType string

// Possible module type values
const (
	ModuleTypeDiscovery  ModuleType = "discovery"
	ModuleTypeKnowledge  ModuleType = "knowledge"
	ModuleTypePractice   ModuleType = "practice"
	ModuleTypeReflection ModuleType = "reflection"
	ModuleTypeChallenge  ModuleType = "challenge"
)

// IsValid checks whether the module type is one of the known values.
// The empty string is allowed: sections without an explicit module type
// fall back to generic iconography.
func (t ModuleType) IsValid() bool {
	switch t {
	case "", ModuleTypeDiscovery, ModuleTypeKnowledge, ModuleTypePractice,
		ModuleTypeReflection, ModuleTypeChallenge:
		return true
	}
	return false
}

// Section is one page/unit of content within a world. The order of
// sections inside World.Sections is significant: it defines the
// progression order students move through.
type Section struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	ComponentType string     `json:"component_type"`
	ModuleType    ModuleType `json:"module_type,omitempty"`
}

// Validate checks if the Section has valid data.
func (s *Section) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrSectionIDEmpty
	}
	if strings.TrimSpace(s.Title) == "" {
		return ErrSectionTitleEmpty
	}
	if !s.ModuleType.IsValid() {
		return ErrInvalidModuleType
	}
	return nil
}

// World represents a themed, ordered collection of learning sections
// presented to a student. Sections are immutable once the world is
// loaded; the engine only ever reads them.
type World struct {
	ID          uuid.UUID `json:"id"`
	CreatorID   uuid.UUID `json:"creator_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Subject     string    `json:"subject"`
	Sections    []Section `json:"sections"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewWorld creates a new World with the given creator, title, subject and
// sections. It generates a new UUID for the world ID and sets the
// creation/update timestamps. Returns an error if validation fails.
func NewWorld(creatorID uuid.UUID, title, description, subject string, sections []Section) (*World, error) {
	world := &World{
		ID:          uuid.New(),
		CreatorID:   creatorID,
		Title:       title,
		Description: description,
		Subject:     subject,
		Sections:    sections,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := world.Validate(); err != nil {
		return nil, err
	}

	return world, nil
}

// Validate checks if the World has valid data.
// Returns an error if any field fails validation.
func (w *World) Validate() error {
	if w.ID == uuid.Nil {
		return ErrWorldIDEmpty
	}

	if w.CreatorID == uuid.Nil {
		return ErrWorldCreatorIDEmpty
	}

	if strings.TrimSpace(w.Title) == "" {
		return ErrWorldTitleEmpty
	}

	for i := range w.Sections {
		if err := w.Sections[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// SectionIndex returns the position of the section with the given ID,
// or -1 if no section carries that ID.
func (w *World) SectionIndex(sectionID string) int {
	for i := range w.Sections {
		if w.Sections[i].ID == sectionID {
			return i
		}
	}
	return -1
}
