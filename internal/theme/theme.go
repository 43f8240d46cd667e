// Package theme resolves the visual presentation of a world and its
// modules. Every value flows through a strict fallback chain: the
// AI-generated WorldDesign wins when a field is present, otherwise the
// subject's static theme applies, otherwise the default theme entry.
// All functions are pure and total; they never return empty values and
// never perform I/O, so results can be cached per render.
package theme

import (
	"strings"

	"github.com/strategiert/lernwelt-api/internal/domain"
)

// SubjectTheme is the ground-truth fallback palette for a subject when
// no AI design is present for a world.
type SubjectTheme struct {
	Color       string
	AccentColor string
	Icon        string
}

// subjectThemes maps subject keywords to their static theme. Lookups
// are case-insensitive; unknown subjects resolve to defaultTheme.
var subjectThemes = map[string]SubjectTheme{
	"mathematik":  {Color: "#2563eb", AccentColor: "#93c5fd", Icon: "calculator"},
	"deutsch":     {Color: "#dc2626", AccentColor: "#fca5a5", Icon: "book-open"},
	"englisch":    {Color: "#7c3aed", AccentColor: "#c4b5fd", Icon: "globe"},
	"biologie":    {Color: "#16a34a", AccentColor: "#86efac", Icon: "leaf"},
	"chemie":      {Color: "#0891b2", AccentColor: "#67e8f9", Icon: "flask-conical"},
	"physik":      {Color: "#ea580c", AccentColor: "#fdba74", Icon: "atom"},
	"geschichte":  {Color: "#a16207", AccentColor: "#fde047", Icon: "landmark"},
	"geografie":   {Color: "#0d9488", AccentColor: "#5eead4", Icon: "map"},
	"musik":       {Color: "#db2777", AccentColor: "#f9a8d4", Icon: "music"},
	"kunst":       {Color: "#9333ea", AccentColor: "#d8b4fe", Icon: "palette"},
	"informatik":  {Color: "#475569", AccentColor: "#cbd5e1", Icon: "cpu"},
	"sachkunde":   {Color: "#65a30d", AccentColor: "#bef264", Icon: "search"},
}

// defaultTheme is used when the subject keyword is not recognized.
var defaultTheme = SubjectTheme{Color: "#4f46e5", AccentColor: "#a5b4fc", Icon: "sparkles"}

// moduleTypeIcons provides per-module-type iconography used when no
// design-level visual is available.
var moduleTypeIcons = map[domain.ModuleType]string{
	domain.ModuleTypeDiscovery:  "compass",
	domain.ModuleTypeKnowledge:  "book-open",
	domain.ModuleTypePractice:   "pencil",
	domain.ModuleTypeReflection: "lightbulb",
	domain.ModuleTypeChallenge:  "trophy",
}

// ForSubject returns the static theme for a subject, falling back to
// the default entry for unknown or empty subjects.
func ForSubject(subject string) SubjectTheme {
	if t, ok := subjectThemes[strings.ToLower(strings.TrimSpace(subject))]; ok {
		return t
	}
	return defaultTheme
}

// ResolvePrimaryColor returns the primary color for a world: the
// design's primary color when present, otherwise the subject default.
func ResolvePrimaryColor(design *domain.WorldDesign, subject string) string {
	if design != nil && design.PrimaryColor != "" {
		return design.PrimaryColor
	}
	return ForSubject(subject).Color
}

// ResolveAccentColor returns the accent color for a world: the design's
// accent color when present, otherwise the subject default.
func ResolveAccentColor(design *domain.WorldDesign, subject string) string {
	if design != nil && design.AccentColor != "" {
		return design.AccentColor
	}
	return ForSubject(subject).AccentColor
}

// ResolveModuleTitle returns the display title for the section at the
// given position. Module designs are index-aligned with sections; when
// the design sequence is shorter than the section sequence, or the
// design at that position has no title, the section's own title wins.
// The section title is mandatory at the domain level, so the result is
// never empty.
func ResolveModuleTitle(design *domain.WorldDesign, index int, section domain.Section) string {
	if design != nil && index >= 0 && index < len(design.ModuleDesigns) {
		if title := design.ModuleDesigns[index].Title; title != "" {
			return title
		}
	}
	return section.Title
}

// ResolveModuleVisual returns the visual focus hint for the section at
// the given position, or the empty string when none was generated.
// Unlike titles there is no section-level fallback; callers render
// module-type iconography instead.
func ResolveModuleVisual(design *domain.WorldDesign, index int) string {
	if design != nil && index >= 0 && index < len(design.ModuleDesigns) {
		return design.ModuleDesigns[index].VisualFocus
	}
	return ""
}

// ResolveIcon returns the icon name for a section: per-module-type
// iconography when the type is known, otherwise the subject icon.
func ResolveIcon(subject string, moduleType domain.ModuleType) string {
	if icon, ok := moduleTypeIcons[moduleType]; ok {
		return icon
	}
	return ForSubject(subject).Icon
}
