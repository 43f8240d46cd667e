package gemini

// promptData represents the data passed to the prompt template
type promptData struct {
	Title       string
	Subject     string
	Description string
	Sections    []promptSection
}

// promptSection is one section of the world as presented to the model
type promptSection struct {
	Title      string
	ModuleType string
}

// ResponseSchema represents the expected structure of a design from the Gemini API
type ResponseSchema struct {
	// PrimaryColor is the main theme color as a hex string
	PrimaryColor string `json:"primary_color"`

	// AccentColor is the secondary theme color as a hex string
	AccentColor string `json:"accent_color"`

	// Modules are the per-section designs, in world section order
	Modules []ModuleSchema `json:"modules"`
}

// ModuleSchema represents a single section design in the API response
type ModuleSchema struct {
	// Title is an evocative display title for the section
	Title string `json:"title"`

	// VisualFocus is a short visual motif hint for rendering the section
	VisualFocus string `json:"visual_focus,omitempty"`
}
