package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrNilWorld is returned when design generation is requested without a world.
	ErrNilWorld = errors.New("world cannot be nil")
)
