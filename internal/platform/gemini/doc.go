// Package gemini implements the generation.DesignGenerator interface
// using Google's Gemini API. Given a world's title, subject and section
// list it asks the model for a JSON color palette and per-section
// module designs, with exponential backoff for transient API failures.
package gemini
