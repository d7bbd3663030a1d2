// Package constants defines shared constants for output formats, file names
// and environment variables across the errscope application.
package constants

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// OutputFormats lists every supported output format.
var OutputFormats = []string{OutputText, OutputJSON, OutputYAML}

// Input sources.
const (
	// StdinArg reads input from standard input.
	StdinArg = "-"
)

// Environment variables.
const (
	// EnvTestMode disables spinners in integration tests.
	EnvTestMode = "ERRSCOPE_TEST_MODE"
)
