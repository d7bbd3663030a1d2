package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/ethpandaops/errscope/pkg/config"
	"github.com/ethpandaops/errscope/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Globals carries root-level flag values to subcommands. Fields are read at
// run time, after flag parsing.
type Globals struct {
	ConfigPath string
	Verbose    bool
}

// loadConfig loads and validates the layered configuration.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadLayered(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func validateOutputFormat(format string) error {
	if !slices.Contains(constants.OutputFormats, format) {
		return fmt.Errorf("unsupported output format %q (must be one of %v)", format, constants.OutputFormats)
	}

	return nil
}

// readInput returns the text to analyse: the named file, or stdin when no
// argument or "-" is given.
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == constants.StdinArg {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	return string(data), nil
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case constants.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
	case constants.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}

	return nil
}
