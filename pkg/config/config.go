package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"github.com/ethpandaops/errscope/pkg/devcontext"
	"github.com/ethpandaops/errscope/pkg/processor"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the project-level configuration file.
const DefaultFileName = ".errscope.yaml"

// Config represents the errscope configuration.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Context  ContextConfig  `yaml:"context"`
}

// AnalysisConfig controls the analysis pipeline.
type AnalysisConfig struct {
	MaxMatches int `yaml:"maxMatches"`
	MaxLines   int `yaml:"maxLines"`
	// StripANSI is nil when unset so an explicit false can be told apart.
	StripANSI *bool `yaml:"stripAnsi,omitempty"`
}

// ContextConfig bounds development context extraction.
type ContextConfig struct {
	CommandTimeout  time.Duration `yaml:"commandTimeout"`
	ProbeTimeout    time.Duration `yaml:"probeTimeout"`
	MaxCommits      int           `yaml:"maxCommits"`
	SnippetRadius   int           `yaml:"snippetRadius"`
	MaxDependencies int           `yaml:"maxDependencies"`
	MaxEnvVars      int           `yaml:"maxEnvVars"`
	EnvAllowList    []string      `yaml:"envAllowList"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	ctx := devcontext.DefaultOptions()
	stripANSI := true

	return &Config{
		Analysis: AnalysisConfig{
			MaxMatches: 5,
			MaxLines:   processor.DefaultMaxLines,
			StripANSI:  &stripANSI,
		},
		Context: ContextConfig{
			CommandTimeout:  ctx.CommandTimeout,
			ProbeTimeout:    ctx.ProbeTimeout,
			MaxCommits:      ctx.MaxCommits,
			SnippetRadius:   ctx.SnippetRadius,
			MaxDependencies: ctx.MaxDependencies,
			MaxEnvVars:      ctx.MaxEnvVars,
			EnvAllowList:    append([]string(nil), ctx.EnvAllowList...),
		},
	}
}

// Load reads path and merges it over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadLayered merges the user-level file and then path over the defaults,
// so project settings win over user settings.
func LoadLayered(path string) (*Config, error) {
	cfg := Default()

	if globalPath, err := GlobalPath(); err == nil {
		if err := cfg.mergeFile(globalPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("failed to read config file: %w", err)
	}

	var user Config
	if err := yaml.Unmarshal(data, &user); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// mergo treats false as empty and never lets it override.
	stripANSI := user.Analysis.StripANSI
	user.Analysis.StripANSI = nil

	if err := mergo.Merge(c, user, mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to merge config file %s: %w", path, err)
	}

	if stripANSI != nil {
		c.Analysis.StripANSI = stripANSI
	}

	return nil
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	//nolint:gosec // Config file permissions are intentionally 0644 for readability
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"analysis.maxMatches", c.Analysis.MaxMatches},
		{"analysis.maxLines", c.Analysis.MaxLines},
		{"context.maxCommits", c.Context.MaxCommits},
		{"context.snippetRadius", c.Context.SnippetRadius},
		{"context.maxDependencies", c.Context.MaxDependencies},
		{"context.maxEnvVars", c.Context.MaxEnvVars},
	}

	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.value)
		}
	}

	if c.Context.CommandTimeout <= 0 {
		return fmt.Errorf("context.commandTimeout must be positive, got %s", c.Context.CommandTimeout)
	}

	if c.Context.ProbeTimeout <= 0 {
		return fmt.Errorf("context.probeTimeout must be positive, got %s", c.Context.ProbeTimeout)
	}

	if c.Context.ProbeTimeout > c.Context.CommandTimeout {
		return fmt.Errorf("context.probeTimeout (%s) must not exceed context.commandTimeout (%s)",
			c.Context.ProbeTimeout, c.Context.CommandTimeout)
	}

	return nil
}

// StripANSIEnabled reports whether escape sequences are removed before analysis.
func (c *Config) StripANSIEnabled() bool {
	return c.Analysis.StripANSI == nil || *c.Analysis.StripANSI
}

// ProcessorOptions converts the configuration for processor.New.
func (c *Config) ProcessorOptions() processor.Options {
	return processor.Options{
		MaxLines:   c.Analysis.MaxLines,
		MaxMatches: c.Analysis.MaxMatches,
		StripANSI:  c.StripANSIEnabled(),
		Context: devcontext.Options{
			SnippetRadius:   c.Context.SnippetRadius,
			MaxCommits:      c.Context.MaxCommits,
			MaxDependencies: c.Context.MaxDependencies,
			MaxEnvVars:      c.Context.MaxEnvVars,
			EnvAllowList:    c.Context.EnvAllowList,
			CommandTimeout:  c.Context.CommandTimeout,
			ProbeTimeout:    c.Context.ProbeTimeout,
		},
	}
}
