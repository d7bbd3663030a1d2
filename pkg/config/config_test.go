package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFileName))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	writeConfig(t, path, `analysis:
  maxMatches: 10
  stripAnsi: false
context:
  commandTimeout: 20s
  envAllowList:
    - PATH
    - CI
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Analysis.MaxMatches)
	assert.False(t, cfg.StripANSIEnabled())
	assert.Equal(t, 20*time.Second, cfg.Context.CommandTimeout)
	assert.Equal(t, []string{"PATH", "CI"}, cfg.Context.EnvAllowList)

	// Untouched keys keep their defaults.
	def := Default()
	assert.Equal(t, def.Analysis.MaxLines, cfg.Analysis.MaxLines)
	assert.Equal(t, def.Context.ProbeTimeout, cfg.Context.ProbeTimeout)
	assert.Equal(t, def.Context.MaxCommits, cfg.Context.MaxCommits)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	writeConfig(t, path, "analysis: [not a map")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadLayered(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	globalPath, err := GlobalPath()
	require.NoError(t, err)

	writeConfig(t, globalPath, "analysis:\n  maxMatches: 8\n  maxLines: 200\n")

	projectPath := filepath.Join(t.TempDir(), DefaultFileName)
	writeConfig(t, projectPath, "analysis:\n  maxLines: 50\n")

	cfg, err := LoadLayered(projectPath)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Analysis.MaxMatches)
	assert.Equal(t, 50, cfg.Analysis.MaxLines)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)

	cfg := Default()
	cfg.Context.SnippetRadius = 3

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:    "zero match cap",
			mutate:  func(c *Config) { c.Analysis.MaxMatches = 0 },
			wantErr: "analysis.maxMatches",
		},
		{
			name:    "negative line limit",
			mutate:  func(c *Config) { c.Analysis.MaxLines = -1 },
			wantErr: "analysis.maxLines",
		},
		{
			name:    "zero command timeout",
			mutate:  func(c *Config) { c.Context.CommandTimeout = 0 },
			wantErr: "context.commandTimeout",
		},
		{
			name:    "probe timeout above command timeout",
			mutate:  func(c *Config) { c.Context.ProbeTimeout = time.Minute },
			wantErr: "context.probeTimeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProcessorOptions(t *testing.T) {
	cfg := Default()
	cfg.Analysis.MaxLines = 42

	opts := cfg.ProcessorOptions()

	assert.Equal(t, 42, opts.MaxLines)
	assert.Equal(t, cfg.Analysis.MaxMatches, opts.MaxMatches)
	assert.True(t, opts.StripANSI)
	assert.Equal(t, cfg.Context.ProbeTimeout, opts.Context.ProbeTimeout)
	assert.Equal(t, cfg.Context.EnvAllowList, opts.Context.EnvAllowList)
}
