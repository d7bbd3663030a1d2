package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// GlobalPath returns the user-level configuration file, ~/.errscope/config.yaml.
func GlobalPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".errscope", "config.yaml"), nil
}

// SaveGlobal writes cfg as the user-level configuration.
func SaveGlobal(cfg *Config) error {
	path, err := GlobalPath()
	if err != nil {
		return err
	}

	return cfg.Save(path)
}
