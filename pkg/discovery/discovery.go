// Package discovery locates and validates project roots on disk.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrProjectRootNotFound is returned when a project root does not exist or
// is not a directory.
var ErrProjectRootNotFound = errors.New("project root not found")

// rootMarkers identify the top of a project when walking upwards.
var rootMarkers = []string{
	".git",
	"go.mod",
	"package.json",
	"pyproject.toml",
	"setup.py",
	"requirements.txt",
	"Pipfile",
	"Cargo.toml",
	"pom.xml",
	"build.gradle",
	"build.gradle.kts",
}

// ResolveRoot returns the absolute, validated form of path.
func ResolveRoot(path string) (string, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}

		path = wd
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrProjectRootNotFound, absPath)
		}

		return "", fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%w: path is not a directory: %s", ErrProjectRootNotFound, absPath)
	}

	return absPath, nil
}

// FindRoot walks upwards from start and returns the first directory holding a
// project marker. When no marker is found the validated start is returned.
func FindRoot(start string) (string, error) {
	absStart, err := ResolveRoot(start)
	if err != nil {
		return "", err
	}

	for dir := absStart; ; {
		if HasMarker(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return absStart, nil
		}

		dir = parent
	}
}

// HasMarker reports whether dir directly contains a project marker.
func HasMarker(dir string) bool {
	for _, marker := range rootMarkers {
		if Exists(filepath.Join(dir, marker)) {
			return true
		}
	}

	return false
}

// Exists reports whether a file or directory exists.
func Exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

// FileExists checks if a regular file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return !info.IsDir()
}

// DirExists checks if a directory exists.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}
