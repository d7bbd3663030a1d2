// Package version holds build information for errscope. The variables are
// set at build time via ldflags.
package version

import "runtime"

var (
	// Version is the semantic version of the application.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "none"

	// Date is the build date.
	Date = "unknown"
)

// Info is the build information reported by the version command.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the build information of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetFullVersion returns a formatted version string with all build info.
func GetFullVersion() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
