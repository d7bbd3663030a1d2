// Package devcontext gathers development context that error text does not
// carry: the offending source location, repository history, project
// composition and the runtime environment.
package devcontext

import (
	"time"

	"github.com/ethpandaops/errscope/pkg/git"
)

// Source names reported in Metadata.Sources.
const (
	SourceFile     = "file"
	SourceRevision = "revision"
	SourceProject  = "project"
	SourceRuntime  = "runtime"
)

// UnknownScope is reported when the enclosing function or type cannot be
// resolved.
const UnknownScope = "unknown"

// FileLocationContext points at the source line an error refers to.
type FileLocationContext struct {
	Path     string `json:"path" yaml:"path"`
	Line     int    `json:"line" yaml:"line"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Function string `json:"function" yaml:"function"`
	Type     string `json:"type" yaml:"type"`
	// Snippet is the rendered code window with the target line marked.
	Snippet   string `json:"snippet" yaml:"snippet"`
	StartLine int    `json:"startLine" yaml:"startLine"`
	EndLine   int    `json:"endLine" yaml:"endLine"`
}

// RevisionContext is the version-control state of the project.
type RevisionContext = git.RepoStatus

// ProjectContext describes the composition of the project.
type ProjectContext struct {
	Root         string   `json:"root" yaml:"root"`
	Language     string   `json:"language,omitempty" yaml:"language,omitempty"`
	Languages    []string `json:"languages,omitempty" yaml:"languages,omitempty"`
	Framework    string   `json:"framework,omitempty" yaml:"framework,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	ConfigFiles  []string `json:"configFiles,omitempty" yaml:"configFiles,omitempty"`
	// EnvKeys lists variable names from .env files, never their values.
	EnvKeys     []string `json:"envKeys,omitempty" yaml:"envKeys,omitempty"`
	HasTests    bool     `json:"hasTests" yaml:"hasTests"`
	IsolatedEnv string   `json:"isolatedEnv,omitempty" yaml:"isolatedEnv,omitempty"`
}

// RuntimeContext describes the machine the project runs on.
type RuntimeContext struct {
	// Versions maps runtime name to its reported version line.
	Versions   map[string]string `json:"versions" yaml:"versions"`
	WorkingDir string            `json:"workingDir" yaml:"workingDir"`
	// Env holds only allow-listed variables, with values sanitised.
	Env  map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	OS   string            `json:"os" yaml:"os"`
	Arch string            `json:"arch" yaml:"arch"`
}

// Metadata records how extraction went.
type Metadata struct {
	// Successful is false once any sub-extractor records a failure.
	Successful bool `json:"extractionSuccessful" yaml:"extractionSuccessful"`
	// Sources lists the sub-contexts that produced data.
	Sources []string `json:"sources" yaml:"sources"`
	// Failures maps a sub-extractor to the reason it produced nothing.
	Failures map[string]string `json:"failures,omitempty" yaml:"failures,omitempty"`
	Duration time.Duration     `json:"-" yaml:"-"`
}

// DevelopmentContext aggregates the four sub-contexts. A nil sub-context
// means the probe found nothing or failed without affecting the others.
type DevelopmentContext struct {
	File     *FileLocationContext `json:"file,omitempty" yaml:"file,omitempty"`
	Revision *RevisionContext     `json:"revision,omitempty" yaml:"revision,omitempty"`
	Project  *ProjectContext      `json:"project,omitempty" yaml:"project,omitempty"`
	Runtime  *RuntimeContext      `json:"runtime,omitempty" yaml:"runtime,omitempty"`
	Metadata Metadata             `json:"metadata" yaml:"metadata"`
}

// HasSource reports whether the named sub-context produced data.
func (c *DevelopmentContext) HasSource(name string) bool {
	for _, s := range c.Metadata.Sources {
		if s == name {
			return true
		}
	}

	return false
}
