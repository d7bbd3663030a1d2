package devcontext

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/modfile"
)

// manifest is a characteristic project file. parse is nil for marker-only
// files that carry no dependency list.
type manifest struct {
	file     string
	language string
	parse    func(data []byte) ([]string, error)
}

// manifests is ordered by priority: the first present file decides the
// primary project language.
var manifests = []manifest{
	{file: "go.mod", language: "go", parse: parseGoMod},
	{file: "Cargo.toml", language: "rust", parse: parseCargoToml},
	{file: "pyproject.toml", language: "python", parse: parsePyproject},
	{file: "requirements.txt", language: "python", parse: parseRequirements},
	{file: "Pipfile", language: "python", parse: parsePipfile},
	{file: "setup.py", language: "python"},
	{file: "package.json", language: "javascript", parse: parsePackageJSON},
	{file: "pom.xml", language: "java", parse: parsePomXML},
	{file: "build.gradle", language: "java", parse: parseGradle},
	{file: "build.gradle.kts", language: "java", parse: parseGradle},
}

var (
	requirementName = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)`)
	gradleDep       = regexp.MustCompile(`(?m)^\s*(?:implementation|api|compileOnly|runtimeOnly|testImplementation)\s*\(?\s*['"]([^'":]+):([^'":]+)`)
)

// parseRequirement returns the distribution name of a PEP 508 requirement,
// dropping extras, version constraints and environment markers.
func parseRequirement(req string) string {
	req = strings.TrimSpace(req)
	if i := strings.IndexAny(req, "#;"); i >= 0 {
		req = req[:i]
	}

	m := requirementName.FindStringSubmatch(strings.TrimSpace(req))
	if m == nil {
		return ""
	}

	return m[1]
}

func parseRequirements(data []byte) ([]string, error) {
	deps := make([]string, 0, 16)

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}

		if name := parseRequirement(line); name != "" {
			deps = append(deps, name)
		}
	}

	return deps, nil
}

type pyproject struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func parsePyproject(data []byte) ([]string, error) {
	var p pyproject
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse pyproject.toml: %w", err)
	}

	deps := make([]string, 0, len(p.Project.Dependencies))

	for _, req := range p.Project.Dependencies {
		if name := parseRequirement(req); name != "" {
			deps = append(deps, name)
		}
	}

	for _, group := range sortedKeys(p.Project.OptionalDependencies) {
		for _, req := range p.Project.OptionalDependencies[group] {
			if name := parseRequirement(req); name != "" {
				deps = append(deps, name)
			}
		}
	}

	for _, name := range sortedKeys(p.Tool.Poetry.Dependencies) {
		if !strings.EqualFold(name, "python") {
			deps = append(deps, name)
		}
	}

	deps = append(deps, sortedKeys(p.Tool.Poetry.DevDependencies)...)

	return deps, nil
}

type pipfile struct {
	Packages    map[string]any `toml:"packages"`
	DevPackages map[string]any `toml:"dev-packages"`
}

func parsePipfile(data []byte) ([]string, error) {
	var p pipfile
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse Pipfile: %w", err)
	}

	return append(sortedKeys(p.Packages), sortedKeys(p.DevPackages)...), nil
}

type cargoManifest struct {
	Dependencies    map[string]any `toml:"dependencies"`
	DevDependencies map[string]any `toml:"dev-dependencies"`
}

func parseCargoToml(data []byte) ([]string, error) {
	var c cargoManifest
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse Cargo.toml: %w", err)
	}

	return append(sortedKeys(c.Dependencies), sortedKeys(c.DevDependencies)...), nil
}

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func parsePackageJSON(data []byte) ([]string, error) {
	var p packageJSON
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}

	return append(sortedKeys(p.Dependencies), sortedKeys(p.DevDependencies)...), nil
}

// parseGoMod lists direct requirements; indirect ones are noise for diagnosis.
func parseGoMod(data []byte) ([]string, error) {
	f, err := modfile.ParseLax("go.mod", data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod: %w", err)
	}

	deps := make([]string, 0, len(f.Require))

	for _, r := range f.Require {
		if !r.Indirect {
			deps = append(deps, r.Mod.Path)
		}
	}

	return deps, nil
}

type pomProject struct {
	Dependencies struct {
		Dependency []struct {
			GroupID    string `xml:"groupId"`
			ArtifactID string `xml:"artifactId"`
		} `xml:"dependency"`
	} `xml:"dependencies"`
}

func parsePomXML(data []byte) ([]string, error) {
	var p pomProject
	if err := xml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse pom.xml: %w", err)
	}

	deps := make([]string, 0, len(p.Dependencies.Dependency))

	for _, d := range p.Dependencies.Dependency {
		if d.ArtifactID != "" {
			deps = append(deps, d.GroupID+":"+d.ArtifactID)
		}
	}

	return deps, nil
}

func parseGradle(data []byte) ([]string, error) {
	matches := gradleDep.FindAllStringSubmatch(string(data), -1)
	deps := make([]string, 0, len(matches))

	for _, m := range matches {
		deps = append(deps, m[1]+":"+m[2])
	}

	return deps, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
