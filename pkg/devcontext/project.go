package devcontext

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/ethpandaops/errscope/pkg/discovery"
	"github.com/joho/godotenv"
)

// configCandidates are checked, in order, directly under the project root.
var configCandidates = []string{
	".env",
	".env.local",
	".errscope.yaml",
	"config.yaml",
	"config.yml",
	"config.json",
	"config.toml",
	"settings.py",
	"setup.cfg",
	"tox.ini",
	"pytest.ini",
	"tsconfig.json",
	".eslintrc.json",
	".eslintrc.js",
	"webpack.config.js",
	"vite.config.ts",
	"vite.config.js",
	"next.config.js",
	"babel.config.js",
	".golangci.yml",
	"rust-toolchain.toml",
	"src/main/resources/application.properties",
	"src/main/resources/application.yml",
	"Dockerfile",
	"docker-compose.yml",
	"docker-compose.yaml",
	"Makefile",
}

// framework maps a dependency name to a display name. Entries are ordered
// by priority: full-stack frameworks before the libraries they embed.
type framework struct {
	dependency string
	name       string
	// prefix matches module paths with a version suffix, e.g. /v5.
	prefix bool
}

var frameworks = []framework{
	{dependency: "django", name: "Django"},
	{dependency: "fastapi", name: "FastAPI"},
	{dependency: "flask", name: "Flask"},
	{dependency: "tornado", name: "Tornado"},
	{dependency: "streamlit", name: "Streamlit"},
	{dependency: "next", name: "Next.js"},
	{dependency: "nuxt", name: "Nuxt"},
	{dependency: "@angular/core", name: "Angular"},
	{dependency: "@nestjs/core", name: "NestJS"},
	{dependency: "svelte", name: "Svelte"},
	{dependency: "vue", name: "Vue"},
	{dependency: "react", name: "React"},
	{dependency: "express", name: "Express"},
	{dependency: "github.com/gin-gonic/gin", name: "Gin"},
	{dependency: "github.com/labstack/echo", name: "Echo", prefix: true},
	{dependency: "github.com/gofiber/fiber", name: "Fiber", prefix: true},
	{dependency: "github.com/go-chi/chi", name: "Chi", prefix: true},
	{dependency: "github.com/spf13/cobra", name: "Cobra"},
	{dependency: "org.springframework.boot:", name: "Spring Boot", prefix: true},
	{dependency: "io.quarkus:", name: "Quarkus", prefix: true},
	{dependency: "actix-web", name: "Actix Web"},
	{dependency: "axum", name: "Axum"},
	{dependency: "rocket", name: "Rocket"},
}

// skipDirs are never descended into while looking for tests.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"dist":         true,
	"build":        true,
	"venv":         true,
	".venv":        true,
	"__pycache__":  true,
}

var (
	testDirNames = map[string]bool{"test": true, "tests": true, "__tests__": true, "spec": true}
	testFileName = regexp.MustCompile(`^test_.+\.py$|_test\.(?:py|go)$|\.(?:test|spec)\.(?:js|jsx|ts|tsx|mjs)$|Tests?\.(?:java|kt)$`)
)

const (
	maxTestScanDepth   = 4
	maxTestScanEntries = 5000
)

// isolatedEnvVars point at an active virtual environment.
var isolatedEnvVars = []string{"VIRTUAL_ENV", "CONDA_PREFIX"}

// isolatedEnvDirs are conventional in-project virtual environment names.
var isolatedEnvDirs = []string{".venv", "venv", "env", "virtualenv"}

// ExtractProject describes the project at root. It returns nil without error
// when root holds nothing recognisable.
func (e *Extractor) ExtractProject(root string) (*ProjectContext, error) {
	absRoot, err := discovery.ResolveRoot(root)
	if err != nil {
		return nil, err
	}

	pc := &ProjectContext{Root: absRoot}

	e.readManifests(pc)
	pc.Framework = detectFramework(pc.Dependencies)

	if len(pc.Dependencies) > e.opts.MaxDependencies {
		pc.Dependencies = pc.Dependencies[:e.opts.MaxDependencies]
	}

	for _, name := range configCandidates {
		if discovery.FileExists(filepath.Join(absRoot, filepath.FromSlash(name))) {
			pc.ConfigFiles = append(pc.ConfigFiles, name)
		}
	}

	pc.EnvKeys = e.envKeys(absRoot)
	pc.HasTests = hasTests(absRoot)
	pc.IsolatedEnv = e.isolatedEnv(absRoot)

	if len(pc.Languages) == 0 && len(pc.ConfigFiles) == 0 && !pc.HasTests && pc.IsolatedEnv == "" {
		return nil, nil
	}

	return pc, nil
}

func (e *Extractor) readManifests(pc *ProjectContext) {
	seenLang := make(map[string]bool)
	seenDep := make(map[string]bool)

	for _, m := range manifests {
		path := filepath.Join(pc.Root, m.file)
		if !discovery.FileExists(path) {
			continue
		}

		if !seenLang[m.language] {
			seenLang[m.language] = true
			pc.Languages = append(pc.Languages, m.language)
		}

		if m.parse == nil {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			e.log.WithError(err).WithField("file", m.file).Debug("Failed to read manifest")

			continue
		}

		deps, err := m.parse(data)
		if err != nil {
			e.log.WithError(err).WithField("file", m.file).Debug("Failed to parse manifest")

			continue
		}

		for _, d := range deps {
			key := strings.ToLower(d)
			if !seenDep[key] {
				seenDep[key] = true
				pc.Dependencies = append(pc.Dependencies, d)
			}
		}
	}

	if len(pc.Languages) > 0 {
		pc.Language = pc.Languages[0]
	}
}

func detectFramework(deps []string) string {
	for _, fw := range frameworks {
		for _, d := range deps {
			if strings.EqualFold(d, fw.dependency) || (fw.prefix && strings.HasPrefix(d, fw.dependency)) {
				return fw.name
			}
		}
	}

	return ""
}

// envKeys lists variable names defined in the project's .env file.
func (e *Extractor) envKeys(root string) []string {
	path := filepath.Join(root, ".env")
	if !discovery.FileExists(path) {
		return nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		e.log.WithError(err).Debug("Failed to parse .env")

		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	if len(keys) > e.opts.MaxEnvVars {
		keys = keys[:e.opts.MaxEnvVars]
	}

	return keys
}

func (e *Extractor) isolatedEnv(root string) string {
	for _, name := range isolatedEnvVars {
		if v := strings.TrimSpace(e.getenv(name)); v != "" {
			return diagnostic.SanitizePath(v)
		}
	}

	for _, name := range isolatedEnvDirs {
		dir := filepath.Join(root, name)
		if discovery.FileExists(filepath.Join(dir, "pyvenv.cfg")) ||
			discovery.FileExists(filepath.Join(dir, "bin", "activate")) ||
			discovery.DirExists(filepath.Join(dir, "Scripts")) {
			return diagnostic.SanitizePath(dir)
		}
	}

	return ""
}

// hasTests looks for conventional test directories and file names within a
// bounded walk of the tree.
func hasTests(root string) bool {
	found := false
	visited := 0

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}

			return nil
		}

		visited++
		if visited > maxTestScanEntries {
			return fs.SkipAll
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		depth := len(strings.Split(rel, string(filepath.Separator)))

		if d.IsDir() {
			if path == root {
				return nil
			}

			if skipDirs[d.Name()] || depth > maxTestScanDepth {
				return fs.SkipDir
			}

			if testDirNames[d.Name()] {
				found = true

				return fs.SkipAll
			}

			return nil
		}

		if testFileName.MatchString(d.Name()) {
			found = true

			return fs.SkipAll
		}

		return nil
	})

	return found
}
