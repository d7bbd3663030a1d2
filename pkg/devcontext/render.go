package devcontext

import (
	"fmt"
	"strings"
)

const notFound = "not available"

// Render formats dc as a plain-text narrative. Every sub-context may be nil;
// missing ones are named explicitly so a reader knows what was not checked.
func Render(dc *DevelopmentContext) string {
	if dc == nil {
		return "Development context: none collected."
	}

	var sb strings.Builder

	sources := "none"
	if len(dc.Metadata.Sources) > 0 {
		sources = strings.Join(dc.Metadata.Sources, ", ")
	}

	fmt.Fprintf(&sb, "Development context (found: %s)\n", sources)

	renderFile(&sb, dc.File)
	renderRevision(&sb, dc.Revision)
	renderProject(&sb, dc.Project)
	renderRuntime(&sb, dc.Runtime)

	if len(dc.Metadata.Failures) > 0 {
		sb.WriteString("\nExtraction problems:\n")

		for _, name := range sortedKeys(dc.Metadata.Failures) {
			fmt.Fprintf(&sb, "  - %s: %s\n", name, dc.Metadata.Failures[name])
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func renderFile(sb *strings.Builder, fc *FileLocationContext) {
	sb.WriteString("\nCode location:\n")

	if fc == nil {
		fmt.Fprintf(sb, "  %s\n", notFound)

		return
	}

	if fc.Line > 0 {
		fmt.Fprintf(sb, "  %s:%d\n", fc.Path, fc.Line)
	} else {
		fmt.Fprintf(sb, "  %s\n", fc.Path)
	}

	if fc.Function != "" && fc.Function != UnknownScope {
		fmt.Fprintf(sb, "  Function: %s\n", fc.Function)
	}

	if fc.Type != "" && fc.Type != UnknownScope {
		fmt.Fprintf(sb, "  Class: %s\n", fc.Type)
	}

	if fc.Snippet != "" {
		sb.WriteString("\n")

		for _, line := range strings.Split(fc.Snippet, "\n") {
			fmt.Fprintf(sb, "  %s\n", line)
		}
	}
}

func renderRevision(sb *strings.Builder, rc *RevisionContext) {
	sb.WriteString("\nVersion control:\n")

	switch {
	case rc == nil:
		fmt.Fprintf(sb, "  %s\n", notFound)

		return
	case !rc.IsRepo:
		sb.WriteString("  not a git repository\n")

		return
	}

	if rc.Branch != "" {
		fmt.Fprintf(sb, "  Branch: %s\n", rc.Branch)
	}

	if rc.LatestCommit != "" {
		fmt.Fprintf(sb, "  HEAD: %s\n", rc.LatestCommit)
	}

	if rc.LatestTag != "" {
		fmt.Fprintf(sb, "  Latest tag: %s (+%d commits)\n", rc.LatestTag, rc.CommitsSinceTag)
	}

	fmt.Fprintf(sb, "  Uncommitted files: %d\n", rc.UncommittedCount)

	if len(rc.ChangedFiles) > 0 {
		fmt.Fprintf(sb, "  Changed since HEAD: %s\n", strings.Join(rc.ChangedFiles, ", "))
	}

	if len(rc.Commits) > 0 {
		sb.WriteString("  Recent commits:\n")

		for _, c := range rc.Commits {
			fmt.Fprintf(sb, "    %s %s (%s, %s)\n", c.Hash, c.Subject, c.Author, c.When)
		}
	}
}

func renderProject(sb *strings.Builder, pc *ProjectContext) {
	sb.WriteString("\nProject:\n")

	if pc == nil {
		fmt.Fprintf(sb, "  %s\n", notFound)

		return
	}

	fmt.Fprintf(sb, "  Root: %s\n", pc.Root)

	if pc.Language != "" {
		fmt.Fprintf(sb, "  Language: %s\n", pc.Language)
	}

	if len(pc.Languages) > 1 {
		fmt.Fprintf(sb, "  Languages: %s\n", strings.Join(pc.Languages, ", "))
	}

	if pc.Framework != "" {
		fmt.Fprintf(sb, "  Framework: %s\n", pc.Framework)
	}

	if len(pc.Dependencies) > 0 {
		fmt.Fprintf(sb, "  Dependencies: %s\n", strings.Join(pc.Dependencies, ", "))
	}

	if len(pc.ConfigFiles) > 0 {
		fmt.Fprintf(sb, "  Config files: %s\n", strings.Join(pc.ConfigFiles, ", "))
	}

	if len(pc.EnvKeys) > 0 {
		fmt.Fprintf(sb, "  .env keys: %s\n", strings.Join(pc.EnvKeys, ", "))
	}

	fmt.Fprintf(sb, "  Tests: %s\n", yesNo(pc.HasTests))

	if pc.IsolatedEnv != "" {
		fmt.Fprintf(sb, "  Isolated environment: %s\n", pc.IsolatedEnv)
	}
}

func renderRuntime(sb *strings.Builder, rt *RuntimeContext) {
	sb.WriteString("\nRuntime:\n")

	if rt == nil {
		fmt.Fprintf(sb, "  %s\n", notFound)

		return
	}

	if rt.OS != "" {
		fmt.Fprintf(sb, "  Platform: %s/%s\n", rt.OS, rt.Arch)
	}

	if rt.WorkingDir != "" {
		fmt.Fprintf(sb, "  Working directory: %s\n", rt.WorkingDir)
	}

	if len(rt.Versions) == 0 {
		sb.WriteString("  No runtimes detected\n")
	} else {
		for _, name := range sortedKeys(rt.Versions) {
			fmt.Fprintf(sb, "  %s: %s\n", name, rt.Versions[name])
		}
	}

	if len(rt.Env) > 0 {
		sb.WriteString("  Environment:\n")

		for _, name := range sortedKeys(rt.Env) {
			fmt.Fprintf(sb, "    %s=%s\n", name, rt.Env[name])
		}
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
