package analyzer

import (
	"fmt"
	"strings"

	"github.com/ethpandaops/errscope/pkg/diagnostic"
)

const (
	suggestionSources = 3
	stepsPerSource    = 2
)

var genericDebuggingTips = []string{
	"Read the stack trace from the innermost frame outwards to find the first line of your own code",
	"Reproduce the failure with the smallest input that still triggers it",
	"Log the values involved right before the failing line",
}

// Summary describes the primary match in one paragraph. It returns an empty
// string when there is no primary match.
func Summary(primary *diagnostic.MatchRecord) string {
	if primary == nil {
		return ""
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s (%s, %s severity)", primary.Name, primary.Category.Display(), primary.Severity)

	if primary.FilePath != "" {
		fmt.Fprintf(&sb, " at %s:%d", primary.FilePath, primary.FileLine)
	}

	if sig := primary.Signature; sig != nil {
		if sig.Explanation != "" {
			sb.WriteString(": ")
			sb.WriteString(sig.Explanation)
		}

		if sig.WhatHappened != "" {
			sb.WriteString(" ")
			sb.WriteString(sig.WhatHappened)
		}
	}

	return sb.String()
}

// Suggestions collects the first remediation steps of the top matches,
// followed by generic debugging tips when any match is a syntax or runtime
// error. Duplicates are dropped, first occurrence wins.
func Suggestions(matches []diagnostic.MatchRecord) []string {
	out := make([]string, 0, suggestionSources*stepsPerSource+len(genericDebuggingTips))
	seen := make(map[string]bool)

	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	for i, m := range matches {
		if i == suggestionSources {
			break
		}

		if m.Signature == nil {
			continue
		}

		steps := m.Signature.Remediation
		if len(steps) > stepsPerSource {
			steps = steps[:stepsPerSource]
		}

		for _, step := range steps {
			add(step)
		}
	}

	for _, m := range matches {
		if m.Category == diagnostic.CategorySyntax || m.Category == diagnostic.CategoryRuntime {
			for _, tip := range genericDebuggingTips {
				add(tip)
			}

			break
		}
	}

	return out
}
