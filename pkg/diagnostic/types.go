// Package diagnostic provides the error signature library, language detection
// and the pattern matching engine used to classify error output.
package diagnostic

import (
	"regexp"
	"strings"
)

// Severity ranks how urgently a matched error needs attention.
type Severity string

const (
	// SeverityCritical is reserved for crashes and resource exhaustion.
	SeverityCritical Severity = "critical"
	// SeverityHigh marks errors that stop the program or build.
	SeverityHigh Severity = "high"
	// SeverityMedium marks errors that usually have a local, obvious fix.
	SeverityMedium Severity = "medium"
	// SeverityLow marks diagnostics that do not stop execution.
	SeverityLow Severity = "low"
	// SeverityInfo marks warnings and notices.
	SeverityInfo Severity = "info"
)

// severityOrder is the total order used for ranking, most severe first.
var severityOrder = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

// Severities returns all severities, most severe first.
func Severities() []Severity {
	out := make([]Severity, len(severityOrder))
	copy(out, severityOrder)

	return out
}

// Rank returns the position of the severity in the total order (0 is most severe).
// Unknown severities rank after SeverityInfo.
func (s Severity) Rank() int {
	for i, sev := range severityOrder {
		if sev == s {
			return i
		}
	}

	return len(severityOrder)
}

// Category groups signatures by the kind of failure they describe.
type Category string

const (
	CategorySyntax        Category = "syntax"
	CategoryRuntime       Category = "runtime"
	CategoryLogic         Category = "logic"
	CategoryNetwork       Category = "network"
	CategoryStorage       Category = "storage-access"
	CategoryPermission    Category = "permission"
	CategoryConfiguration Category = "configuration"
	CategoryDependency    Category = "dependency"
)

// Display returns the human readable form used in tags and reports.
func (c Category) Display() string {
	switch c {
	case CategorySyntax:
		return "Syntax Error"
	case CategoryRuntime:
		return "Runtime Error"
	case CategoryLogic:
		return "Logic Error"
	case CategoryNetwork:
		return "Network Error"
	case CategoryStorage:
		return "Storage Access Error"
	case CategoryPermission:
		return "Permission Error"
	case CategoryConfiguration:
		return "Configuration Error"
	case CategoryDependency:
		return "Dependency Error"
	default:
		return string(c)
	}
}

// Signature is a named, pattern-backed description of one known error
// condition together with the knowledge needed to fix it.
// Signatures are built once at library construction and never mutated.
type Signature struct {
	// Name is the identifier shown in tags, e.g. "IndexError".
	Name string
	// Pattern is matched case-insensitively in multi-line mode.
	Pattern *regexp.Regexp
	// Category classifies the failure.
	Category Category
	// Severity ranks the failure.
	Severity Severity
	// Languages lists the language names (lower-case) this signature applies to.
	Languages []string
	// Explanation is a one or two sentence description of the error.
	Explanation string
	// WhatHappened describes the runtime situation that produced the error.
	WhatHappened string
	// Remediation lists fix steps, most useful first.
	Remediation []string
	// Prevention is a tip for avoiding the error in future.
	Prevention string
	// Reference links to upstream documentation.
	Reference string
}

// AppliesTo reports whether the signature is registered for the language.
// The comparison is case-insensitive.
func (s *Signature) AppliesTo(language string) bool {
	for _, lang := range s.Languages {
		if strings.EqualFold(lang, language) {
			return true
		}
	}

	return false
}

// MatchRecord is one occurrence of a signature in analysed text.
type MatchRecord struct {
	Signature *Signature `json:"-" yaml:"-"`
	// Name and the classification fields are copied for serialisation.
	Name     string   `json:"name" yaml:"name"`
	Category Category `json:"category" yaml:"category"`
	Severity Severity `json:"severity" yaml:"severity"`
	// Matched is the exact substring that matched.
	Matched string `json:"matched" yaml:"matched"`
	// Groups holds the pattern's capture groups, if any.
	Groups []string `json:"groups,omitempty" yaml:"groups,omitempty"`
	// Confidence is always 1.0; graded confidence is not implemented.
	Confidence float64 `json:"confidence" yaml:"confidence"`
	// Line is the 1-based line of the match within the analysed text.
	Line int `json:"line" yaml:"line"`
	// Window is the surrounding text, empty when windows were not requested.
	Window string `json:"window,omitempty" yaml:"window,omitempty"`
	// FilePath and FileLine point at the source location nearest to the match.
	FilePath string `json:"filePath,omitempty" yaml:"filePath,omitempty"`
	FileLine int    `json:"fileLine,omitempty" yaml:"fileLine,omitempty"`
}

// WorstSeverity returns the most severe severity among the matches.
// The boolean is false when there are no matches.
func WorstSeverity(matches []MatchRecord) (Severity, bool) {
	if len(matches) == 0 {
		return "", false
	}

	present := make(map[Severity]bool, len(matches))
	for _, m := range matches {
		present[m.Severity] = true
	}

	for _, sev := range severityOrder {
		if present[sev] {
			return sev, true
		}
	}

	return "", false
}
