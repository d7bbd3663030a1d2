package analyzer

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ethpandaops/errscope/pkg/diagnostic"
)

// Fixed tag values.
const (
	TagNeedsAttention = "Needs Immediate Attention"
	TagStackTrace     = "Stack Trace"
	TagNoErrors       = "No Errors Detected"
	TagSingleError    = "Single Error"
	TagMultipleErrors = "Multiple Errors"
	TagCritical       = "Critical Issue"
	TagHighPriority   = "High Priority"
	TagMediumPriority = "Medium Priority"
)

// stackTraceMarkers are compared against the lower-cased text.
var stackTraceMarkers = []string{"traceback (most recent call last)", "stack trace:"}

// Tags derives the sorted classification tag set for an analysis.
func Tags(language, text string, matches []diagnostic.MatchRecord) []string {
	set := make(map[string]struct{}, len(matches)*2+4)
	add := func(tag string) {
		if tag != "" {
			set[tag] = struct{}{}
		}
	}

	add(capitalize(language))

	urgent := false

	for _, m := range matches {
		add(m.Name)
		add(m.Category.Display())

		if m.Severity == diagnostic.SeverityCritical || m.Severity == diagnostic.SeverityHigh {
			urgent = true
		}
	}

	if urgent {
		add(TagNeedsAttention)
	}

	if hasStackTrace(text) {
		add(TagStackTrace)
	}

	add(countTag(len(matches)))

	if worst, ok := diagnostic.WorstSeverity(matches); ok {
		add(priorityTag(worst))
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}

	sort.Strings(tags)

	return tags
}

func countTag(n int) string {
	switch {
	case n == 0:
		return TagNoErrors
	case n == 1:
		return TagSingleError
	default:
		return TagMultipleErrors
	}
}

func priorityTag(worst diagnostic.Severity) string {
	switch worst {
	case diagnostic.SeverityCritical:
		return TagCritical
	case diagnostic.SeverityHigh:
		return TagHighPriority
	default:
		// low and info share the lowest priority tag.
		return TagMediumPriority
	}
}

func hasStackTrace(text string) bool {
	lower := strings.ToLower(text)

	for _, marker := range stackTraceMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	return false
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	r, size := utf8.DecodeRuneInString(s)

	return string(unicode.ToUpper(r)) + s[size:]
}
