package analyzer

import (
	"testing"

	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(name string, cat diagnostic.Category, sev diagnostic.Severity) diagnostic.MatchRecord {
	return diagnostic.MatchRecord{Name: name, Category: cat, Severity: sev, Confidence: 1}
}

func TestCountTagIsExclusive(t *testing.T) {
	countTags := []string{TagNoErrors, TagSingleError, TagMultipleErrors}

	tests := []struct {
		name     string
		matches  []diagnostic.MatchRecord
		expected string
	}{
		{name: "none", matches: nil, expected: TagNoErrors},
		{
			name:     "one",
			matches:  []diagnostic.MatchRecord{record("KeyError", diagnostic.CategoryRuntime, diagnostic.SeverityMedium)},
			expected: TagSingleError,
		},
		{
			name: "several",
			matches: []diagnostic.MatchRecord{
				record("KeyError", diagnostic.CategoryRuntime, diagnostic.SeverityMedium),
				record("KeyError", diagnostic.CategoryRuntime, diagnostic.SeverityMedium),
			},
			expected: TagMultipleErrors,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := Tags("", "", tt.matches)

			found := make([]string, 0, 1)
			for _, tag := range tags {
				for _, ct := range countTags {
					if tag == ct {
						found = append(found, tag)
					}
				}
			}

			assert.Equal(t, []string{tt.expected}, found)
		})
	}
}

func TestPriorityTag(t *testing.T) {
	tests := []struct {
		name      string
		severity  diagnostic.Severity
		expected  string
		attention bool
	}{
		{name: "critical", severity: diagnostic.SeverityCritical, expected: TagCritical, attention: true},
		{name: "high", severity: diagnostic.SeverityHigh, expected: TagHighPriority, attention: true},
		{name: "medium", severity: diagnostic.SeverityMedium, expected: TagMediumPriority},
		{name: "low", severity: diagnostic.SeverityLow, expected: TagMediumPriority},
		{name: "info", severity: diagnostic.SeverityInfo, expected: TagMediumPriority},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := Tags("go", "", []diagnostic.MatchRecord{
				record("Example", diagnostic.CategoryLogic, tt.severity),
			})

			assert.Contains(t, tags, tt.expected)
			assert.Equal(t, tt.attention, contains(tags, TagNeedsAttention))
		})
	}
}

func TestNoPriorityTagWithoutMatches(t *testing.T) {
	tags := Tags("python", "Traceback (most recent call last):", nil)

	assert.Equal(t, []string{TagNoErrors, "Python", TagStackTrace}, tags)
}

func TestPriorityTagForInfoOnlyMatch(t *testing.T) {
	lib := diagnostic.NewLibrary()

	text := "DeprecationWarning: datetime.utcnow() is deprecated"
	matches := lib.Match(text, "python", diagnostic.MatchOptions{})
	require.NotEmpty(t, matches)

	worst, ok := diagnostic.WorstSeverity(matches)
	require.True(t, ok)
	require.Equal(t, diagnostic.SeverityInfo, worst)

	tags := Tags("python", text, matches)

	priority := make([]string, 0, 1)
	for _, tag := range tags {
		if tag == TagCritical || tag == TagHighPriority || tag == TagMediumPriority {
			priority = append(priority, tag)
		}
	}

	assert.Equal(t, []string{TagMediumPriority}, priority)
	assert.NotContains(t, tags, TagNeedsAttention)
	assert.Contains(t, tags, "DeprecationWarning")
}

func TestStackTraceTag(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{name: "python traceback header", text: "Traceback (most recent call last):\n  File \"a.py\", line 1", expected: true},
		{name: "lower-case header", text: "traceback (most recent call last):", expected: true},
		{name: "stack trace label", text: "Stack trace:\n  at main()", expected: true},
		{name: "prose mentioning traceback", text: "No traceback here, build passed", expected: false},
		{name: "prose mentioning stack trace", text: "see the stack trace in the CI logs", expected: false},
		{name: "empty", text: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, contains(Tags("", tt.text, nil), TagStackTrace))
		})
	}
}

func TestTagsAreSortedAndUnique(t *testing.T) {
	tags := Tags("javascript", "Stack trace:\nError: boom\n    at main (app.js:1:1)", []diagnostic.MatchRecord{
		record("ReferenceError", diagnostic.CategoryRuntime, diagnostic.SeverityHigh),
		record("ReferenceError", diagnostic.CategoryRuntime, diagnostic.SeverityHigh),
		record("ModuleNotFound", diagnostic.CategoryDependency, diagnostic.SeverityHigh),
	})

	assert.Equal(t, []string{
		"Dependency Error",
		TagHighPriority,
		"Javascript",
		"ModuleNotFound",
		TagMultipleErrors,
		TagNeedsAttention,
		"ReferenceError",
		"Runtime Error",
		TagStackTrace,
	}, tags)
}

func TestSuggestions(t *testing.T) {
	lib := diagnostic.NewLibrary()

	matches := lib.Match("IndexError: list index out of range\nDeprecationWarning: old api", "python", diagnostic.MatchOptions{})
	require.Len(t, matches, 2)

	suggestions := Suggestions(matches)

	expected := make([]string, 0, 8)
	expected = append(expected, matches[0].Signature.Remediation[:2]...)
	expected = append(expected, matches[1].Signature.Remediation[:2]...)
	expected = append(expected, genericDebuggingTips...)

	assert.Equal(t, expected, suggestions)
}

func TestSuggestionsWithoutSyntaxOrRuntime(t *testing.T) {
	lib := diagnostic.NewLibrary()

	matches := lib.Match("DeprecationWarning: old api", "python", diagnostic.MatchOptions{})
	require.Len(t, matches, 1)

	suggestions := Suggestions(matches)
	assert.Len(t, suggestions, 2)

	for _, tip := range genericDebuggingTips {
		assert.NotContains(t, suggestions, tip)
	}
}

func TestSuggestionsUseTopThreeMatches(t *testing.T) {
	lib := diagnostic.NewLibrary()

	text := "RecursionError: maximum recursion depth exceeded\n" +
		"IndexError: list index out of range\n" +
		"KeyError: 'a'\n" +
		"ZeroDivisionError: division by zero"

	matches := lib.Match(text, "python", diagnostic.MatchOptions{})
	require.Len(t, matches, 4)

	suggestions := Suggestions(matches)

	for _, step := range matches[3].Signature.Remediation {
		assert.NotContains(t, suggestions, step)
	}

	assert.Len(t, suggestions, 3*stepsPerSource+len(genericDebuggingTips))
}

func TestSummary(t *testing.T) {
	assert.Empty(t, Summary(nil))

	sig := &diagnostic.Signature{
		Name:         "KeyError",
		Category:     diagnostic.CategoryRuntime,
		Severity:     diagnostic.SeverityMedium,
		Explanation:  "A dictionary key was missing.",
		WhatHappened: "The key was never set.",
	}

	m := diagnostic.MatchRecord{
		Signature: sig,
		Name:      sig.Name,
		Category:  sig.Category,
		Severity:  sig.Severity,
		FilePath:  "app.py",
		FileLine:  3,
	}

	assert.Equal(t,
		"KeyError (Runtime Error, medium severity) at app.py:3: A dictionary key was missing. The key was never set.",
		Summary(&m))
}

func contains(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}

	return false
}
