package analyzer

import (
	"strings"
	"testing"

	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tracebackInProse = `Nightly import started at 02:00.
Traceback (most recent call last):
  File "jobs/importer.py", line 41, in run
    rows[idx]
IndexError: list index out of range
Import aborted, see above.`

func newTestAnalyzer() *Analyzer {
	log := logrus.New()
	log.SetLevel(logrus.FatalLevel)

	return New(log, diagnostic.NewLibrary())
}

type panickingMatcher struct{}

func (panickingMatcher) Detect(string) diagnostic.Detection {
	return diagnostic.Detection{Language: diagnostic.Python{}, Score: 1}
}

func (panickingMatcher) Match(string, string, diagnostic.MatchOptions) []diagnostic.MatchRecord {
	panic("pattern table corrupted")
}

func TestAnalyzeIndexErrorWithHint(t *testing.T) {
	a := newTestAnalyzer()

	req := NewRequest("IndexError: list index out of range")
	req.Language = "python"

	result := a.Analyze(req)
	require.NotNil(t, result)
	require.NotNil(t, result.Primary)

	assert.Equal(t, "IndexError", result.Primary.Name)
	assert.Equal(t, "python", result.Language)
	assert.Equal(t, "hint", result.Metadata.LanguageSource)
	assert.Contains(t, result.Tags, "Python")
	assert.Contains(t, result.Tags, TagSingleError)
	assert.Equal(t, []string{
		TagHighPriority,
		"IndexError",
		TagNeedsAttention,
		"Python",
		"Runtime Error",
		TagSingleError,
	}, result.Tags)

	sev, ok := result.SeverityLevel()
	require.True(t, ok)
	assert.Equal(t, diagnostic.SeverityHigh, sev)
	assert.True(t, result.HasFindings())
	assert.False(t, result.Failed())
	assert.True(t, strings.HasPrefix(result.Summary, "IndexError (Runtime Error, high severity)"))
}

func TestAnalyzeEmptyText(t *testing.T) {
	a := newTestAnalyzer()

	result := a.Analyze(NewRequest(""))
	require.NotNil(t, result)

	assert.Empty(t, result.Matches)
	assert.Nil(t, result.Primary)
	assert.Empty(t, result.Language)
	assert.Empty(t, result.Summary)
	assert.Equal(t, []string{TagNoErrors}, result.Tags)
	assert.Empty(t, result.Suggestions)

	_, ok := result.SeverityLevel()
	assert.False(t, ok)
	assert.False(t, result.HasFindings())
}

func TestAnalyzeDetectsPythonInProse(t *testing.T) {
	a := newTestAnalyzer()

	result := a.Analyze(NewRequest(tracebackInProse))

	assert.Equal(t, "python", result.Language)
	assert.Equal(t, "detected", result.Metadata.LanguageSource)
	assert.Positive(t, result.Metadata.DetectionScore)
	require.NotEmpty(t, result.Matches)
	assert.Equal(t, "IndexError", result.Primary.Name)
	assert.Equal(t, "jobs/importer.py", result.Primary.FilePath)
	assert.Equal(t, 41, result.Primary.FileLine)
	assert.NotEmpty(t, result.Primary.Window)
	assert.Contains(t, result.Tags, TagStackTrace)
	assert.Contains(t, result.Summary, "at jobs/importer.py:41")
}

func TestAnalyzeRespectsToggles(t *testing.T) {
	a := newTestAnalyzer()

	req := NewRequest(tracebackInProse)
	req.IncludeContext = false
	req.IncludeSuggestions = false
	req.IncludeTags = false

	result := a.Analyze(req)
	require.NotEmpty(t, result.Matches)
	assert.Empty(t, result.Matches[0].Window)
	assert.Nil(t, result.Tags)
	assert.Nil(t, result.Suggestions)
	assert.NotEmpty(t, result.Summary)
}

func TestAnalyzeCapsMatches(t *testing.T) {
	a := newTestAnalyzer()

	lines := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		lines = append(lines, "KeyError: 'missing'")
	}

	req := NewRequest(strings.Join(lines, "\n"))
	req.Language = "python"

	result := a.Analyze(req)
	assert.Len(t, result.Matches, DefaultMaxMatches)
	assert.Equal(t, 7, result.Metadata.TotalMatches)
	assert.Contains(t, result.Tags, TagMultipleErrors)
	assert.Contains(t, result.Tags, TagMediumPriority)
	assert.NotContains(t, result.Tags, TagNeedsAttention)

	req.MaxMatches = 2
	assert.Len(t, a.Analyze(req).Matches, 2)

	req.MaxMatches = 0
	assert.Len(t, a.Analyze(req).Matches, DefaultMaxMatches)
}

func TestAnalyzeUnknownHintYieldsEmptyResult(t *testing.T) {
	a := newTestAnalyzer()

	req := NewRequest("IndexError: list index out of range")
	req.Language = "cobol"

	result := a.Analyze(req)
	assert.Equal(t, "cobol", result.Language)
	assert.Empty(t, result.Matches)
	assert.Contains(t, result.Tags, "Cobol")
	assert.Contains(t, result.Tags, TagNoErrors)
	assert.False(t, result.Failed())
}

func TestAnalyzeDegradesOnPanic(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.FatalLevel)

	a := New(log, panickingMatcher{})

	var result *Result

	require.NotPanics(t, func() {
		result = a.Analyze(NewRequest("IndexError: list index out of range"))
	})
	require.NotNil(t, result)

	assert.True(t, result.Failed())
	assert.Equal(t, []string{TagAnalysisFailed}, result.Tags)
	assert.Equal(t, "IndexError: list index out of range", result.Text)
	assert.Equal(t, "python", result.Language)
	assert.Contains(t, result.Summary, "pattern table corrupted")
	assert.Contains(t, result.Metadata.Error, "pattern table corrupted")
	assert.NotEmpty(t, result.Suggestions)
	assert.Empty(t, result.Matches)
	assert.GreaterOrEqual(t, result.Metadata.DurationMs, 0.0)
}
