// Package analyzer turns raw error text into a structured diagnosis:
// detected language, ranked signature matches, tags, a summary and
// remediation suggestions.
package analyzer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMaxMatches caps the match list when a request does not set one.
	DefaultMaxMatches = 5

	// AutoLanguage requests language detection.
	AutoLanguage = "auto"

	// TagAnalysisFailed marks a degraded result.
	TagAnalysisFailed = "analysis-failed"
)

// Matcher is the part of the signature library the analyzer depends on.
type Matcher interface {
	Detect(text string) diagnostic.Detection
	Match(text, language string, opts diagnostic.MatchOptions) []diagnostic.MatchRecord
}

// Request is a single analysis call.
type Request struct {
	Text string
	// Language is used verbatim unless empty or "auto".
	Language           string
	IncludeContext     bool
	IncludeSuggestions bool
	IncludeTags        bool
	MaxMatches         int
}

// NewRequest returns a request with language detection, windows, tags and
// suggestions enabled and the default match cap.
func NewRequest(text string) Request {
	return Request{
		Text:               text,
		Language:           AutoLanguage,
		IncludeContext:     true,
		IncludeSuggestions: true,
		IncludeTags:        true,
		MaxMatches:         DefaultMaxMatches,
	}
}

// Metadata describes how a result was produced.
type Metadata struct {
	Duration time.Duration `json:"-" yaml:"-"`
	// DurationMs mirrors Duration for serialisation.
	DurationMs float64 `json:"durationMs" yaml:"durationMs"`
	// LanguageSource is "hint", "detected" or empty when no language is known.
	LanguageSource string   `json:"languageSource,omitempty" yaml:"languageSource,omitempty"`
	DetectionScore int      `json:"detectionScore,omitempty" yaml:"detectionScore,omitempty"`
	TiedLanguages  []string `json:"tiedLanguages,omitempty" yaml:"tiedLanguages,omitempty"`
	// TotalMatches counts matches before the cap was applied.
	TotalMatches int    `json:"totalMatches" yaml:"totalMatches"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Result is the outcome of an analysis. A failed analysis still yields a
// valid Result carrying the analysis-failed tag.
type Result struct {
	Text        string                   `json:"-" yaml:"-"`
	Language    string                   `json:"language,omitempty" yaml:"language,omitempty"`
	Primary     *diagnostic.MatchRecord  `json:"primary,omitempty" yaml:"primary,omitempty"`
	Matches     []diagnostic.MatchRecord `json:"matches" yaml:"matches"`
	Tags        []string                 `json:"tags,omitempty" yaml:"tags,omitempty"`
	Summary     string                   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Suggestions []string                 `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	Metadata    Metadata                 `json:"metadata" yaml:"metadata"`
}

// HasFindings reports whether any signature matched.
func (r *Result) HasFindings() bool {
	return len(r.Matches) > 0
}

// SeverityLevel returns the most severe severity among the matches.
func (r *Result) SeverityLevel() (diagnostic.Severity, bool) {
	return diagnostic.WorstSeverity(r.Matches)
}

// Failed reports whether the result is a degraded one.
func (r *Result) Failed() bool {
	return r.Metadata.Error != ""
}

// Analyzer orchestrates detection and matching for one text at a time.
// It holds no per-call state and may be shared between goroutines.
type Analyzer struct {
	log     logrus.FieldLogger
	matcher Matcher
}

// New creates an analyzer over the given matcher.
func New(log logrus.FieldLogger, matcher Matcher) *Analyzer {
	return &Analyzer{
		log:     log.WithField("component", "analyzer"),
		matcher: matcher,
	}
}

// Analyze runs the full analysis. It never panics: internal failures are
// converted to a degraded result.
func (a *Analyzer) Analyze(req Request) (result *Result) {
	start := time.Now()
	language := ""

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("analysis panicked: %v", r)
			a.log.WithError(err).Warn("Returning degraded analysis result")

			result = Degraded(req, language, err, time.Since(start))
		}
	}()

	result = &Result{
		Text:    req.Text,
		Matches: make([]diagnostic.MatchRecord, 0),
	}

	language = a.resolveLanguage(req, result)
	result.Language = language

	matches := a.matcher.Match(req.Text, language, diagnostic.MatchOptions{Windows: req.IncludeContext})
	result.Metadata.TotalMatches = len(matches)

	limit := req.MaxMatches
	if limit <= 0 {
		limit = DefaultMaxMatches
	}

	if len(matches) > limit {
		matches = matches[:limit]
	}

	result.Matches = matches

	if len(matches) > 0 {
		result.Primary = &result.Matches[0]
		result.Summary = Summary(result.Primary)
	}

	if req.IncludeTags {
		result.Tags = Tags(language, req.Text, matches)
	}

	if req.IncludeSuggestions {
		result.Suggestions = Suggestions(matches)
	}

	result.Metadata.Duration = time.Since(start)
	result.Metadata.DurationMs = durationMs(result.Metadata.Duration)

	a.log.WithFields(logrus.Fields{
		"language": language,
		"matches":  len(matches),
	}).Debug("Analysis complete")

	return result
}

func (a *Analyzer) resolveLanguage(req Request, result *Result) string {
	hint := strings.TrimSpace(req.Language)
	if hint != "" && !strings.EqualFold(hint, AutoLanguage) {
		result.Metadata.LanguageSource = "hint"

		return hint
	}

	detection := a.matcher.Detect(req.Text)
	if !detection.Found() {
		return ""
	}

	result.Metadata.LanguageSource = "detected"
	result.Metadata.DetectionScore = detection.Score
	result.Metadata.TiedLanguages = detection.Tied

	if len(detection.Tied) > 0 {
		a.log.WithFields(logrus.Fields{
			"winner": detection.Name(),
			"tied":   detection.Tied,
		}).Debug("Language detection tied, using alphabetical order")
	}

	return detection.Name()
}

// Degraded builds the result returned when analysis could not complete.
// The original text and any language resolved so far are preserved.
func Degraded(req Request, language string, err error, elapsed time.Duration) *Result {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}

	return &Result{
		Text:     req.Text,
		Language: language,
		Matches:  make([]diagnostic.MatchRecord, 0),
		Tags:     []string{TagAnalysisFailed},
		Summary:  "Automatic analysis failed: " + msg,
		Suggestions: []string{
			"Review the error output manually, starting from the last lines of the trace",
		},
		Metadata: Metadata{
			Duration:   elapsed,
			DurationMs: durationMs(elapsed),
			Error:      msg,
		},
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
