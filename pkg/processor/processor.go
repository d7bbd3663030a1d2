// Package processor is the single entry point for diagnosing error output:
// it truncates and cleans the text, runs the analyzer and, on request,
// attaches development context gathered from the project on disk.
package processor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/ethpandaops/errscope/pkg/analyzer"
	"github.com/ethpandaops/errscope/pkg/devcontext"
	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/ethpandaops/errscope/pkg/discovery"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultMaxLines bounds the analysed text when no limit is configured.
const DefaultMaxLines = 1000

// Options configures a Processor at construction.
type Options struct {
	MaxLines   int
	MaxMatches int
	// StripANSI removes terminal escape sequences before analysis. The
	// cleaned text returned to the caller keeps them.
	StripANSI bool
	Context   devcontext.Options
}

// DefaultOptions returns the standard processor configuration.
func DefaultOptions() Options {
	return Options{
		MaxLines:   DefaultMaxLines,
		MaxMatches: analyzer.DefaultMaxMatches,
		StripANSI:  true,
		Context:    devcontext.DefaultOptions(),
	}
}

// Request is one piece of error output to process.
type Request struct {
	Text string
	// Language is a hint; empty or "auto" triggers detection.
	Language           string
	IncludeContext     bool
	IncludeSuggestions bool
	IncludeTags        bool
	// MaxLines overrides Options.MaxLines when positive.
	MaxLines int
}

// NewRequest returns a request with every analysis toggle enabled.
func NewRequest(text, language string) Request {
	return Request{
		Text:               text,
		Language:           language,
		IncludeContext:     true,
		IncludeSuggestions: true,
		IncludeTags:        true,
	}
}

// Metadata summarises a processing call.
type Metadata struct {
	AnalysisID           string  `json:"analysisId" yaml:"analysisId"`
	ProcessingDurationMs float64 `json:"processingDurationMs" yaml:"processingDurationMs"`
	DetectedLanguage     string  `json:"detectedLanguage,omitempty" yaml:"detectedLanguage,omitempty"`
	// LineCount is the number of lines received, before truncation.
	LineCount        int     `json:"lineCount" yaml:"lineCount"`
	Truncated        bool    `json:"truncated" yaml:"truncated"`
	MatchCount       int     `json:"matchCount" yaml:"matchCount"`
	PrimarySignature *string `json:"primarySignature" yaml:"primarySignature"`
	SeverityLevel    string  `json:"severityLevel,omitempty" yaml:"severityLevel,omitempty"`
	AnalysisError    string  `json:"analysisError,omitempty" yaml:"analysisError,omitempty"`

	// Set by ProcessLogWithContext only.
	HasRichContext              bool     `json:"hasRichContext,omitempty" yaml:"hasRichContext,omitempty"`
	ContextExtractionDurationMs float64  `json:"contextExtractionDurationMs,omitempty" yaml:"contextExtractionDurationMs,omitempty"`
	ContextSources              []string `json:"contextSources,omitempty" yaml:"contextSources,omitempty"`
	ContextError                string   `json:"contextError,omitempty" yaml:"contextError,omitempty"`
}

// Output is the result of processing.
type Output struct {
	CleanedText string                         `json:"cleanedText" yaml:"cleanedText"`
	Summary     string                         `json:"summary,omitempty" yaml:"summary,omitempty"`
	Tags        []string                       `json:"tags" yaml:"tags"`
	Suggestions []string                       `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	Analysis    *analyzer.Result               `json:"analysis" yaml:"analysis"`
	Narrative   string                         `json:"narrative,omitempty" yaml:"narrative,omitempty"`
	Context     *devcontext.DevelopmentContext `json:"context,omitempty" yaml:"context,omitempty"`
	Metadata    Metadata                       `json:"metadata" yaml:"metadata"`

	analysedText string
}

// Processor runs the processing pipeline. It may be shared between
// goroutines; the context extractor is built on first use and reused.
type Processor struct {
	log      logrus.FieldLogger
	lib      *diagnostic.Library
	analyzer *analyzer.Analyzer
	opts     Options

	extractorOnce    sync.Once
	extractor        *devcontext.Extractor
	extractorOptions []devcontext.Option
}

// New creates a processor over lib. extractorOptions are passed to the
// context extractor when it is first needed.
func New(log logrus.FieldLogger, lib *diagnostic.Library, opts Options, extractorOptions ...devcontext.Option) *Processor {
	if opts.MaxLines <= 0 {
		opts.MaxLines = DefaultMaxLines
	}

	if opts.MaxMatches <= 0 {
		opts.MaxMatches = analyzer.DefaultMaxMatches
	}

	return &Processor{
		log:              log.WithField("component", "processor"),
		lib:              lib,
		analyzer:         analyzer.New(log, lib),
		opts:             opts,
		extractorOptions: extractorOptions,
	}
}

// ProcessLog truncates, cleans and analyses req.Text. It never panics.
func (p *Processor) ProcessLog(req Request) *Output {
	start := time.Now()

	out := p.process(req)
	out.Metadata.ProcessingDurationMs = durationMs(time.Since(start))

	return out
}

// ProcessLogWithContext runs ProcessLog and then gathers development context
// from projectRoot. filePath, when set, names the file the error refers to.
// Context failures never affect the base results: they produce a short
// fallback narrative and are recorded in Metadata.ContextError.
func (p *Processor) ProcessLogWithContext(ctx context.Context, req Request, projectRoot, filePath string) (out *Output) {
	start := time.Now()

	out = p.process(req)
	contextStart := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.contextFailed(out, fmt.Errorf("context extraction panicked: %v", r))
		}

		out.Metadata.ContextExtractionDurationMs = durationMs(time.Since(contextStart))
		out.Metadata.ProcessingDurationMs = durationMs(time.Since(start))
	}()

	root, err := discovery.ResolveRoot(projectRoot)
	if err != nil {
		p.contextFailed(out, err)

		return out
	}

	dc := p.contextExtractor().ExtractFullContext(ctx, root, out.analysedText, filePath)

	out.Context = dc
	out.Narrative = devcontext.Render(dc)
	out.Metadata.ContextSources = dc.Metadata.Sources
	out.Metadata.HasRichContext = len(dc.Metadata.Sources) > 0

	if !dc.Metadata.Successful {
		out.Metadata.ContextError = strings.Join(failureList(dc.Metadata.Failures), "; ")
	}

	return out
}

func (p *Processor) process(req Request) (out *Output) {
	maxLines := req.MaxLines
	if maxLines <= 0 {
		maxLines = p.opts.MaxLines
	}

	out = &Output{
		Tags: make([]string, 0),
		Metadata: Metadata{
			AnalysisID: uuid.NewString(),
			LineCount:  CountLines(req.Text),
		},
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("processing panicked: %v", r)
			p.log.WithError(err).Warn("Returning degraded processing result")

			p.applyAnalysis(out, analyzer.Degraded(p.analyzerRequest(req, req.Text), "", err, 0))
		}
	}()

	truncated, wasTruncated := Truncate(req.Text, maxLines)
	out.Metadata.Truncated = wasTruncated
	out.CleanedText = Cleanup(truncated)

	out.analysedText = out.CleanedText
	if p.opts.StripANSI {
		out.analysedText = stripansi.Strip(out.analysedText)
	}

	p.applyAnalysis(out, p.analyzer.Analyze(p.analyzerRequest(req, out.analysedText)))

	p.log.WithFields(logrus.Fields{
		"lines":     out.Metadata.LineCount,
		"truncated": out.Metadata.Truncated,
		"matches":   out.Metadata.MatchCount,
	}).Debug("Processed log")

	return out
}

func (p *Processor) analyzerRequest(req Request, text string) analyzer.Request {
	return analyzer.Request{
		Text:               text,
		Language:           req.Language,
		IncludeContext:     req.IncludeContext,
		IncludeSuggestions: req.IncludeSuggestions,
		IncludeTags:        req.IncludeTags,
		MaxMatches:         p.opts.MaxMatches,
	}
}

func (p *Processor) applyAnalysis(out *Output, res *analyzer.Result) {
	out.Analysis = res
	out.Summary = res.Summary
	out.Suggestions = res.Suggestions
	out.Metadata.DetectedLanguage = res.Language
	out.Metadata.MatchCount = len(res.Matches)
	out.Metadata.AnalysisError = res.Metadata.Error

	if res.Tags != nil {
		out.Tags = res.Tags
	}

	if res.Primary != nil {
		name := res.Primary.Name
		out.Metadata.PrimarySignature = &name
	}

	if sev, ok := res.SeverityLevel(); ok {
		out.Metadata.SeverityLevel = string(sev)
	}
}

// contextExtractor builds the extractor on first use.
func (p *Processor) contextExtractor() *devcontext.Extractor {
	p.extractorOnce.Do(func() {
		p.extractor = devcontext.New(p.log, p.lib, p.opts.Context, p.extractorOptions...)
	})

	return p.extractor
}

func (p *Processor) contextFailed(out *Output, err error) {
	p.log.WithError(err).Warn("Context extraction failed")

	out.Context = nil
	out.Metadata.HasRichContext = false
	out.Metadata.ContextSources = nil
	out.Metadata.ContextError = err.Error()
	out.Narrative = FallbackNarrative(out, err)
}

// FallbackNarrative states that context extraction failed and repeats the
// basic analysis.
func FallbackNarrative(out *Output, err error) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Context extraction failed: %v\n\n", err)
	sb.WriteString("Basic analysis:\n")

	language := out.Metadata.DetectedLanguage
	if language == "" {
		language = "unknown"
	}

	fmt.Fprintf(&sb, "  Language: %s\n", language)

	if out.Summary != "" {
		fmt.Fprintf(&sb, "  %s\n", out.Summary)
	} else {
		sb.WriteString("  No known error signature matched.\n")
	}

	if len(out.Tags) > 0 {
		fmt.Fprintf(&sb, "  Tags: %s\n", strings.Join(out.Tags, ", "))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func failureList(failures map[string]string) []string {
	list := make([]string, 0, len(failures))
	for name, reason := range failures {
		list = append(list, name+": "+reason)
	}

	sort.Strings(list)

	return list
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
