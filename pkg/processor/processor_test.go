package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ethpandaops/errscope/pkg/devcontext"
	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/ethpandaops/errscope/pkg/exec"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offlineRunner fails every command, as on a machine without git or runtimes.
type offlineRunner struct{}

func (offlineRunner) Run(context.Context, string, string, ...string) (exec.Result, error) {
	return exec.Result{ExitCode: -1}, errors.New("executable file not found")
}

func newTestProcessor(opts Options) *Processor {
	log := logrus.New()
	log.SetLevel(logrus.FatalLevel)

	return New(log, diagnostic.NewLibrary(), opts,
		devcontext.WithRunner(offlineRunner{}),
		devcontext.WithGetenv(func(string) string { return "" }),
	)
}

const pythonTrace = `Traceback (most recent call last):
  File "/srv/app/loader.py", line 6, in load
    return items[10]
IndexError: list index out of range`

func TestProcessLogScenarioTruncation(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}

	out := newTestProcessor(DefaultOptions()).ProcessLog(Request{
		Text:     strings.Join(lines, "\n"),
		MaxLines: 5,
	})

	assert.True(t, out.Metadata.Truncated)
	assert.LessOrEqual(t, CountLines(out.CleanedText), 5)
	assert.Equal(t, "line 1\nline 2\nline 3\nline 4\nline 5", out.CleanedText)
	assert.Equal(t, 10, out.Metadata.LineCount)
}

func TestProcessLogAnalysis(t *testing.T) {
	out := newTestProcessor(DefaultOptions()).ProcessLog(NewRequest(pythonTrace+"\n\n\n", "auto"))

	assert.Equal(t, "python", out.Metadata.DetectedLanguage)
	require.NotNil(t, out.Metadata.PrimarySignature)
	assert.Equal(t, "IndexError", *out.Metadata.PrimarySignature)
	assert.Equal(t, "high", out.Metadata.SeverityLevel)
	assert.GreaterOrEqual(t, out.Metadata.MatchCount, 1)
	assert.False(t, out.Metadata.Truncated)
	assert.Contains(t, out.Tags, "Python")
	assert.Contains(t, out.Tags, "Stack Trace")
	assert.NotEmpty(t, out.Summary)
	assert.NotEmpty(t, out.Suggestions)
	assert.NotEmpty(t, out.Metadata.AnalysisID)
	assert.Equal(t, pythonTrace, out.CleanedText)
	assert.Empty(t, out.Narrative)
}

func TestProcessLogEmptyInput(t *testing.T) {
	out := newTestProcessor(DefaultOptions()).ProcessLog(NewRequest("", ""))

	assert.Empty(t, out.CleanedText)
	assert.Nil(t, out.Metadata.PrimarySignature)
	assert.Zero(t, out.Metadata.MatchCount)
	assert.Contains(t, out.Tags, "No Errors Detected")
	assert.Empty(t, out.Metadata.AnalysisError)
}

func TestProcessLogStripsANSIBeforeAnalysis(t *testing.T) {
	colored := "\x1b[31mIndexError: list index out of range\x1b[0m"

	t.Run("enabled", func(t *testing.T) {
		out := newTestProcessor(DefaultOptions()).ProcessLog(NewRequest(colored, "python"))

		require.NotNil(t, out.Metadata.PrimarySignature)
		assert.Equal(t, "IndexError", *out.Metadata.PrimarySignature)
		assert.Equal(t, colored, out.CleanedText)
		assert.NotContains(t, out.Analysis.Text, "\x1b")
	})

	t.Run("disabled", func(t *testing.T) {
		opts := DefaultOptions()
		opts.StripANSI = false

		out := newTestProcessor(opts).ProcessLog(NewRequest(colored, "python"))

		require.NotNil(t, out.Analysis)
		assert.Contains(t, out.Analysis.Text, "\x1b[31m")
	})
}

func TestProcessLogWithContextMissingRoot(t *testing.T) {
	p := newTestProcessor(DefaultOptions())
	req := NewRequest(pythonTrace, "")

	var enriched *Output

	require.NotPanics(t, func() {
		enriched = p.ProcessLogWithContext(context.Background(), req, filepath.Join(t.TempDir(), "no-such-project"), "")
	})

	plain := p.ProcessLog(req)

	assert.Contains(t, enriched.Narrative, "Context extraction failed")
	assert.Contains(t, enriched.Narrative, plain.Summary)
	assert.NotEmpty(t, enriched.Metadata.ContextError)
	assert.False(t, enriched.Metadata.HasRichContext)
	assert.Empty(t, enriched.Metadata.ContextSources)
	assert.Nil(t, enriched.Context)

	assert.Equal(t, plain.CleanedText, enriched.CleanedText)
	assert.Equal(t, plain.Summary, enriched.Summary)
	assert.Equal(t, plain.Tags, enriched.Tags)
	assert.Equal(t, plain.Suggestions, enriched.Suggestions)
	assert.Equal(t, plain.Metadata.DetectedLanguage, enriched.Metadata.DetectedLanguage)
	assert.Equal(t, plain.Metadata.MatchCount, enriched.Metadata.MatchCount)
	assert.Equal(t, plain.Metadata.PrimarySignature, enriched.Metadata.PrimarySignature)
	assert.Equal(t, plain.Metadata.Truncated, enriched.Metadata.Truncated)
	assert.Equal(t, plain.Metadata.LineCount, enriched.Metadata.LineCount)
}

func TestProcessLogWithContextSubExtractorFailure(t *testing.T) {
	root := t.TempDir()

	f, err := os.Create(filepath.Join(root, "loader.py"))
	require.NoError(t, err)
	require.NoError(t, f.Truncate(5<<20))
	require.NoError(t, f.Close())

	out := newTestProcessor(DefaultOptions()).ProcessLogWithContext(context.Background(), NewRequest(pythonTrace, ""), root, "")

	require.NotNil(t, out.Context)
	assert.False(t, out.Context.Metadata.Successful)
	assert.Contains(t, out.Context.Metadata.Failures, devcontext.SourceFile)
	assert.Contains(t, out.Metadata.ContextError, "too large to render")
	assert.Nil(t, out.Context.File)
}

func TestProcessLogWithContextProject(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "loader.py"),
		[]byte("class Loader:\n    def load(self, items):\n        x = 1\n        y = 2\n        z = 3\n        return items[10]\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "requirements.txt"), []byte("flask\n"), 0o600))

	out := newTestProcessor(DefaultOptions()).ProcessLogWithContext(context.Background(), NewRequest(pythonTrace, ""), root, "")

	assert.True(t, out.Metadata.HasRichContext)
	assert.Equal(t, []string{devcontext.SourceFile, devcontext.SourceProject, devcontext.SourceRuntime}, out.Metadata.ContextSources)
	assert.Empty(t, out.Metadata.ContextError)
	assert.Contains(t, out.Narrative, "Function: load")
	assert.Contains(t, out.Narrative, "Framework: Flask")
	assert.Contains(t, out.Narrative, "not a git repository")

	require.NotNil(t, out.Context)
	require.NotNil(t, out.Context.File)
	assert.Equal(t, 6, out.Context.File.Line)
	assert.Equal(t, "Loader", out.Context.File.Type)
}

func TestContextExtractorBuiltOnce(t *testing.T) {
	p := newTestProcessor(DefaultOptions())
	assert.Nil(t, p.extractor)

	var wg sync.WaitGroup

	got := make([]*devcontext.Extractor, 8)

	for i := range got {
		wg.Add(1)

		go func() {
			defer wg.Done()

			got[i] = p.contextExtractor()
		}()
	}

	wg.Wait()

	for _, e := range got {
		assert.Same(t, got[0], e)
	}

	assert.NotNil(t, got[0])
}

func TestFallbackNarrativeWithoutFindings(t *testing.T) {
	out := &Output{}

	narrative := FallbackNarrative(out, errors.New("boom"))

	assert.Contains(t, narrative, "Context extraction failed: boom")
	assert.Contains(t, narrative, "Language: unknown")
	assert.Contains(t, narrative, "No known error signature matched.")
}
