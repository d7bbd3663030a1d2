package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/ethpandaops/errscope/pkg/analyzer"
	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/ethpandaops/errscope/pkg/processor"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pythonTrace = `Traceback (most recent call last):
  File "/srv/app/loader.py", line 6, in load
    return items[10]
IndexError: list index out of range`

func processText(t *testing.T, text string) *processor.Output {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.FatalLevel)

	out := processor.New(log, diagnostic.NewLibrary(), processor.DefaultOptions()).
		ProcessLog(processor.NewRequest(text, ""))
	require.NotNil(t, out)

	return out
}

func TestDisplayDiagnosis(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	out := processText(t, pythonTrace)

	var buf bytes.Buffer
	DisplayDiagnosis(&buf, out, true)

	text := buf.String()
	assert.Contains(t, text, "Diagnosis")
	assert.Contains(t, text, "IndexError")
	assert.Contains(t, text, "HIGH")
	assert.Contains(t, text, "python")
	assert.Contains(t, text, "Suggestions:")
	assert.Contains(t, text, "Stack Trace")
	assert.Contains(t, text, "return items[10]")
	assert.Contains(t, text, "id "+out.Metadata.AnalysisID)
}

func TestDisplayDiagnosisWithoutMatches(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	var buf bytes.Buffer
	DisplayDiagnosis(&buf, processText(t, "all good"), false)

	assert.Contains(t, buf.String(), "No known error signature matched")
	assert.NotContains(t, buf.String(), "Suggestions:")
}

func TestDisplayDiagnosisDegraded(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	req := analyzer.NewRequest("boom")
	out := &processor.Output{
		Analysis: analyzer.Degraded(req, "", errors.New("matcher exploded"), time.Millisecond),
	}
	out.Summary = out.Analysis.Summary

	var buf bytes.Buffer
	DisplayDiagnosis(&buf, out, false)

	assert.Contains(t, buf.String(), out.Analysis.Summary)
}

func TestDisplayDiagnosisNil(t *testing.T) {
	var buf bytes.Buffer
	DisplayDiagnosis(&buf, nil, false)
	DisplayDiagnosis(&buf, &processor.Output{}, false)

	assert.Empty(t, buf.String())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "<1ms"},
		{3 * time.Millisecond, "3ms"},
		{2100 * time.Millisecond, "2.1s"},
		{time.Minute, "1m"},
		{65 * time.Second, "1m 5s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.in), tt.in.String())
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "one", firstLine("one"))
	assert.Equal(t, "one …", firstLine("one\ntwo"))
}
