package ui

import (
	"bytes"
	"sync"
	"testing"

	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
)

func TestConditionalWriter(t *testing.T) {
	var buf bytes.Buffer

	w := NewConditionalWriter(&buf, false)

	n, err := w.Write([]byte("hidden"))
	assert.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Empty(t, buf.String())

	w.SetEnabled(true)

	_, err = w.Write([]byte("shown"))
	assert.NoError(t, err)
	assert.Equal(t, "shown", buf.String())
}

func TestConditionalWriterConcurrent(t *testing.T) {
	var buf bytes.Buffer

	w := NewConditionalWriter(&buf, true)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, _ = w.Write([]byte("x"))
		}()
	}

	wg.Wait()

	assert.Equal(t, 16, buf.Len())
}

func TestSeverityLabel(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	for _, sev := range diagnostic.Severities() {
		assert.NotNil(t, SeverityStyle(sev), sev)
	}

	assert.Equal(t, MutedStyle, SeverityStyle("bogus"))
	assert.Equal(t, "CRITICAL", SeverityLabel(diagnostic.SeverityCritical))
}

func TestStatusLines(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	var buf bytes.Buffer

	Success(&buf, "done")
	Warning(&buf, "careful")
	Info(&buf, "fyi")
	Header(&buf, "Title")

	out := buf.String()
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "careful")
	assert.Contains(t, out, "fyi")
	assert.Contains(t, out, "Title")
}

func TestKeyValueTableSkipsEmptyValues(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	var buf bytes.Buffer

	KeyValueTable(&buf, "", map[string]string{
		"Present": "yes",
		"Missing": "",
	})

	assert.Contains(t, buf.String(), "Present")
	assert.NotContains(t, buf.String(), "Missing")
}
