package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/ethpandaops/errscope/pkg/processor"
)

const (
	// Box drawing characters.
	boxTopLeft     = "┌"
	boxTopRight    = "┐"
	boxBottomLeft  = "└"
	boxBottomRight = "┘"
	boxHorizontal  = "─"
	boxVertical    = "│"
	boxLeftT       = "├"
	boxRightT      = "┤"

	// Status symbols.
	symbolFailure = "✗"
	symbolNone    = "○"

	// Default box width.
	defaultBoxWidth = 60

	// Output limits.
	maxWindowLines = 7
)

// DisplayDiagnosisSummary shows the headline of a diagnosis in a box.
// Output format:
// ┌─────────────────────────────────────────────────────────┐
// │  Diagnosis                                              │
// ├─────────────────────────────────────────────────────────┤
// │  ✗ IndexError              HIGH       python            │
// │  ✗ KeyError                HIGH       python            │
// └─────────────────────────────────────────────────────────┘.
func DisplayDiagnosisSummary(w io.Writer, out *processor.Output) {
	if out == nil || out.Analysis == nil {
		return
	}

	boxWidth := defaultBoxWidth
	contentWidth := boxWidth - 4 // Account for "│  " and " │"

	fmt.Fprintln(w, boxTopLeft+strings.Repeat(boxHorizontal, boxWidth-2)+boxTopRight)

	header := "Diagnosis"
	fmt.Fprintf(w, "%s  %s%s %s\n", boxVertical, pterm.Bold.Sprint(header),
		strings.Repeat(" ", contentWidth-1-len(header)), boxVertical)

	fmt.Fprintln(w, boxLeftT+strings.Repeat(boxHorizontal, boxWidth-2)+boxRightT)

	language := out.Analysis.Language
	if language == "" {
		language = "unknown"
	}

	if len(out.Analysis.Matches) == 0 {
		line := "No known error signature matched"
		fmt.Fprintf(w, "%s  %s %s%s%s\n", boxVertical, pterm.Gray(symbolNone), line,
			strings.Repeat(" ", max(0, contentWidth-2-len(line))), boxVertical)
	}

	for _, m := range out.Analysis.Matches {
		name := m.Name
		if len(name) > 24 {
			name = name[:24]
		}

		sev := strings.ToUpper(string(m.Severity))

		// Visible length: "  " + symbol + " " + name(24) + " " + severity(10) + " " + language.
		visibleLen := 2 + 1 + 1 + 24 + 1 + 10 + 1 + len(language)
		padding := max(0, contentWidth-visibleLen+2)

		fmt.Fprintf(w, "%s  %s %-24s %s%s %s%s%s\n",
			boxVertical,
			SeverityStyle(m.Severity).Sprint(symbolFailure),
			name,
			SeverityStyle(m.Severity).Sprint(sev),
			strings.Repeat(" ", max(0, 10-len(sev))),
			language,
			strings.Repeat(" ", padding),
			boxVertical)
	}

	fmt.Fprintln(w, boxBottomLeft+strings.Repeat(boxHorizontal, boxWidth-2)+boxBottomRight)
}

// DisplayDiagnosis shows the full diagnosis: summary box, the primary
// explanation, every match, suggestions, tags and, when present, the
// development context narrative.
func DisplayDiagnosis(w io.Writer, out *processor.Output, verbose bool) {
	if out == nil || out.Analysis == nil {
		return
	}

	DisplayDiagnosisSummary(w, out)

	if out.Analysis.Failed() {
		fmt.Fprintf(w, "\n%s %s\n", ErrorSymbol, ErrorStyle.Sprint(out.Summary))
	} else if out.Summary != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", pterm.Bold.Sprint("Summary:"), out.Summary)
	}

	if out.Analysis.Primary != nil && out.Analysis.Primary.Signature != nil {
		displayKnowledge(w, out.Analysis.Primary.Signature)
	}

	for i := range out.Analysis.Matches {
		displayMatch(w, i+1, &out.Analysis.Matches[i], verbose)
	}

	if len(out.Suggestions) > 0 {
		fmt.Fprintf(w, "\n%s\n", pterm.Bold.Sprint("Suggestions:"))

		for i, suggestion := range out.Suggestions {
			fmt.Fprintf(w, "  %s %s\n", pterm.Cyan(fmt.Sprintf("%d.", i+1)), suggestion)
		}
	}

	if len(out.Tags) > 0 {
		fmt.Fprintf(w, "\n%s %s\n", pterm.Gray("Tags:"), strings.Join(out.Tags, ", "))
	}

	if out.Narrative != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", pterm.Bold.Sprint("Context:"), out.Narrative)
	}

	displayFooter(w, out)
}

func displayKnowledge(w io.Writer, sig *diagnostic.Signature) {
	if sig.Explanation != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", pterm.Bold.Sprint("Explanation:"), sig.Explanation)
	}

	if sig.WhatHappened != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", pterm.Bold.Sprint("What happened:"), sig.WhatHappened)
	}

	if sig.Prevention != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", pterm.Bold.Sprint("Prevention:"), sig.Prevention)
	}

	if sig.Reference != "" {
		fmt.Fprintf(w, "%s %s\n", pterm.Gray("Reference:"), sig.Reference)
	}
}

func displayMatch(w io.Writer, n int, m *diagnostic.MatchRecord, verbose bool) {
	location := fmt.Sprintf("line %d", m.Line)
	if m.FilePath != "" {
		location = fmt.Sprintf("%s (%s:%d)", location, m.FilePath, m.FileLine)
	}

	fmt.Fprintf(w, "\n%s %s [%s] %s %s\n",
		pterm.Cyan(fmt.Sprintf("#%d", n)),
		pterm.Bold.Sprint(m.Name),
		SeverityLabel(m.Severity),
		m.Category.Display(),
		pterm.Gray(location))

	fmt.Fprintf(w, "  %s %s\n", pterm.Gray("Matched:"), firstLine(m.Matched))

	if !verbose || m.Window == "" {
		return
	}

	lines := strings.Split(m.Window, "\n")
	if len(lines) > maxWindowLines {
		lines = lines[:maxWindowLines]
	}

	for _, line := range lines {
		fmt.Fprintf(w, "    %s\n", pterm.Gray(line))
	}
}

func displayFooter(w io.Writer, out *processor.Output) {
	meta := out.Metadata

	parts := []string{
		"id " + meta.AnalysisID,
		formatDuration(time.Duration(meta.ProcessingDurationMs * float64(time.Millisecond))),
		fmt.Sprintf("%d lines", meta.LineCount),
	}

	if meta.Truncated {
		parts = append(parts, "truncated")
	}

	fmt.Fprintf(w, "\n%s\n", pterm.Gray(strings.Join(parts, " | ")))

	if meta.ContextError != "" {
		fmt.Fprintf(w, "%s %s\n", WarningSymbol, WarningStyle.Sprint("context: "+meta.ContextError))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}

	return s
}

// formatDuration formats a duration in a human-readable format.
// Examples: "3ms", "2.1s", "1m 5s".
func formatDuration(d time.Duration) string {
	if d < time.Second {
		ms := d.Milliseconds()
		if ms > 0 {
			return fmt.Sprintf("%dms", ms)
		}

		return "<1ms"
	}

	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60

	if secs == 0 {
		return fmt.Sprintf("%dm", mins)
	}

	return fmt.Sprintf("%dm %ds", mins, secs)
}

// DisplaySignature shows a signature with the knowledge attached to it.
func DisplaySignature(w io.Writer, sig *diagnostic.Signature) {
	KeyValueTable(w, sig.Name, map[string]string{
		"Category":  sig.Category.Display(),
		"Severity":  SeverityLabel(sig.Severity),
		"Languages": strings.Join(sig.Languages, ", "),
		"Pattern":   sig.Pattern.String(),
		"Reference": sig.Reference,
	})

	if sig.Explanation != "" {
		Section(w, "Explanation")
		fmt.Fprintln(w, sig.Explanation)
	}

	if sig.WhatHappened != "" {
		Section(w, "What happened")
		fmt.Fprintln(w, sig.WhatHappened)
	}

	if len(sig.Remediation) > 0 {
		Section(w, "Remediation")

		for i, step := range sig.Remediation {
			fmt.Fprintf(w, "  %s %s\n", pterm.Cyan(fmt.Sprintf("%d.", i+1)), step)
		}
	}

	if sig.Prevention != "" {
		Section(w, "Prevention")
		fmt.Fprintln(w, sig.Prevention)
	}
}
