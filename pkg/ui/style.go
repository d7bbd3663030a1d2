package ui

import (
	"strings"

	"github.com/ethpandaops/errscope/pkg/diagnostic"
	"github.com/pterm/pterm"
)

var (
	// Status styles.
	SuccessStyle = pterm.NewStyle(pterm.FgGreen)
	ErrorStyle   = pterm.NewStyle(pterm.FgRed)
	WarningStyle = pterm.NewStyle(pterm.FgYellow)
	InfoStyle    = pterm.NewStyle(pterm.FgCyan)

	// Status symbols.
	SuccessSymbol = pterm.Green("✓")
	ErrorSymbol   = pterm.Red("✗")
	WarningSymbol = pterm.Yellow("⚠")
	InfoSymbol    = pterm.Cyan("→")

	HeaderStyle = pterm.NewStyle(pterm.FgCyan, pterm.Bold)
	MutedStyle  = pterm.NewStyle(pterm.FgGray)
)

// severityStyles colours severity labels, most severe first.
var severityStyles = map[diagnostic.Severity]*pterm.Style{
	diagnostic.SeverityCritical: pterm.NewStyle(pterm.FgLightRed, pterm.Bold),
	diagnostic.SeverityHigh:     pterm.NewStyle(pterm.FgRed),
	diagnostic.SeverityMedium:   pterm.NewStyle(pterm.FgYellow),
	diagnostic.SeverityLow:      pterm.NewStyle(pterm.FgCyan),
	diagnostic.SeverityInfo:     MutedStyle,
}

// SeverityStyle returns the style used for a severity. Unknown severities
// are muted.
func SeverityStyle(sev diagnostic.Severity) *pterm.Style {
	if style, ok := severityStyles[sev]; ok {
		return style
	}

	return MutedStyle
}

// SeverityLabel returns the coloured upper-case severity.
func SeverityLabel(sev diagnostic.Severity) string {
	return SeverityStyle(sev).Sprint(strings.ToUpper(string(sev)))
}
