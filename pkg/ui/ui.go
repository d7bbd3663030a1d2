// Package ui renders errscope output for the terminal: status lines,
// tables, spinners and the diagnosis report.
package ui

import (
	"fmt"
	"io"
	"strings"
)

// Success prints a success message with a green checkmark.
func Success(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", SuccessSymbol, SuccessStyle.Sprint(message))
}

// Warning prints a warning message with a yellow symbol.
func Warning(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", WarningSymbol, WarningStyle.Sprint(message))
}

// Info prints an info message with a cyan arrow.
func Info(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", InfoSymbol, InfoStyle.Sprint(message))
}

// Header prints a styled header.
func Header(w io.Writer, message string) {
	fmt.Fprintln(w, HeaderStyle.Sprint(message))
}

// Section prints a header preceded by a separator line.
func Section(w io.Writer, message string) {
	fmt.Fprintf(w, "\n%s\n%s\n", MutedStyle.Sprint(strings.Repeat("─", 49)), HeaderStyle.Sprint(message))
}

// Blank prints an empty line.
func Blank(w io.Writer) {
	fmt.Fprintln(w)
}
