package processor

import (
	"strings"
	"unicode"
)

// splitLines splits text into lines, ignoring a single trailing newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	return lines
}

// CountLines returns the number of lines in text.
func CountLines(text string) int {
	return len(splitLines(text))
}

// Truncate keeps the first maxLines lines of text and reports whether
// anything was dropped. A non-positive maxLines disables truncation.
// Truncate(Truncate(s, n), n) == Truncate(s, n).
func Truncate(text string, maxLines int) (string, bool) {
	if maxLines <= 0 {
		return text, false
	}

	lines := splitLines(text)
	if len(lines) <= maxLines {
		return text, false
	}

	return strings.Join(lines[:maxLines], "\n"), true
}

// Cleanup trims trailing whitespace from every line, collapses runs of blank
// lines into one and drops leading and trailing blank lines. Non-blank
// content is preserved verbatim.
func Cleanup(text string) string {
	lines := splitLines(text)
	out := make([]string, 0, len(lines))
	prevBlank := false

	for _, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)

		if line == "" {
			if len(out) == 0 || prevBlank {
				continue
			}

			prevBlank = true
			out = append(out, line)

			continue
		}

		prevBlank = false
		out = append(out, line)
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	return strings.Join(out, "\n")
}
