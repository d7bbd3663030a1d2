package diagnostic

import (
	"regexp"
	"sort"
	"strings"
)

// Language is a source language known to the library. The set of variants
// is closed: implementations live in this package only.
type Language interface {
	// Name is the canonical lower-case name, e.g. "python".
	Name() string
	// Aliases are other names accepted as a language hint.
	Aliases() []string
	// Extensions lists source file extensions including the dot.
	Extensions() []string
	// Fingerprints are structural patterns used only to guess the language.
	Fingerprints() []*regexp.Regexp
	// Locations are ordered file/line patterns for stack frames and compiler output.
	Locations() []LocationPattern
	// Signatures is the error catalogue for this language.
	Signatures() []*Signature
	// ResolvesScope reports whether enclosing function/class lookup is supported.
	ResolvesScope() bool

	sealed()
}

// LocationPattern extracts a file path (group 1) and line number (group 2).
type LocationPattern struct {
	Pattern *regexp.Regexp
	// LastWins selects the final occurrence instead of the first, for traces
	// that print the innermost frame last.
	LastWins bool
}

// DefaultLanguages returns every built-in language, sorted by name.
func DefaultLanguages() []Language {
	langs := []Language{
		Python{},
		JavaScript{},
		Java{},
		Go{},
		Rust{},
	}

	sortLanguages(langs)

	return langs
}

func sortLanguages(langs []Language) {
	sort.SliceStable(langs, func(i, j int) bool {
		return langs[i].Name() < langs[j].Name()
	})
}

// matchesLanguage reports whether name is the language's name or one of its aliases.
func matchesLanguage(lang Language, name string) bool {
	if strings.EqualFold(lang.Name(), name) {
		return true
	}

	for _, alias := range lang.Aliases() {
		if strings.EqualFold(alias, name) {
			return true
		}
	}

	return false
}

// signaturePattern compiles a signature expression with case-insensitive,
// multi-line semantics.
func signaturePattern(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)` + expr)
}

// fingerprintPattern compiles a fingerprint; fingerprints stay case-sensitive
// because they describe exact stack trace layout.
func fingerprintPattern(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)` + expr)
}

func locationPattern(expr string, lastWins bool) LocationPattern {
	return LocationPattern{
		Pattern:  regexp.MustCompile(`(?m)` + expr),
		LastWins: lastWins,
	}
}
