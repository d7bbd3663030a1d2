package diagnostic

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// windowRadius is the number of lines kept on each side of a match.
const windowRadius = 2

// MatchOptions controls how match records are built.
type MatchOptions struct {
	// Windows attaches the surrounding lines to each record.
	Windows bool
}

// Location is a file and line reference found in error text.
type Location struct {
	Path string
	Line int
	// Language is the name of the language whose pattern matched, empty for
	// the generic fallback.
	Language string
}

// Library is the catalogue of languages and their signatures, plus the
// matching engine over them. It is read-only after construction and safe for
// concurrent use.
type Library struct {
	languages  []Language
	signatures []*Signature
	detector   *Detector
}

// NewLibrary creates a library over the given languages, or over
// DefaultLanguages when none are given.
func NewLibrary(languages ...Language) *Library {
	if len(languages) == 0 {
		languages = DefaultLanguages()
	}

	langs := make([]Language, len(languages))
	copy(langs, languages)
	sortLanguages(langs)

	l := &Library{
		languages:  langs,
		signatures: make([]*Signature, 0, 64),
		detector:   NewDetector(langs),
	}

	for _, lang := range langs {
		l.signatures = append(l.signatures, lang.Signatures()...)
	}

	return l
}

// Languages returns the registered languages sorted by name.
func (l *Library) Languages() []Language {
	out := make([]Language, len(l.languages))
	copy(out, l.languages)

	return out
}

// LanguageByName resolves a language by name or alias, case-insensitively.
func (l *Library) LanguageByName(name string) (Language, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}

	for _, lang := range l.languages {
		if matchesLanguage(lang, name) {
			return lang, true
		}
	}

	return nil, false
}

// LanguageByExtension resolves the language of a source file from its extension.
func (l *Library) LanguageByExtension(path string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, false
	}

	for _, lang := range l.languages {
		for _, e := range lang.Extensions() {
			if e == ext {
				return lang, true
			}
		}
	}

	return nil, false
}

// Signatures returns the signatures applicable to the language filter.
// An empty filter returns every signature. The filter may be a language name,
// an alias or any name listed in a signature's languages. An unknown filter
// yields an empty set.
func (l *Library) Signatures(filter string) []*Signature {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		out := make([]*Signature, len(l.signatures))
		copy(out, l.signatures)

		return out
	}

	canonical := ""
	if lang, ok := l.LanguageByName(filter); ok {
		canonical = lang.Name()
	}

	out := make([]*Signature, 0, 16)

	for _, sig := range l.signatures {
		if sig.AppliesTo(filter) || (canonical != "" && sig.AppliesTo(canonical)) {
			out = append(out, sig)
		}
	}

	return out
}

// Detect guesses the language of the text.
func (l *Library) Detect(text string) Detection {
	return l.detector.Detect(text)
}

// Scores returns the per-language fingerprint scores for the text.
func (l *Library) Scores(text string) map[string]int {
	return l.detector.Scores(text)
}

// Match finds every non-overlapping occurrence of each applicable signature
// and returns the records ordered by severity, most severe first, then by
// descending confidence. Records with equal rank keep catalogue order.
func (l *Library) Match(text, language string, opts MatchOptions) []MatchRecord {
	records := make([]MatchRecord, 0, 8)

	if strings.TrimSpace(text) == "" {
		return records
	}

	sigs := l.Signatures(language)
	if len(sigs) == 0 {
		return records
	}

	idx := newLineIndex(text)
	locators := l.locationPatterns(language)

	for _, sig := range sigs {
		for _, loc := range sig.Pattern.FindAllStringSubmatchIndex(text, -1) {
			records = append(records, l.buildRecord(sig, text, loc, idx, locators, opts))
		}
	}

	SortMatches(records)

	return records
}

// SortMatches orders records by severity rank, then by descending confidence.
func SortMatches(records []MatchRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		ri, rj := records[i].Severity.Rank(), records[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}

		return records[i].Confidence > records[j].Confidence
	})
}

// Locate returns the first file/line reference in the text. The preferred
// language's patterns are tried first, then the remaining languages in name
// order. The boolean is false when no language pattern matched.
func (l *Library) Locate(text, preferred string) (Location, bool) {
	for _, lang := range l.locateOrder(preferred) {
		for _, lp := range lang.Locations() {
			if loc, ok := findLocation(lp, text); ok {
				loc.Language = lang.Name()

				return loc, true
			}
		}
	}

	return Location{}, false
}

func (l *Library) locateOrder(preferred string) []Language {
	first, ok := l.LanguageByName(preferred)
	if !ok {
		return l.languages
	}

	order := make([]Language, 0, len(l.languages))
	order = append(order, first)

	for _, lang := range l.languages {
		if lang.Name() != first.Name() {
			order = append(order, lang)
		}
	}

	return order
}

// locationPatterns returns the location patterns used to annotate records.
func (l *Library) locationPatterns(language string) []LocationPattern {
	if lang, ok := l.LanguageByName(language); ok {
		return lang.Locations()
	}

	out := make([]LocationPattern, 0, 8)
	for _, lang := range l.languages {
		out = append(out, lang.Locations()...)
	}

	return out
}

func (l *Library) buildRecord(
	sig *Signature,
	text string,
	loc []int,
	idx lineIndex,
	locators []LocationPattern,
	opts MatchOptions,
) MatchRecord {
	record := MatchRecord{
		Signature:  sig,
		Name:       sig.Name,
		Category:   sig.Category,
		Severity:   sig.Severity,
		Matched:    text[loc[0]:loc[1]],
		Confidence: 1.0,
		Line:       idx.lineOf(loc[0]),
	}

	for g := 2; g+1 < len(loc); g += 2 {
		if loc[g] >= 0 {
			record.Groups = append(record.Groups, text[loc[g]:loc[g+1]])
		}
	}

	if opts.Windows {
		record.Window = idx.window(record.Line, windowRadius)
	}

	// Nearest reference at or above the match line.
	for line := record.Line; line >= 1 && line >= record.Line-windowRadius; line-- {
		content := idx.line(line)

		for _, lp := range locators {
			if found, ok := findLocation(lp, content); ok {
				record.FilePath = found.Path
				record.FileLine = found.Line

				return record
			}
		}
	}

	return record
}

func findLocation(lp LocationPattern, text string) (Location, bool) {
	var m []string

	if lp.LastWins {
		all := lp.Pattern.FindAllStringSubmatch(text, -1)
		if len(all) > 0 {
			m = all[len(all)-1]
		}
	} else {
		m = lp.Pattern.FindStringSubmatch(text)
	}

	return locationFromGroups(m)
}

func locationFromGroups(m []string) (Location, bool) {
	if len(m) < 3 || m[1] == "" {
		return Location{}, false
	}

	line, err := strconv.Atoi(m[2])
	if err != nil || line <= 0 {
		return Location{}, false
	}

	return Location{Path: m[1], Line: line}, true
}

// FindLocation applies a single pattern whose first two groups capture path
// and line.
func FindLocation(re *regexp.Regexp, text string) (Location, bool) {
	return locationFromGroups(re.FindStringSubmatch(text))
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex struct {
	text   string
	starts []int
}

func newLineIndex(text string) lineIndex {
	starts := []int{0}

	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}

	return lineIndex{text: text, starts: starts}
}

func (idx lineIndex) lineOf(offset int) int {
	return sort.Search(len(idx.starts), func(i int) bool {
		return idx.starts[i] > offset
	})
}

func (idx lineIndex) line(n int) string {
	if n < 1 || n > len(idx.starts) {
		return ""
	}

	start := idx.starts[n-1]
	end := len(idx.text)

	if n < len(idx.starts) {
		end = idx.starts[n] - 1
	}

	return strings.TrimRight(idx.text[start:end], "\r")
}

func (idx lineIndex) window(center, radius int) string {
	first := max(1, center-radius)
	last := min(len(idx.starts), center+radius)

	lines := make([]string, 0, last-first+1)
	for n := first; n <= last; n++ {
		lines = append(lines, idx.line(n))
	}

	return strings.Join(lines, "\n")
}
