package diagnostic

// Detection is the result of language detection.
type Detection struct {
	// Language is nil when no fingerprint matched.
	Language Language
	// Score is the winning fingerprint occurrence count.
	Score int
	// Tied lists the other languages that reached the same score, sorted by name.
	Tied []string
}

// Found reports whether a language was detected.
func (d Detection) Found() bool {
	return d.Language != nil
}

// Name returns the detected language name or an empty string.
func (d Detection) Name() string {
	if d.Language == nil {
		return ""
	}

	return d.Language.Name()
}

// Detector guesses the source language of error text from fingerprint counts.
type Detector struct {
	languages []Language
}

// NewDetector creates a detector over the given languages. Candidates are
// evaluated in name order so that ties resolve alphabetically regardless of
// the order they were passed in.
func NewDetector(languages []Language) *Detector {
	langs := make([]Language, len(languages))
	copy(langs, languages)
	sortLanguages(langs)

	return &Detector{languages: langs}
}

// Scores returns the fingerprint occurrence count per language name.
// Languages with no occurrences are included with a zero score.
func (d *Detector) Scores(text string) map[string]int {
	scores := make(map[string]int, len(d.languages))

	for _, lang := range d.languages {
		scores[lang.Name()] = score(lang, text)
	}

	return scores
}

// Detect returns the language with the strictly highest non-zero score.
// When several languages share the highest score the alphabetically first
// one wins and the rest are reported in Tied.
func (d *Detector) Detect(text string) Detection {
	var result Detection

	if text == "" {
		return result
	}

	for _, lang := range d.languages {
		s := score(lang, text)

		switch {
		case s == 0:
			continue
		case s > result.Score:
			result = Detection{Language: lang, Score: s}
		case s == result.Score:
			result.Tied = append(result.Tied, lang.Name())
		}
	}

	return result
}

func score(lang Language, text string) int {
	total := 0

	for _, fp := range lang.Fingerprints() {
		total += len(fp.FindAllStringIndex(text, -1))
	}

	return total
}
