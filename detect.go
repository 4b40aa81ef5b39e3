package cliptl

import (
	"strings"
	"unicode"
)

// stopWords are the most frequent function words per Latin-script language.
// Order matters: it breaks score ties.
var stopWords = []struct {
	lang  string
	words []string
}{
	{"en", []string{"the", "and", "of", "to", "a", "in", "for", "is", "on", "that", "it", "with", "was", "are", "this"}},
	{"es", []string{"de", "la", "que", "el", "en", "y", "a", "es", "se", "no", "los", "las", "por", "un", "una"}},
	{"fr", []string{"de", "le", "et", "à", "un", "il", "être", "en", "la", "les", "des", "est", "une", "que", "pas"}},
	{"de", []string{"der", "die", "und", "in", "den", "von", "zu", "das", "mit", "sich", "ist", "nicht", "ein", "eine", "auf"}},
	{"it", []string{"il", "di", "che", "è", "e", "la", "per", "un", "non", "sono", "gli", "della", "con", "una", "del"}},
	{"pt", []string{"o", "de", "que", "e", "do", "da", "em", "um", "para", "é", "com", "não", "uma", "os", "se"}},
	{"nl", []string{"de", "het", "een", "en", "van", "ik", "te", "dat", "die", "in", "is", "niet", "op", "met", "zijn"}},
}

// detectThreshold is the minimum share of stop words needed to accept a language.
const detectThreshold = 0.1

// Detector guesses the language of short texts without network access.
type Detector struct {
	langs     []string
	words     map[string]map[string]struct{}
	threshold float64
}

// NewDetector creates a Detector with the built-in stop-word lists.
func NewDetector() *Detector {
	d := &Detector{
		words:     make(map[string]map[string]struct{}, len(stopWords)),
		threshold: detectThreshold,
	}
	for _, sw := range stopWords {
		set := make(map[string]struct{}, len(sw.words))
		for _, w := range sw.words {
			set[w] = struct{}{}
		}
		d.langs = append(d.langs, sw.lang)
		d.words[sw.lang] = set
	}
	return d
}

// Detect returns a base language code for text, or AutoLang when it cannot decide.
//
// Scripts are checked first: kana means Japanese even when kanji are mixed in,
// ideographs alone mean Chinese. Latin-script text is scored against stop-word
// lists.
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return AutoLang
	}
	if lang := detectScript(text); lang != "" {
		return lang
	}
	return d.detectLexical(text)
}

// DetectOrDefault is Detect with AutoLang replaced by def.
func (d *Detector) DetectOrDefault(text, def string) string {
	if lang := d.Detect(text); lang != AutoLang {
		return lang
	}
	return def
}

func detectScript(text string) string {
	var kana, han, hangul, arabic, cyrillic bool
	for _, r := range text {
		switch {
		case r >= 0x3040 && r <= 0x30FF:
			kana = true
		case r >= 0x4E00 && r <= 0x9FFF, r >= 0x3400 && r <= 0x4DBF:
			han = true
		case r >= 0xAC00 && r <= 0xD7AF, r >= 0x1100 && r <= 0x11FF:
			hangul = true
		case r >= 0x0600 && r <= 0x06FF:
			arabic = true
		case r >= 0x0400 && r <= 0x04FF:
			cyrillic = true
		}
	}

	switch {
	case kana:
		return "ja"
	case han:
		return "zh"
	case hangul:
		return "ko"
	case arabic:
		return "ar"
	case cyrillic:
		return "ru"
	}
	return ""
}

func (d *Detector) detectLexical(text string) string {
	var tokens []string
	for _, f := range strings.Fields(strings.ToLower(text)) {
		tok := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return AutoLang
	}

	best, bestScore := AutoLang, 0.0
	for _, lang := range d.langs {
		hits := 0
		for _, tok := range tokens {
			if _, ok := d.words[lang][tok]; ok {
				hits++
			}
		}
		score := float64(hits) / float64(len(tokens))
		if score > bestScore {
			best, bestScore = lang, score
		}
	}

	if bestScore > d.threshold {
		return best
	}
	return AutoLang
}
