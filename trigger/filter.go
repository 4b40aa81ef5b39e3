// Package trigger turns user actions and clipboard changes into translation
// requests, dropping candidates that are not worth translating.
package trigger

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Source tells manual requests apart from passive clipboard changes.
type Source int

const (
	// Manual is an explicit "translate now" action.
	Manual Source = iota
	// Passive is a clipboard change noticed by the watcher.
	Passive
)

func (s Source) String() string {
	if s == Manual {
		return "manual"
	}
	return "passive"
}

// Reason explains the outcome of Filter.Check.
type Reason int

const (
	Accepted Reason = iota
	Empty
	Unchanged
	TooShort
	TooLong
	Digits
	URL
	Path
	SingleWord
	Disabled
)

var reasonNames = [...]string{
	Accepted:   "accepted",
	Empty:      "empty",
	Unchanged:  "unchanged",
	TooShort:   "too_short",
	TooLong:    "too_long",
	Digits:     "digits",
	URL:        "url",
	Path:       "path",
	SingleWord: "single_word",
	Disabled:   "disabled",
}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

// Filter limits.
const (
	MinLength        = 2
	MaxPassiveLength = 500
	MaxSingleWordLen = 15
)

var urlPrefixes = []string{"http://", "https://", "www.", "ftp://"}

// Filter decides whether a candidate is sent for translation. It remembers
// the last non-empty candidate it checked, accepted or not, so the same text
// is never processed twice in a row.
type Filter struct {
	mu       sync.Mutex
	lastSeen string
}

// NewFilter creates a filter with an empty memo.
func NewFilter() *Filter {
	return &Filter{}
}

// Check returns the trimmed candidate and why it was accepted or rejected.
func (f *Filter) Check(text string, source Source) (string, Reason) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", Empty
	}

	f.mu.Lock()
	if text == f.lastSeen {
		f.mu.Unlock()
		return text, Unchanged
	}
	f.lastSeen = text
	f.mu.Unlock()

	return text, classify(text, source)
}

// Reset forgets the last seen candidate.
func (f *Filter) Reset() {
	f.mu.Lock()
	f.lastSeen = ""
	f.mu.Unlock()
}

func classify(text string, source Source) Reason {
	n := utf8.RuneCountInString(text)
	switch {
	case n < MinLength:
		return TooShort
	case source == Passive && n > MaxPassiveLength:
		return TooLong
	case allDigits(text):
		return Digits
	case looksLikeURL(text):
		return URL
	case looksLikePath(text):
		return Path
	case source == Passive && n < MaxSingleWordLen && singleASCIIWord(text):
		return SingleWord
	}
	return Accepted
}

func allDigits(text string) bool {
	for _, r := range text {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func looksLikeURL(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range urlPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// driveLetter matches a drive letter, not preceded by another letter, followed
// by a colon and a separator, as in "C:\" or "d:/".
var driveLetter = regexp.MustCompile(`(?:^|[^A-Za-z])[A-Za-z]:[\\/]`)

// looksLikePath matches absolute Unix paths, UNC shares and drive-letter
// paths, including quoted ones and Windows paths embedded in text.
func looksLikePath(text string) bool {
	unquoted := strings.Trim(text, `"'`)
	if strings.HasPrefix(unquoted, "/") || strings.HasPrefix(unquoted, `\\`) {
		return true
	}
	if len(unquoted) >= 3 && isASCIILetter(rune(unquoted[0])) && unquoted[1] == ':' && (unquoted[2] == '\\' || unquoted[2] == '/') {
		return true
	}
	return strings.Contains(unquoted, `\`) && driveLetter.MatchString(unquoted)
}

func singleASCIIWord(text string) bool {
	for _, r := range text {
		if !isASCIILetter(r) {
			return false
		}
	}
	return true
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
