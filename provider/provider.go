// Package provider defines the translation backends.
package provider

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ZaguanLabs/cliptl"
)

// Provider is the interface for translation backends.
// This is an alias to the main package interface for convenience.
type Provider = cliptl.Provider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = cliptl.TranslateRequest

// Provider ids.
const (
	IDGoogle = "google"
	IDCloud  = "cloud"
	IDOpenAI = "openai"
	IDMock   = "mock"
)

// googleLanguages are the codes accepted by both Google endpoints, lower case.
var googleLanguages = []string{
	"af", "sq", "ar", "hy", "az", "eu", "be", "bg", "ca",
	"zh-cn", "zh-tw", "hr", "cs", "da", "nl", "en", "et", "fi", "fr",
	"gl", "de", "el", "gu", "ht", "he", "hi", "hu", "is", "id", "ga",
	"it", "ja", "kn", "ko", "la", "lv", "lt", "mk", "ms", "mt", "no",
	"fa", "pl", "pt", "ro", "ru", "sr", "sk", "sl", "es", "sw", "sv",
	"ta", "te", "th", "tr", "uk", "ur", "vi", "cy", "yi",
}

// LanguageSet is a set of provider language codes. A nil set accepts everything.
type LanguageSet map[string]bool

// NewLanguageSet builds a set from codes, ignoring case.
func NewLanguageSet(codes ...string) LanguageSet {
	s := make(LanguageSet, len(codes))
	for _, c := range codes {
		s[strings.ToLower(c)] = true
	}
	return s
}

// Supports reports whether code is in the set.
func (s LanguageSet) Supports(code string) bool {
	if s == nil {
		return true
	}
	return s[strings.ToLower(code)]
}

// Codes returns the set's codes in no particular order.
func (s LanguageSet) Codes() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	return out
}

// googleLang maps a BCP 47 tag to the code Google expects. Chinese needs
// its script variant; everything else uses the base language.
func googleLang(code string) string {
	code = cliptl.NormalizeLang(code)
	if code == "" || code == cliptl.AutoLang {
		return cliptl.AutoLang
	}
	if cliptl.BaseLang(code) == "zh" {
		switch strings.ToLower(code) {
		case "zh-tw", "zh-hk", "zh-mo", "zh-hant", "zh-hant-tw", "zh-hant-hk":
			return "zh-TW"
		}
		return "zh-CN"
	}
	return cliptl.BaseLang(code)
}

// checkPair rejects a language pair the provider cannot serve, before any
// network call.
func checkPair(id string, langs LanguageSet, req TranslateRequest, mapLang func(string) string) error {
	target := mapLang(req.TargetLang)
	if !langs.Supports(target) {
		return &cliptl.ProviderError{
			Provider: id,
			Kind:     cliptl.KindUnsupported,
			Message:  fmt.Sprintf("target language %q not supported", req.TargetLang),
		}
	}
	source := mapLang(req.SourceLang)
	if source != cliptl.AutoLang && !langs.Supports(source) {
		return &cliptl.ProviderError{
			Provider: id,
			Kind:     cliptl.KindUnsupported,
			Message:  fmt.Sprintf("source language %q not supported", req.SourceLang),
		}
	}
	return nil
}

// statusError classifies an HTTP failure status.
func statusError(id string, status int, body string) *cliptl.ProviderError {
	kind := cliptl.KindTransient
	retryable := true
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind, retryable = cliptl.KindAuth, false
	case status == http.StatusBadRequest:
		kind, retryable = cliptl.KindUnsupported, false
	case status == http.StatusTooManyRequests || status >= 500:
		kind = cliptl.KindTransient
	case status >= 400:
		kind, retryable = cliptl.KindUnknown, false
	}
	return &cliptl.ProviderError{
		Provider:  id,
		Kind:      kind,
		Message:   fmt.Sprintf("HTTP %d: %s", status, abbreviate(strings.TrimSpace(body), 200)),
		Retryable: retryable,
	}
}

// transportError wraps a failure to reach the endpoint.
func transportError(id string, err error) *cliptl.ProviderError {
	return &cliptl.ProviderError{
		Provider:  id,
		Kind:      cliptl.KindTransient,
		Message:   "request failed",
		Cause:     err,
		Retryable: true,
	}
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
