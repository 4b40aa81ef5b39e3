package cliptl

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies failures of the translation pipeline.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindDetection is absorbed: the default source language is used instead.
	KindDetection
	// KindCacheUnavailable is absorbed: the memory behaves as a miss.
	KindCacheUnavailable
	// KindTransient covers network failures, timeouts and throttling.
	KindTransient
	// KindAuth covers missing or rejected credentials.
	KindAuth
	// KindUnsupported is a language pair or operation the provider cannot serve.
	KindUnsupported
	// KindEmptyResult is a provider answer with no text in it.
	KindEmptyResult
	// KindEmptyInput is blank text that was never sent anywhere.
	KindEmptyInput
	// KindCanceled is a request superseded by a newer one.
	KindCanceled
)

var kindNames = [...]string{
	KindUnknown:          "unknown",
	KindDetection:        "detection",
	KindCacheUnavailable: "cache_unavailable",
	KindTransient:        "transient",
	KindAuth:             "auth",
	KindUnsupported:      "unsupported",
	KindEmptyResult:      "empty_result",
	KindEmptyInput:       "empty_input",
	KindCanceled:         "canceled",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Fatal reports whether an error of this kind ends the request.
func (k ErrorKind) Fatal() bool {
	return k != KindDetection && k != KindCacheUnavailable
}

// TranslationError is returned by the translator for failures outside a provider.
type TranslationError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates a translation backend failure.
type ProviderError struct {
	Provider  string
	Kind      ErrorKind
	Message   string
	Cause     error
	Retryable bool // set for throttling and 5xx answers
}

func (e *ProviderError) Error() string {
	prefix := "provider error"
	if e.Provider != "" {
		prefix = fmt.Sprintf("provider error (%s)", e.Provider)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a translation memory failure.
type CacheError struct {
	Message   string
	Cause     error
	Retryable bool // the store was busy, not broken
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// DetectionError indicates the language detector failed on some input.
type DetectionError struct {
	Message string
	Cause   error
}

func (e *DetectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("detection error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("detection error: %s", e.Message)
}

func (e *DetectionError) Unwrap() error {
	return e.Cause
}

// KindOf classifies err into the pipeline taxonomy.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) && providerErr.Kind != KindUnknown {
		return providerErr.Kind
	}
	var translationErr *TranslationError
	if errors.As(err, &translationErr) && translationErr.Kind != KindUnknown {
		return translationErr.Kind
	}
	var cacheErr *CacheError
	if errors.As(err, &cacheErr) {
		return KindCacheUnavailable
	}
	var detectionErr *DetectionError
	if errors.As(err, &detectionErr) {
		return KindDetection
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTransient
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}
	return KindUnknown
}

// UserMessage renders err as the short text shown in the popup.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	provider := ""
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		provider = providerErr.Provider
	}

	switch KindOf(err) {
	case KindAuth:
		if provider != "" {
			return fmt.Sprintf("Credentials for %s are missing or invalid", provider)
		}
		return "Translation service credentials are missing or invalid"
	case KindUnsupported:
		if provider != "" {
			return fmt.Sprintf("%s does not support this language pair", provider)
		}
		return "Language pair not supported"
	case KindEmptyResult:
		return "The translation service returned an empty result"
	case KindEmptyInput:
		return "Nothing to translate"
	case KindCanceled:
		return "Translation cancelled"
	case KindTransient:
		if errors.Is(err, context.DeadlineExceeded) {
			return "Translation timed out, try again"
		}
		return "Translation failed: " + err.Error()
	default:
		return "Translation failed: " + err.Error()
	}
}
