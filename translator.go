package cliptl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Translator runs a single request through detection, the translation memory
// and the active provider.
type Translator struct {
	targetLang    string
	defaultSource string
	providers     ProviderSource
	memory        TranslationMemory
	detector      *Detector
	logger        *zap.Logger
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithMemory sets the translation memory consulted before every provider call.
func WithMemory(memory TranslationMemory) TranslatorOption {
	return func(t *Translator) {
		t.memory = memory
	}
}

// WithDetector replaces the built-in language detector.
func WithDetector(d *Detector) TranslatorOption {
	return func(t *Translator) {
		t.detector = d
	}
}

// WithDefaultSourceLang sets the language assumed when detection cannot decide.
func WithDefaultSourceLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.defaultSource = NormalizeLang(lang)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTranslator creates a Translator that targets targetLang unless a request
// names its own target.
func NewTranslator(targetLang string, providers ProviderSource, opts ...TranslatorOption) *Translator {
	t := &Translator{
		targetLang:    NormalizeLang(targetLang),
		defaultSource: DefaultSourceLang,
		providers:     providers,
		detector:      NewDetector(),
		logger:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Translate translates req.Text. The returned Result is non-nil even on
// failure and records the stages reached.
func (t *Translator) Translate(ctx context.Context, req TranslationRequest) (res *Result, err error) {
	start := time.Now()
	res = &Result{Source: req.Text}
	res.enter(StageIdle)

	defer func() {
		if r := recover(); r != nil {
			err = &TranslationError{Kind: KindTransient, Message: "translation aborted", Cause: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			res.enter(StageFailed)
		}
		res.Elapsed = time.Since(start)
	}()

	if strings.TrimSpace(req.Text) == "" {
		return res, &TranslationError{Kind: KindEmptyInput, Message: "nothing to translate"}
	}

	target := NormalizeLang(req.TargetLang)
	if target == "" {
		target = t.targetLang
	}
	if target == "" || target == AutoLang {
		return res, &TranslationError{Kind: KindUnsupported, Message: "no target language configured"}
	}
	res.TargetLang = target

	source := NormalizeLang(req.SourceLang)
	if source == "" || source == AutoLang {
		res.enter(StageDetecting)
		source = t.detect(req.Text)
	}
	res.SourceLang = source

	// Skip if source == target
	if SameLanguage(source, target) {
		res.Translation = req.Text
		res.Bypassed = true
		res.enter(StageDone)
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return res, classifyContextErr("", err)
	}

	// Memory before network
	res.enter(StageCacheLookup)
	if t.memory != nil {
		if cached, ok := t.memory.Get(ctx, req.Text, source, target); ok {
			res.Translation = cached
			res.Cached = true
			res.enter(StageCacheHit)
			res.enter(StageDone)
			t.logger.Debug("translation memory hit",
				zap.String("source_lang", source),
				zap.String("target_lang", target))
			return res, nil
		}
	}
	res.enter(StageCacheMiss)

	provider, err := t.providers.Active()
	if err != nil {
		return res, err
	}
	res.ProviderID = provider.ID()
	if !provider.Capabilities().Has(CapTranslate) {
		return res, &ProviderError{Provider: provider.ID(), Kind: KindUnsupported, Message: "provider cannot translate"}
	}

	res.enter(StageCalling)
	out, err := t.call(ctx, provider, TranslateRequest{Text: req.Text, SourceLang: source, TargetLang: target})
	if err != nil {
		t.logger.Warn("provider call failed",
			zap.String("provider", provider.ID()),
			zap.Stringer("kind", KindOf(err)),
			zap.Error(err))
		return res, err
	}
	if strings.TrimSpace(out) == "" {
		return res, &ProviderError{Provider: provider.ID(), Kind: KindEmptyResult, Message: "empty translation"}
	}
	res.Translation = out

	// Last write wins. The write outlives a superseded or expired request.
	if t.memory != nil {
		res.enter(StageCacheWrite)
		t.memory.Put(context.WithoutCancel(ctx), req.Text, out, source, target, provider.ID())
	}
	res.enter(StageDone)

	return res, nil
}

// detect resolves an automatic source language. Failures fall back to the
// default language and never end the request.
func (t *Translator) detect(text string) (lang string) {
	defer func() {
		if r := recover(); r != nil {
			derr := &DetectionError{Message: "detector panicked", Cause: fmt.Errorf("%v", r)}
			t.logger.Warn("language detection failed", zap.Error(derr))
			lang = t.defaultSource
		}
	}()

	if t.detector == nil {
		return t.defaultSource
	}
	lang = t.detector.Detect(text)
	if lang == AutoLang || lang == "" {
		t.logger.Debug("language detection inconclusive", zap.String("fallback", t.defaultSource))
		return t.defaultSource
	}
	return lang
}

// call invokes the provider, converting panics and raw errors into ProviderErrors.
func (t *Translator) call(ctx context.Context, p Provider, req TranslateRequest) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ProviderError{Provider: p.ID(), Kind: KindTransient, Message: "provider panicked", Cause: fmt.Errorf("%v", r)}
		}
	}()

	out, err = p.Translate(ctx, req)
	if err == nil {
		return out, nil
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) && providerErr.Kind != KindUnknown {
		if providerErr.Provider == "" {
			// The provider may share the error value between calls
			named := *providerErr
			named.Provider = p.ID()
			return "", &named
		}
		return "", err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", classifyContextErr(p.ID(), ctxErr)
	}
	return "", &ProviderError{Provider: p.ID(), Kind: KindTransient, Message: "translation request failed", Cause: err}
}

func classifyContextErr(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Provider: provider, Kind: KindTransient, Message: "request timed out", Cause: err}
	}
	return &TranslationError{Kind: KindCanceled, Message: "request superseded", Cause: err}
}

// BatchItem is the outcome of one text in TranslateBatch.
type BatchItem struct {
	Result *Result
	Err    error
}

// TranslateBatch translates texts one after another, reusing the memory for
// each. Progress, if non-nil, is called after every item. It stops early only
// when ctx is done; per-item failures are reported in the returned items.
func (t *Translator) TranslateBatch(ctx context.Context, texts []string, sourceLang, targetLang string, progress func(done, total int)) ([]BatchItem, error) {
	items := make([]BatchItem, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return items, err
		}
		res, err := t.Translate(ctx, TranslationRequest{
			Text:        text,
			SourceLang:  sourceLang,
			TargetLang:  targetLang,
			SubmittedAt: time.Now(),
		})
		items = append(items, BatchItem{Result: res, Err: err})
		if progress != nil {
			progress(i+1, len(texts))
		}
	}
	return items, nil
}

// TargetLang returns the default target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// DefaultSourceLang returns the language assumed when detection cannot decide.
func (t *Translator) DefaultSourceLang() string {
	return t.defaultSource
}

// DetectLanguage runs the local detector on text, substituting the default language.
func (t *Translator) DetectLanguage(text string) string {
	return t.detect(text)
}
