package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ZaguanLabs/cliptl"
)

// Memory is the translation memory used by the translator. It hashes the
// request, delegates to a Backend and turns backend failures into misses so a
// broken store never blocks a translation.
type Memory struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time
}

// Option is a functional option for configuring a Memory.
type Option func(*Memory)

// WithLogger sets the logger used for absorbed backend failures.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Memory) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a Memory over backend.
func New(backend Backend, opts ...Option) *Memory {
	m := &Memory{
		backend: backend,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Disabled returns a Memory that always misses. It stands in for a store that
// could not be opened.
func Disabled(opts ...Option) *Memory {
	return New(nil, opts...)
}

// Available reports whether a backend is attached.
func (m *Memory) Available() bool {
	return m.backend != nil
}

// Backend returns the attached backend, or nil.
func (m *Memory) Backend() Backend {
	return m.backend
}

// Get returns the stored translation and counts the use.
func (m *Memory) Get(ctx context.Context, text, sourceLang, targetLang string) (string, bool) {
	if m.backend == nil {
		return "", false
	}

	val, err := m.backend.Lookup(ctx, cliptl.HashRecord(text, sourceLang, targetLang))
	if errors.Is(err, ErrMiss) {
		return "", false
	}
	if err != nil {
		m.logger.Warn("translation memory lookup failed", zap.Error(&cliptl.CacheError{Message: "lookup", Cause: err}))
		return "", false
	}
	return val, true
}

// Put stores a translation, replacing any previous one for the same key.
// Failures are logged and otherwise ignored.
func (m *Memory) Put(ctx context.Context, text, translation, sourceLang, targetLang, providerID string) {
	if m.backend == nil {
		return
	}

	rec := cliptl.TranslationRecord{
		Hash:       cliptl.HashRecord(text, sourceLang, targetLang),
		SourceText: text,
		TargetText: translation,
		SourceLang: sourceLang,
		TargetLang: targetLang,
		ProviderID: providerID,
		CreatedAt:  m.now().UTC(),
		UsedCount:  1,
	}
	if err := m.backend.Upsert(ctx, rec); err != nil {
		m.logger.Warn("translation memory write failed", zap.Error(&cliptl.CacheError{Message: "upsert", Cause: err}))
	}
}

// Record returns the full stored record, used count included.
func (m *Memory) Record(ctx context.Context, text, sourceLang, targetLang string) (*cliptl.TranslationRecord, bool) {
	if m.backend == nil {
		return nil, false
	}

	rec, err := m.backend.Record(ctx, cliptl.HashRecord(text, sourceLang, targetLang))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			m.logger.Warn("translation memory read failed", zap.Error(err))
		}
		return nil, false
	}
	return rec, true
}

// Restore writes rec as-is, keeping its used count and creation time.
// The hash is recomputed from the record's fields.
func (m *Memory) Restore(ctx context.Context, rec cliptl.TranslationRecord) error {
	if m.backend == nil {
		return ErrUnavailable
	}
	rec.Hash = cliptl.HashRecord(rec.SourceText, rec.SourceLang, rec.TargetLang)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now().UTC()
	}
	if rec.UsedCount < 1 {
		rec.UsedCount = 1
	}
	return m.backend.Upsert(ctx, rec)
}

// EnabledLanguages returns the enabled target languages sorted by display
// name, falling back to the built-in list when the store has none enabled.
func (m *Memory) EnabledLanguages(ctx context.Context) []cliptl.LanguageEntry {
	var entries []cliptl.LanguageEntry
	if ls, ok := m.backend.(LanguageStore); ok {
		var err error
		entries, err = ls.Languages(ctx)
		if err != nil {
			m.logger.Warn("language table unavailable, using defaults", zap.Error(err))
			entries = nil
		}
	}

	enabled := onlyEnabled(entries)
	if len(enabled) == 0 {
		enabled = onlyEnabled(cliptl.DefaultLanguages())
	}
	cliptl.SortLanguages(enabled)
	return enabled
}

func onlyEnabled(entries []cliptl.LanguageEntry) []cliptl.LanguageEntry {
	enabled := make([]cliptl.LanguageEntry, 0, len(entries))
	for _, e := range entries {
		if e.Enabled {
			enabled = append(enabled, e)
		}
	}
	return enabled
}

// Recent returns the newest records for history browsing.
func (m *Memory) Recent(ctx context.Context, limit int) ([]cliptl.TranslationRecord, error) {
	if m.backend == nil {
		return nil, ErrUnavailable
	}
	recs, err := m.backend.Recent(ctx, limit)
	if err != nil {
		return nil, &cliptl.CacheError{Message: "listing history", Cause: err}
	}
	return recs, nil
}

// Search returns records whose source or target contains query.
func (m *Memory) Search(ctx context.Context, query string, limit int) ([]cliptl.TranslationRecord, error) {
	if m.backend == nil {
		return nil, ErrUnavailable
	}
	recs, err := m.backend.Search(ctx, query, limit)
	if err != nil {
		return nil, &cliptl.CacheError{Message: "searching history", Cause: err}
	}
	return recs, nil
}

// Clear deletes the whole history.
func (m *Memory) Clear(ctx context.Context) error {
	if m.backend == nil {
		return ErrUnavailable
	}
	if err := m.backend.Clear(ctx); err != nil {
		return &cliptl.CacheError{Message: "clearing history", Cause: err}
	}
	return nil
}

// Close closes the backend.
func (m *Memory) Close() error {
	if m.backend == nil {
		return nil
	}
	return m.backend.Close()
}

var _ cliptl.TranslationMemory = (*Memory)(nil)
