package cliptl

import (
	"context"
	"strings"
	"time"
)

const (
	// AutoLang asks the translator to detect the source language.
	AutoLang = "auto"
	// DefaultSourceLang is substituted when detection cannot decide.
	DefaultSourceLang = "en"
)

// Capability is a bitmask of the operations a provider supports.
type Capability uint8

const (
	CapTranslate Capability = 1 << iota
	CapDetectLanguage
	CapListen
	CapDictionary
)

var capabilityNames = []struct {
	flag Capability
	name string
}{
	{CapTranslate, "translate"},
	{CapDetectLanguage, "detect"},
	{CapListen, "listen"},
	{CapDictionary, "dictionary"},
}

// Has reports whether every bit of flag is set.
func (c Capability) Has(flag Capability) bool {
	return c&flag == flag
}

func (c Capability) String() string {
	var parts []string
	for _, cn := range capabilityNames {
		if c.Has(cn.flag) {
			parts = append(parts, cn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Point is a screen position in pixels.
type Point struct {
	X, Y int
}

// Size is a width and height in pixels.
type Size struct {
	Width, Height int
}

// Rect is a screen area.
type Rect struct {
	X, Y, Width, Height int
}

// Right returns the first x coordinate past the rectangle.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the first y coordinate past the rectangle.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// TranslationRecord is one entry of the translation memory.
type TranslationRecord struct {
	Hash       string    `json:"hash"`
	SourceText string    `json:"source_text"`
	TargetText string    `json:"target_text"`
	SourceLang string    `json:"source_lang"`
	TargetLang string    `json:"target_lang"`
	ProviderID string    `json:"provider"`
	CreatedAt  time.Time `json:"created_at"`
	UsedCount  int64     `json:"used_count"`
}

// LanguageEntry describes a language offered as a translation target.
type LanguageEntry struct {
	Code       string `json:"code" db:"code"`
	Name       string `json:"name" db:"name"`
	NativeName string `json:"native_name" db:"native_name"`
	Enabled    bool   `json:"enabled" db:"enabled"`
	RTL        bool   `json:"rtl" db:"rtl"`
}

// TranslationRequest is a unit of work submitted by a trigger.
type TranslationRequest struct {
	Text        string
	SourceLang  string // AutoLang or an explicit code
	TargetLang  string // empty means the translator default
	SubmittedAt time.Time
}

// TranslateRequest contains the parameters of a single provider call.
// Languages are already resolved: SourceLang is never AutoLang.
type TranslateRequest struct {
	Text       string
	SourceLang string
	TargetLang string
}

// Stage is a state of the per-request translation state machine.
type Stage int

const (
	StageIdle Stage = iota
	StageDetecting
	StageCacheLookup
	StageCacheHit
	StageCacheMiss
	StageCalling
	StageCacheWrite
	StageDone
	StageFailed
)

var stageNames = [...]string{
	StageIdle:        "idle",
	StageDetecting:   "detecting",
	StageCacheLookup: "cache_lookup",
	StageCacheHit:    "cache_hit",
	StageCacheMiss:   "cache_miss",
	StageCalling:     "calling",
	StageCacheWrite:  "cache_write",
	StageDone:        "done",
	StageFailed:      "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Result is the outcome of a translation request.
type Result struct {
	Source      string
	Translation string
	SourceLang  string
	TargetLang  string
	ProviderID  string        // empty for memory hits and bypasses
	Cached      bool          // served from the translation memory
	Bypassed    bool          // source and target were the same language
	Path        []Stage       // stages visited, in order
	Elapsed     time.Duration // wall time spent in Translate
}

func (r *Result) enter(s Stage) {
	r.Path = append(r.Path, s)
}

// Provider is the interface for translation backends.
type Provider interface {
	ID() string
	Capabilities() Capability
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// LanguageDetector is implemented by providers advertising CapDetectLanguage.
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, text string) (string, error)
}

// ProviderSource resolves the provider to use for a request.
// It is consulted once per request so configuration changes apply to the next one.
type ProviderSource interface {
	Active() (Provider, error)
}

type staticSource struct {
	p Provider
}

func (s staticSource) Active() (Provider, error) {
	if s.p == nil {
		return nil, &ProviderError{Kind: KindAuth, Message: "no translation provider configured"}
	}
	return s.p, nil
}

// Static returns a ProviderSource that always yields p.
func Static(p Provider) ProviderSource {
	return staticSource{p: p}
}

// TranslationMemory is the cache consulted before and filled after provider calls.
// Implementations absorb their own failures: a broken store behaves as a miss.
type TranslationMemory interface {
	Get(ctx context.Context, text, sourceLang, targetLang string) (string, bool)
	Put(ctx context.Context, text, translation, sourceLang, targetLang, providerID string)
}

// Presenter displays the lifecycle of submitted requests.
// Begin returns the id of the new request; Deliver ignores ids that are no
// longer the latest and reports whether the outcome was shown.
type Presenter interface {
	Begin(anchor Point) uint64
	Deliver(id uint64, res *Result, err error) bool
}
