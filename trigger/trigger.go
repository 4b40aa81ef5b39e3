package trigger

import (
	"time"

	"go.uber.org/zap"

	"github.com/ZaguanLabs/cliptl"
	"github.com/ZaguanLabs/cliptl/config"
)

// Submitter accepts filtered requests. *cliptl.Pipeline implements it.
type Submitter interface {
	Submit(req cliptl.TranslationRequest, anchor cliptl.Point) uint64
}

// Settings provides the configuration current at the time of a trigger.
type Settings interface {
	Snapshot() config.Config
}

// Trigger feeds both trigger sources through one Filter into a Submitter.
type Trigger struct {
	filter    *Filter
	submitter Submitter
	settings  Settings
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a Trigger. A nil filter gets a fresh one.
func New(submitter Submitter, settings Settings, filter *Filter, logger *zap.Logger) *Trigger {
	if filter == nil {
		filter = NewFilter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trigger{
		filter:    filter,
		submitter: submitter,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
	}
}

// Manual handles an explicit translate action on text shown near pos.
// It returns the request id, or 0 with the reason the text was dropped.
func (t *Trigger) Manual(text string, pos cliptl.Point) (uint64, Reason) {
	return t.fire(text, pos, Manual, t.settings.Snapshot())
}

// ClipboardChanged handles new clipboard content. It does nothing while
// automatic translation is switched off.
func (t *Trigger) ClipboardChanged(text string, pos cliptl.Point) (uint64, Reason) {
	cfg := t.settings.Snapshot()
	if !cfg.AutoTranslate {
		return 0, Disabled
	}
	return t.fire(text, pos, Passive, cfg)
}

// Filter returns the filter shared by both sources.
func (t *Trigger) Filter() *Filter {
	return t.filter
}

func (t *Trigger) fire(text string, pos cliptl.Point, source Source, cfg config.Config) (uint64, Reason) {
	candidate, reason := t.filter.Check(text, source)
	if reason != Accepted {
		t.logger.Debug("candidate skipped",
			zap.Stringer("source", source),
			zap.Stringer("reason", reason),
			zap.Int("length", len(candidate)))
		return 0, reason
	}

	id := t.submitter.Submit(cliptl.TranslationRequest{
		Text:        candidate,
		SourceLang:  cfg.SourceLang,
		TargetLang:  cfg.TargetLang,
		SubmittedAt: t.now(),
	}, pos)
	t.logger.Debug("candidate submitted",
		zap.Stringer("source", source),
		zap.Uint64("request", id))
	return id, Accepted
}
