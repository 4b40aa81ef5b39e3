package trigger

import (
	"context"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/cliptl"
)

// DefaultWatchInterval is how often the clipboard is polled.
const DefaultWatchInterval = 2 * time.Second

// ClipboardReader reads the current clipboard text.
type ClipboardReader interface {
	ReadAll() (string, error)
}

// ClipboardWriter replaces the clipboard text.
type ClipboardWriter interface {
	WriteAll(text string) error
}

// SystemClipboard is the desktop clipboard.
type SystemClipboard struct{}

func (SystemClipboard) ReadAll() (string, error) { return clipboard.ReadAll() }

func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Available reports whether a clipboard utility is present on this system.
func (SystemClipboard) Available() bool { return !clipboard.Unsupported }

// CursorLocator reports where the pointer is.
type CursorLocator interface {
	CursorPosition() cliptl.Point
}

// CursorFunc adapts a function to CursorLocator.
type CursorFunc func() cliptl.Point

func (f CursorFunc) CursorPosition() cliptl.Point { return f() }

// ChangeHandler receives new clipboard content. *Trigger implements it.
type ChangeHandler interface {
	ClipboardChanged(text string, pos cliptl.Point) (uint64, Reason)
}

// ChangeFunc adapts a function to ChangeHandler.
type ChangeFunc func(text string, pos cliptl.Point) (uint64, Reason)

func (f ChangeFunc) ClipboardChanged(text string, pos cliptl.Point) (uint64, Reason) {
	return f(text, pos)
}

// Watcher polls the clipboard and reports changes. The content present when
// it starts is taken as already seen.
type Watcher struct {
	handler  ChangeHandler
	reader   ClipboardReader
	locator  CursorLocator
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	last    string
	primed  bool
	failing bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithReader replaces the system clipboard.
func WithReader(r ClipboardReader) WatcherOption {
	return func(w *Watcher) {
		w.reader = r
	}
}

// WithLocator sets where popups for passive triggers are anchored.
func WithLocator(l CursorLocator) WatcherOption {
	return func(w *Watcher) {
		w.locator = l
	}
}

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithWatcherLogger sets the logger.
func WithWatcherLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a watcher reporting to handler.
func NewWatcher(handler ChangeHandler, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		handler:  handler,
		reader:   SystemClipboard{},
		locator:  CursorFunc(func() cliptl.Point { return cliptl.Point{} }),
		interval: DefaultWatchInterval,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.poll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.poll()
		}
	}
}

// Ignore marks text as already seen, so finding it on the clipboard does not
// trigger a translation.
func (w *Watcher) Ignore(text string) {
	w.mu.Lock()
	w.last = text
	w.primed = true
	w.mu.Unlock()
}

// Writer wraps inner so that everything written through it is ignored.
func (w *Watcher) Writer(inner ClipboardWriter) ClipboardWriter {
	return ignoringWriter{w: w, inner: inner}
}

type ignoringWriter struct {
	w     *Watcher
	inner ClipboardWriter
}

// WriteAll holds the watcher lock so a poll cannot observe the clipboard
// between the write and the memo update.
func (iw ignoringWriter) WriteAll(text string) error {
	iw.w.mu.Lock()
	defer iw.w.mu.Unlock()

	if err := iw.inner.WriteAll(text); err != nil {
		return err
	}
	iw.w.last = text
	iw.w.primed = true
	return nil
}

func (w *Watcher) poll() {
	w.mu.Lock()
	text, err := w.reader.ReadAll()
	if err != nil {
		if !w.failing {
			w.logger.Warn("reading clipboard failed", zap.Error(err))
		}
		w.failing = true
		w.mu.Unlock()
		return
	}
	w.failing = false

	if !w.primed {
		w.primed = true
		w.last = text
		w.mu.Unlock()
		return
	}
	if text == w.last {
		w.mu.Unlock()
		return
	}
	w.last = text
	w.mu.Unlock()

	id, reason := w.handler.ClipboardChanged(text, w.locator.CursorPosition())
	w.logger.Debug("clipboard changed", zap.Uint64("request", id), zap.Stringer("reason", reason))
}
