package popup

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/cliptl"
)

// Sink renders the popup. Implementations are called from the controller in
// state order and must return quickly.
type Sink interface {
	ShowLoading(pos cliptl.Point)
	ShowResult(source, translation string, pos cliptl.Point)
	ShowError(message string, pos cliptl.Point)
	Hide()
}

// TerminalSink prints popup transitions to a terminal.
type TerminalSink struct {
	mu          sync.Mutex
	w           io.Writer
	showSource  bool
	dim         *color.Color
	translation *color.Color
	failure     *color.Color
}

// NewTerminalSink writes to w. Colours follow fatih/color's terminal detection.
func NewTerminalSink(w io.Writer) *TerminalSink {
	return &TerminalSink{
		w:           w,
		showSource:  true,
		dim:         color.New(color.Faint),
		translation: color.New(color.FgGreen, color.Bold),
		failure:     color.New(color.FgRed),
	}
}

// DisableColor turns colour output off for this sink.
func (s *TerminalSink) DisableColor() *TerminalSink {
	s.dim.DisableColor()
	s.translation.DisableColor()
	s.failure.DisableColor()
	return s
}

// HideSource prints translations without echoing the source text.
func (s *TerminalSink) HideSource() *TerminalSink {
	s.showSource = false
	return s
}

func (s *TerminalSink) ShowLoading(cliptl.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dim.Fprintln(s.w, "… translating")
}

func (s *TerminalSink) ShowResult(source, translation string, _ cliptl.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.showSource {
		s.dim.Fprintln(s.w, source)
	}
	s.translation.Fprintln(s.w, translation)
}

func (s *TerminalSink) ShowError(message string, _ cliptl.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure.Fprintln(s.w, "✗ "+message)
}

func (s *TerminalSink) Hide() {}

// NotifySink shows results as desktop notifications.
type NotifySink struct {
	title  string
	icon   string
	notify func(title, message, icon string) error
	logger *zap.Logger
}

// NewNotifySink creates a sink posting through beeep.
func NewNotifySink(logger *zap.Logger) *NotifySink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotifySink{
		title:  cliptl.Name,
		notify: beeep.Notify,
		logger: logger,
	}
}

// ShowLoading does nothing: a notification per request would be noise.
func (s *NotifySink) ShowLoading(cliptl.Point) {}

func (s *NotifySink) ShowResult(_, translation string, _ cliptl.Point) {
	s.post(s.title, translation)
}

func (s *NotifySink) ShowError(message string, _ cliptl.Point) {
	s.post(fmt.Sprintf("%s: error", s.title), message)
}

// Hide does nothing; notifications expire on their own.
func (s *NotifySink) Hide() {}

func (s *NotifySink) post(title, message string) {
	if err := s.notify(title, message, s.icon); err != nil {
		s.logger.Warn("desktop notification failed", zap.Error(err))
	}
}

// MultiSink fans every call out to each sink in order.
type MultiSink []Sink

func (m MultiSink) ShowLoading(pos cliptl.Point) {
	for _, s := range m {
		s.ShowLoading(pos)
	}
}

func (m MultiSink) ShowResult(source, translation string, pos cliptl.Point) {
	for _, s := range m {
		s.ShowResult(source, translation, pos)
	}
}

func (m MultiSink) ShowError(message string, pos cliptl.Point) {
	for _, s := range m {
		s.ShowError(message, pos)
	}
}

func (m MultiSink) Hide() {
	for _, s := range m {
		s.Hide()
	}
}
