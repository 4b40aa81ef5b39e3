// Package popup drives the transient translation popup: which of the four
// states it is in, where it appears and when it hides itself.
package popup

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ZaguanLabs/cliptl"
)

// State is the visible state of the popup.
type State int

const (
	Hidden State = iota
	Loading
	ShowingResult
	ShowingError
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Loading:
		return "loading"
	case ShowingResult:
		return "showing_result"
	case ShowingError:
		return "showing_error"
	default:
		return "unknown"
	}
}

// Default auto-hide durations.
const (
	DefaultSuccessTimeout = 15 * time.Second
	DefaultErrorTimeout   = 5 * time.Second
	DefaultLeaveGrace     = 3 * time.Second
)

// ClipboardWriter receives successful translations.
type ClipboardWriter interface {
	WriteAll(text string) error
}

type timer interface {
	Stop() bool
}

// Controller is the popup state machine. It implements cliptl.Presenter so a
// Pipeline can drive it directly; pointer events come from the display host.
// Sink calls are made with the controller lock held and must not call back
// into the controller.
type Controller struct {
	sink      Sink
	clipboard ClipboardWriter
	logger    *zap.Logger

	successTimeout time.Duration
	errorTimeout   time.Duration
	leaveGrace     time.Duration
	size           cliptl.Size
	screen         cliptl.Rect

	afterFunc func(time.Duration, func()) timer

	mu      sync.Mutex
	state   State
	latest  uint64 // id of the newest request
	armGen  uint64 // bumped whenever the hide timer is armed or cancelled
	timer   timer
	pos     cliptl.Point
	hovered bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithClipboard copies every shown translation to w.
func WithClipboard(w ClipboardWriter) Option {
	return func(c *Controller) {
		c.clipboard = w
	}
}

// WithTimeouts sets the auto-hide durations. Zero values keep the defaults.
func WithTimeouts(success, failure, grace time.Duration) Option {
	return func(c *Controller) {
		if success > 0 {
			c.successTimeout = success
		}
		if failure > 0 {
			c.errorTimeout = failure
		}
		if grace > 0 {
			c.leaveGrace = grace
		}
	}
}

// WithScreen sets the screen area used for placement.
func WithScreen(screen cliptl.Rect) Option {
	return func(c *Controller) {
		c.screen = screen
	}
}

// WithSize sets the popup size used for placement.
func WithSize(size cliptl.Size) Option {
	return func(c *Controller) {
		c.size = size
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a hidden popup rendering through sink.
func NewController(sink Sink, opts ...Option) *Controller {
	c := &Controller{
		sink:           sink,
		logger:         zap.NewNop(),
		successTimeout: DefaultSuccessTimeout,
		errorTimeout:   DefaultErrorTimeout,
		leaveGrace:     DefaultLeaveGrace,
		size:           DefaultSize,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Begin shows the loading state near anchor for a new request and returns
// its id. Any pending hide timer is cancelled and older requests become stale.
func (c *Controller) Begin(anchor cliptl.Point) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest++
	c.stopTimer()
	c.state = Loading
	c.hovered = false
	c.pos = Place(anchor, c.size, c.screen)
	c.sink.ShowLoading(c.pos)
	return c.latest
}

// Deliver shows the outcome of request id. It returns false, showing nothing,
// when id is not the latest request or the popup was closed meanwhile.
func (c *Controller) Deliver(id uint64, res *cliptl.Result, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id != c.latest || c.state != Loading {
		return false
	}

	if err == nil && res == nil {
		err = &cliptl.TranslationError{Kind: cliptl.KindEmptyResult, Message: "no result"}
	}
	if err != nil {
		c.state = ShowingError
		c.sink.ShowError(cliptl.UserMessage(err), c.pos)
		c.arm(c.errorTimeout)
		return true
	}

	c.state = ShowingResult
	if c.clipboard != nil {
		if werr := c.clipboard.WriteAll(res.Translation); werr != nil {
			c.logger.Warn("copying translation to clipboard failed", zap.Error(werr))
		}
	}
	c.sink.ShowResult(res.Source, res.Translation, c.pos)
	c.arm(c.successTimeout)
	return true
}

// PointerEnter keeps a shown popup open while the pointer is over it.
func (c *Controller) PointerEnter() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.showing() {
		return
	}
	c.hovered = true
	c.stopTimer()
}

// PointerLeave re-arms the hide timer with the leave grace period.
func (c *Controller) PointerLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.showing() || !c.hovered {
		return
	}
	c.hovered = false
	c.arm(c.leaveGrace)
}

// Close hides the popup. A request still loading keeps running but its
// result is discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimer()
	c.hide()
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Position returns where the popup is, or was last, shown.
func (c *Controller) Position() cliptl.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

func (c *Controller) showing() bool {
	return c.state == ShowingResult || c.state == ShowingError
}

func (c *Controller) arm(d time.Duration) {
	c.stopTimer()
	gen := c.armGen
	c.timer = c.afterFunc(d, func() { c.expire(gen) })
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.armGen++
}

// expire hides the popup unless the timer that fired was cancelled or
// replaced after it was armed.
func (c *Controller) expire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.armGen || !c.showing() {
		return
	}
	c.timer = nil
	c.hide()
}

func (c *Controller) hide() {
	if c.state == Hidden {
		return
	}
	c.state = Hidden
	c.hovered = false
	c.sink.Hide()
}

var _ cliptl.Presenter = (*Controller)(nil)
