package trigger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaguanLabs/cliptl"
	"github.com/ZaguanLabs/cliptl/config"
)

type submission struct {
	req    cliptl.TranslationRequest
	anchor cliptl.Point
}

type fakeSubmitter struct {
	mu   sync.Mutex
	got  []submission
	next uint64
}

func (s *fakeSubmitter) Submit(req cliptl.TranslationRequest, anchor cliptl.Point) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.got = append(s.got, submission{req, anchor})
	return s.next
}

func (s *fakeSubmitter) Submissions() []submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]submission(nil), s.got...)
}

func TestTrigger_Manual(t *testing.T) {
	sub := &fakeSubmitter{}
	cfg := config.Default()
	cfg.SourceLang = "en"
	cfg.TargetLang = "ja"
	tr := New(sub, config.NewStore(cfg), nil, nil)

	id, reason := tr.Manual("  hello ", cliptl.Point{X: 5, Y: 6})
	require.Equal(t, Accepted, reason)
	assert.Equal(t, uint64(1), id)

	got := sub.Submissions()
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].req.Text)
	assert.Equal(t, "en", got[0].req.SourceLang)
	assert.Equal(t, "ja", got[0].req.TargetLang)
	assert.False(t, got[0].req.SubmittedAt.IsZero())
	assert.Equal(t, cliptl.Point{X: 5, Y: 6}, got[0].anchor)
}

func TestTrigger_PassiveRespectsAutoTranslate(t *testing.T) {
	sub := &fakeSubmitter{}
	store := config.NewStore(config.Default())
	tr := New(sub, store, nil, nil)

	_, reason := tr.ClipboardChanged("Good morning everyone", cliptl.Point{})
	assert.Equal(t, Accepted, reason)

	store.SetAutoTranslate(false)
	id, reason := tr.ClipboardChanged("Good evening everyone", cliptl.Point{})
	assert.Equal(t, Disabled, reason)
	assert.Zero(t, id)

	// Manual triggers still work
	_, reason = tr.Manual("Good evening everyone", cliptl.Point{})
	assert.Equal(t, Accepted, reason)

	assert.Len(t, sub.Submissions(), 2)
}

func TestTrigger_RejectedNeverSubmitted(t *testing.T) {
	sub := &fakeSubmitter{}
	tr := New(sub, config.NewStore(config.Default()), nil, nil)

	for _, text := range []string{"", "x", "42", "https://example.com", "/etc/hosts", "word"} {
		_, reason := tr.ClipboardChanged(text, cliptl.Point{})
		assert.NotEqual(t, Accepted, reason, text)
	}
	assert.Empty(t, sub.Submissions())
}

// fakeClipboard serves queued reads.
type fakeClipboard struct {
	mu      sync.Mutex
	text    string
	err     error
	written []string
}

func (c *fakeClipboard) ReadAll() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, c.err
}

func (c *fakeClipboard) WriteAll(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	c.written = append(c.written, text)
	return nil
}

func (c *fakeClipboard) set(text string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text, c.err = text, err
}

type recordingHandler struct {
	mu   sync.Mutex
	seen []string
	pos  []cliptl.Point
}

func (h *recordingHandler) ClipboardChanged(text string, pos cliptl.Point) (uint64, Reason) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, text)
	h.pos = append(h.pos, pos)
	return uint64(len(h.seen)), Accepted
}

func (h *recordingHandler) Seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func TestWatcher_PrimesThenReportsChanges(t *testing.T) {
	clip := &fakeClipboard{text: "already there"}
	h := &recordingHandler{}
	w := NewWatcher(h,
		WithReader(clip),
		WithLocator(CursorFunc(func() cliptl.Point { return cliptl.Point{X: 7, Y: 8} })))

	w.poll()
	assert.Empty(t, h.Seen(), "initial content is not translated")

	w.poll()
	assert.Empty(t, h.Seen())

	clip.set("fresh copy", nil)
	w.poll()
	w.poll()
	assert.Equal(t, []string{"fresh copy"}, h.Seen())
	assert.Equal(t, cliptl.Point{X: 7, Y: 8}, h.pos[0])
}

func TestWatcher_ReadErrors(t *testing.T) {
	clip := &fakeClipboard{}
	h := &recordingHandler{}
	w := NewWatcher(h, WithReader(clip))

	w.poll()
	clip.set("", errors.New("xclip not found"))
	w.poll()
	w.poll()
	assert.Empty(t, h.Seen())

	clip.set("back again", nil)
	w.poll()
	assert.Equal(t, []string{"back again"}, h.Seen())
}

func TestWatcher_IgnoresOwnWrites(t *testing.T) {
	clip := &fakeClipboard{text: "start"}
	h := &recordingHandler{}
	w := NewWatcher(h, WithReader(clip))
	w.poll()

	writer := w.Writer(clip)
	require.NoError(t, writer.WriteAll("Hola"))
	w.poll()

	assert.Empty(t, h.Seen())
	assert.Equal(t, []string{"Hola"}, clip.written)
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	clip := &fakeClipboard{text: "start"}
	h := &recordingHandler{}
	w := NewWatcher(h, WithReader(clip), WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	clip.set("copied while running", nil)
	assert.Eventually(t, func() bool { return len(h.Seen()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcher_DrivesTrigger(t *testing.T) {
	sub := &fakeSubmitter{}
	tr := New(sub, config.NewStore(config.Default()), nil, nil)
	clip := &fakeClipboard{}
	w := NewWatcher(tr, WithReader(clip))

	w.poll()
	clip.set("The quick brown fox", nil)
	w.poll()
	clip.set("fox", nil)
	w.poll()

	got := sub.Submissions()
	require.Len(t, got, 1)
	assert.Equal(t, "The quick brown fox", got[0].req.Text)
}
