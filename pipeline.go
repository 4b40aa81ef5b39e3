package cliptl

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultRequestTimeout bounds a single request, provider call included.
const DefaultRequestTimeout = 15 * time.Second

// Pipeline runs at most one current request. Submitting a new request cancels
// the previous one; its late result is discarded by the Presenter.
type Pipeline struct {
	translator *Translator
	presenter  Presenter
	timeout    time.Duration
	logger     *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithPipelineLogger sets the logger.
func WithPipelineLogger(logger *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a Pipeline delivering results of t to presenter.
func NewPipeline(t *Translator, presenter Presenter, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		translator: t,
		presenter:  presenter,
		timeout:    DefaultRequestTimeout,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Submit makes req the current request and starts it in the background.
// anchor is where the popup should appear. It returns the request id, or 0
// after Close.
func (p *Pipeline) Submit(req TranslationRequest, anchor Point) uint64 {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0
	}
	if p.cancel != nil {
		p.cancel()
	}
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = time.Now()
	}

	// Begin under the lock so ids follow submission order
	id := p.presenter.Begin(anchor)
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	p.cancel = cancel
	p.wg.Add(1)
	p.mu.Unlock()

	go p.run(ctx, cancel, id, req)
	return id
}

func (p *Pipeline) run(ctx context.Context, cancel context.CancelFunc, id uint64, req TranslationRequest) {
	defer p.wg.Done()
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("translation request panicked", zap.Uint64("request", id), zap.Any("panic", r))
		}
	}()

	res, err := p.translator.Translate(ctx, req)
	if !p.presenter.Deliver(id, res, err) {
		p.logger.Debug("discarded superseded result", zap.Uint64("request", id))
		return
	}

	if err != nil {
		p.logger.Info("translation failed",
			zap.Uint64("request", id),
			zap.Stringer("kind", KindOf(err)),
			zap.Error(err))
		return
	}
	p.logger.Debug("translation delivered",
		zap.Uint64("request", id),
		zap.Bool("cached", res.Cached),
		zap.Duration("elapsed", res.Elapsed),
		zap.Duration("latency", time.Since(req.SubmittedAt)))
}

// Wait blocks until every started request has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Close cancels the current request, rejects new ones and waits for
// outstanding goroutines.
func (p *Pipeline) Close() {
	p.mu.Lock()
	p.closed = true
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()
	p.wg.Wait()
}
