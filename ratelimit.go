package cliptl

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures a RateLimitedProvider.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute (default: 60)
	BurstSize         int // Maximum burst size (default: 1)
}

// NewRateLimiter creates a token bucket limiter from cfg.
func NewRateLimiter(cfg RateLimitConfig) *rate.Limiter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst)
}

// RateLimitedProvider spaces out calls to a provider so free endpoints do not
// start throttling a user who copies quickly.
type RateLimitedProvider struct {
	provider Provider
	limiter  *rate.Limiter
}

// NewRateLimitedProvider wraps provider with a limiter built from cfg.
func NewRateLimitedProvider(provider Provider, cfg RateLimitConfig) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider: provider,
		limiter:  NewRateLimiter(cfg),
	}
}

// ID returns the wrapped provider's id.
func (p *RateLimitedProvider) ID() string {
	return p.provider.ID()
}

// Capabilities returns the wrapped provider's capabilities.
func (p *RateLimitedProvider) Capabilities() Capability {
	return p.provider.Capabilities()
}

// Translate waits for a token, then calls the wrapped provider.
func (p *RateLimitedProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if err := p.wait(ctx); err != nil {
		return "", err
	}
	return p.provider.Translate(ctx, req)
}

// DetectLanguage waits for a token, then asks the wrapped provider.
func (p *RateLimitedProvider) DetectLanguage(ctx context.Context, text string) (string, error) {
	detector, ok := p.provider.(LanguageDetector)
	if !ok || !p.provider.Capabilities().Has(CapDetectLanguage) {
		return "", &ProviderError{
			Provider: p.provider.ID(),
			Kind:     KindUnsupported,
			Message:  "language detection not supported",
		}
	}
	if err := p.wait(ctx); err != nil {
		return "", err
	}
	return detector.DetectLanguage(ctx, text)
}

func (p *RateLimitedProvider) wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return &ProviderError{
			Provider: p.provider.ID(),
			Kind:     KindTransient,
			Message:  "rate limit wait cancelled",
			Cause:    err,
		}
	}
	return nil
}

// Unwrap returns the wrapped provider.
func (p *RateLimitedProvider) Unwrap() Provider {
	return p.provider
}

// Limiter returns the underlying rate limiter for inspection.
func (p *RateLimitedProvider) Limiter() *rate.Limiter {
	return p.limiter
}
