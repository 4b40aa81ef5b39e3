package cliptl

import (
	"context"
	"errors"
	"time"
)

// Backoff configures exponential retry for operations that fail while a
// resource is briefly busy (opening a locked store, reconnecting a cache).
// Provider calls are never retried automatically: the user re-triggers.
type Backoff struct {
	Attempts  int           // retries after the first try
	BaseDelay time.Duration // delay before the first retry
	MaxDelay  time.Duration // cap for the doubled delay
}

// DefaultBackoff returns a short backoff suited to local resources.
func DefaultBackoff() Backoff {
	return Backoff{
		Attempts:  3,
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  2 * time.Second,
	}
}

// delay returns the wait before retry number attempt (0-based).
func (b Backoff) delay(attempt int) time.Duration {
	d := b.BaseDelay * time.Duration(1<<attempt)
	if b.MaxDelay > 0 && d > b.MaxDelay {
		d = b.MaxDelay
	}
	return d
}

// Retry runs fn until it succeeds, returns a non-retryable error, the
// attempts are exhausted or ctx is done.
func Retry[T any](ctx context.Context, b Backoff, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= b.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}

		// No sleep after the last attempt
		if attempt < b.Attempts {
			timer := time.NewTimer(b.delay(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return zero, lastErr
}

// IsRetryable reports whether err marks a temporary condition.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are final
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var cacheErr *CacheError
	if errors.As(err, &cacheErr) {
		return cacheErr.Retryable
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	return false
}
