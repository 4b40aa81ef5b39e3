package cliptl

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testBackoff() Backoff {
	return Backoff{
		Attempts:  3,
		BaseDelay: 10 * time.Millisecond,
		MaxDelay:  100 * time.Millisecond,
	}
}

func TestRetry_Success(t *testing.T) {
	callCount := 0
	result, err := Retry(context.Background(), testBackoff(), func(context.Context) (string, error) {
		callCount++
		return "success", nil
	})

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result != "success" {
		t.Errorf("Expected 'success', got %q", result)
	}
	if callCount != 1 {
		t.Errorf("Expected 1 call, got %d", callCount)
	}
}

func TestRetry_BusyStore(t *testing.T) {
	callCount := 0
	result, err := Retry(context.Background(), testBackoff(), func(context.Context) (int, error) {
		callCount++
		if callCount < 3 {
			return 0, &CacheError{Message: "database is locked", Retryable: true}
		}
		return 42, nil
	})

	if err != nil {
		t.Fatalf("Expected no error after retries, got: %v", err)
	}
	if result != 42 {
		t.Errorf("Expected 42, got %d", result)
	}
	if callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestRetry_NonRetryableError(t *testing.T) {
	callCount := 0
	_, err := Retry(context.Background(), testBackoff(), func(context.Context) (string, error) {
		callCount++
		return "", &CacheError{Message: "file is not a database"}
	})

	if err == nil {
		t.Fatal("Expected error for non-retryable error")
	}
	if callCount != 1 {
		t.Errorf("Expected 1 call (no retry), got %d", callCount)
	}
}

func TestRetry_Exhausted(t *testing.T) {
	callCount := 0
	_, err := Retry(context.Background(), testBackoff(), func(context.Context) (string, error) {
		callCount++
		return "", &CacheError{Message: "busy", Retryable: true}
	})

	if err == nil {
		t.Fatal("Expected error after max retries")
	}
	if callCount != 4 {
		t.Errorf("Expected 4 calls (1 + 3 retries), got %d", callCount)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	callCount := 0
	b := Backoff{Attempts: 10, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := Retry(ctx, b, func(context.Context) (string, error) {
		callCount++
		return "", &CacheError{Message: "busy", Retryable: true}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
	if callCount > 2 {
		t.Errorf("Expected at most 2 calls before cancel, got %d", callCount)
	}
}

func TestBackoffDelay(t *testing.T) {
	b := Backoff{BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond}
	for attempt, w := range want {
		if got := b.delay(attempt); got != w {
			t.Errorf("delay(%d) = %v, want %v", attempt, got, w)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"retryable cache error", &CacheError{Retryable: true}, true},
		{"broken cache", &CacheError{}, false},
		{"throttled provider", &ProviderError{Kind: KindTransient, Retryable: true}, true},
		{"auth failure", &ProviderError{Kind: KindAuth}, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"generic error", errors.New("something"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}
