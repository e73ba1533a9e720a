package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/careercompass/compass/internal/model"
)

// Policy controls how often and how long Do waits between attempts.
// MaxRetries is the number of additional attempts after the first failure.
// BaseDelay is the delay before the first retry, doubled on each subsequent retry.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Do calls fn, retrying transient failures with exponential backoff and
// jitter.
func Do[T any](ctx context.Context, p Policy, logger *slog.Logger, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := fn(ctx)
	if err == nil {
		return v, nil
	}

	if !isRetryable(err) {
		return zero, err
	}

	var lastErr error = err
	for attempt := 1; attempt <= p.MaxRetries; attempt++ {
		delay := p.backoffDelay(attempt, lastErr)

		logger.Warn("retrying after transient error",
			"attempt", attempt,
			"max_retries", p.MaxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		v, err = fn(ctx)
		if err == nil {
			return v, nil
		}

		if !isRetryable(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, lastErr
}

// Lister is a decorator that retries transient failures before delegating to
// the wrapped SavedItemLister. It is used for cache hydration only; saves and
// removals are never retried.
type Lister struct {
	inner  model.SavedItemLister
	policy Policy
	logger *slog.Logger
}

var _ model.SavedItemLister = (*Lister)(nil)

// NewLister wraps a SavedItemLister with retry logic.
func NewLister(inner model.SavedItemLister, p Policy, logger *slog.Logger) *Lister {
	return &Lister{inner: inner, policy: p, logger: logger}
}

// GetSavedItems fetches the category, retrying on transient errors.
func (l *Lister) GetSavedItems(ctx context.Context, category model.Category) ([]model.SavedItem, error) {
	return Do(ctx, l.policy, l.logger.With("category", category), func(ctx context.Context) ([]model.SavedItem, error) {
		return l.inner.GetSavedItems(ctx, category)
	})
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// If the error includes a Retry-After duration (HTTP 429), that takes precedence.
func (p Policy) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	// Exponential: baseDelay * 2^(attempt-1)
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	// Apply ±30% jitter
	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)

	return delay
}

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation: never retry.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// The server answered; asking again gets the same answer.
	var rej *model.ServerRejection
	if errors.As(err, &rej) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		// 429 Too Many Requests: retryable.
		if httpErr.StatusCode == 429 {
			return true
		}
		// 5xx: retryable.
		if httpErr.StatusCode >= 500 {
			return true
		}
		// 4xx (not 429): not retryable.
		return false
	}

	// Non-HTTP errors (network, DNS, etc.): retryable.
	return true
}
