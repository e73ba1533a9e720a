package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/careercompass/compass/internal/api"
)

// Limiter enforces a minimum delay between requests with the same key.
// Keys are backend endpoint paths.
type Limiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time
	minDelay time.Duration
}

// NewLimiter creates a limiter that enforces minDelay between consecutive
// requests with the same key. A zero minDelay never blocks.
func NewLimiter(minDelay time.Duration) *Limiter {
	return &Limiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request for key.
// Returns an error if the context is cancelled while waiting.
func (r *Limiter) Wait(ctx context.Context, key string) error {
	r.mu.Lock()
	last, ok := r.lastCall[key]
	now := time.Now()

	if !ok || now.Sub(last) >= r.minDelay {
		r.lastCall[key] = now
		r.mu.Unlock()
		return nil
	}

	remaining := r.minDelay - now.Sub(last)
	// Reserve the slot so concurrent callers queue behind this one.
	r.lastCall[key] = last.Add(r.minDelay)
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", key, ctx.Err())
	case <-time.After(remaining):
	}
	return nil
}

// Searcher is the AI-backed search half of the API client.
type Searcher interface {
	FindCertificates(ctx context.Context, q api.CertificateQuery) (string, error)
	SuggestCourses(ctx context.Context, q api.CourseQuery) (string, error)
	FindCompanies(ctx context.Context, q api.CompanyQuery) (string, error)
}

var (
	_ Searcher = (*api.Client)(nil)
	_ Searcher = (*LimitedSearcher)(nil)
)

// LimitedSearcher is a decorator that waits on the limiter before delegating
// each search to the wrapped Searcher. Each search kind has its own key.
type LimitedSearcher struct {
	inner   Searcher
	limiter *Limiter
}

// NewLimitedSearcher wraps a Searcher with per-endpoint rate limiting.
func NewLimitedSearcher(inner Searcher, limiter *Limiter) *LimitedSearcher {
	return &LimitedSearcher{inner: inner, limiter: limiter}
}

func (s *LimitedSearcher) FindCertificates(ctx context.Context, q api.CertificateQuery) (string, error) {
	if err := s.limiter.Wait(ctx, "find-certificates"); err != nil {
		return "", err
	}
	return s.inner.FindCertificates(ctx, q)
}

func (s *LimitedSearcher) SuggestCourses(ctx context.Context, q api.CourseQuery) (string, error) {
	if err := s.limiter.Wait(ctx, "suggest-courses"); err != nil {
		return "", err
	}
	return s.inner.SuggestCourses(ctx, q)
}

func (s *LimitedSearcher) FindCompanies(ctx context.Context, q api.CompanyQuery) (string, error) {
	if err := s.limiter.Wait(ctx, "find-companies"); err != nil {
		return "", err
	}
	return s.inner.FindCompanies(ctx, q)
}
