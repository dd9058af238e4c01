// Package RateLimit bounds how many contact submissions a single client can
// make inside a fixed window.
package RateLimit

import (
	"context"
	"fmt"
	"time"
)

// Counter is a keyed fixed-window counter. Increment returns the number of
// hits recorded for key in the current window, including this one.
type Counter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
	// Sweep drops windows that have ended and reports how many were removed.
	Sweep(ctx context.Context) (int64, error)
}

// Limiter allows at most Max hits per key per Window.
type Limiter struct {
	Counter Counter
	Max     int
	Window  time.Duration
}

// NewLimiter creates a Limiter over the given counter
func NewLimiter(counter Counter, max int, window time.Duration) *Limiter {
	return &Limiter{Counter: counter, Max: max, Window: window}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int, error) {
	count, err := l.Counter.Increment(ctx, key, l.Window)
	if err != nil {
		return false, 0, fmt.Errorf("incrementing rate counter: %w", err)
	}
	return count <= l.Max, count, nil
}
