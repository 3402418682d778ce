package ratelimit

import (
	"context"
	"sync"
	"time"
)

// FixedWindow is an in-process fixed-window limiter: up to limit actions
// per key per window, counters reset at window boundaries. Windows are
// aligned to the first action, which keeps the implementation trivially
// testable without a database and is accurate enough for abuse bounding.
type FixedWindow struct {
	mu      sync.Mutex
	buckets map[string]*windowBucket
	limit   int
	window  time.Duration
	now     func() time.Time
}

type windowBucket struct {
	start time.Time
	count int
}

// NewFixedWindow creates a limiter allowing limit actions per window.
func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		buckets: make(map[string]*windowBucket),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow records one attempt against key.
func (f *FixedWindow) Allow(_ context.Context, key string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	b, ok := f.buckets[key]
	if !ok || now.Sub(b.start) >= f.window {
		b = &windowBucket{start: now}
		f.buckets[key] = b
	}

	if b.count >= f.limit {
		return Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: b.start.Add(f.window).Sub(now),
		}, nil
	}

	b.count++
	return Result{Allowed: true, Remaining: f.limit - b.count}, nil
}

var _ Limiter = (*FixedWindow)(nil)
