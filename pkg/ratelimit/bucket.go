package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Bucket is a per-key token bucket built on golang.org/x/time/rate.
// Unlike the window limiters it smooths bursts instead of counting them,
// which suits pacing outbound Google API calls below provider quotas.
type Bucket struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// NewBucket creates a limiter sustaining rps requests per second per key
// with the given burst headroom.
func NewBucket(rps float64, burst int) *Bucket {
	return &Bucket{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (b *Bucket) limiter(key string) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	l, ok := b.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(b.rps), b.burst)
		b.limiters[key] = l
	}
	return l
}

// Allow reports whether one call for key fits right now, without blocking.
func (b *Bucket) Allow(_ context.Context, key string) (Result, error) {
	l := b.limiter(key)
	if !l.Allow() {
		// Peek at the wait without consuming a token slot.
		r := l.Reserve()
		delay := r.Delay()
		r.Cancel()
		return Result{Allowed: false, RetryAfter: delay}, nil
	}
	return Result{Allowed: true}, nil
}

// Wait blocks until one call for key fits or the context ends.
func (b *Bucket) Wait(ctx context.Context, key string) error {
	return b.limiter(key).Wait(ctx)
}

var _ Limiter = (*Bucket)(nil)
