package ratelimit

import (
	"context"
	"time"
)

// Result reports the outcome of a limiter check.
type Result struct {
	// Allowed is false when the action must be rejected.
	Allowed bool
	// Remaining is the number of actions left in the current window.
	Remaining int
	// RetryAfter hints when the caller may try again. Zero when Allowed.
	RetryAfter time.Duration
}

// Limiter bounds actions per key per time window. Keys are opaque;
// callers typically use the owner id, optionally prefixed per endpoint.
type Limiter interface {
	// Allow records one attempt against key and reports whether it fits
	// inside the configured budget.
	Allow(ctx context.Context, key string) (Result, error)
}
