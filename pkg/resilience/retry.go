package resilience

import (
	"context"
	"time"
)

// Default policy values. All are overridable per call site.
const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = time.Second
	DefaultMaxDelay     = 10 * time.Second
	DefaultTimeout      = 90 * time.Second
)

// Operation is a fallible call executed under the invoker. The context
// carries the per-attempt deadline; operations must honor cancellation,
// otherwise the invoker only abandons them, it cannot force-kill them.
type Operation[T any] func(ctx context.Context) (T, error)

// Option overrides retry policy for a single Do call.
type Option func(*policy)

type policy struct {
	onRetry      func(attempt int, err *Error)
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	timeout      time.Duration
}

func defaultPolicy() policy {
	return policy{
		maxAttempts:  DefaultMaxAttempts,
		initialDelay: DefaultInitialDelay,
		maxDelay:     DefaultMaxDelay,
		timeout:      DefaultTimeout,
	}
}

// WithMaxAttempts sets the total attempt budget (including the first).
func WithMaxAttempts(n int) Option {
	return func(p *policy) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithBackoff sets the initial and maximum delay between attempts.
func WithBackoff(initial, maxDelay time.Duration) Option {
	return func(p *policy) {
		if initial > 0 {
			p.initialDelay = initial
		}
		if maxDelay > 0 {
			p.maxDelay = maxDelay
		}
	}
}

// WithTimeout sets the per-attempt deadline.
func WithTimeout(d time.Duration) Option {
	return func(p *policy) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithOnRetry installs an observer invoked before each backoff sleep
// with the 1-based attempt index that just failed and its classified error.
func WithOnRetry(fn func(attempt int, err *Error)) Option {
	return func(p *policy) {
		p.onRetry = fn
	}
}

// Do executes op with bounded exponential backoff and a per-attempt timeout.
//
// Each attempt runs under its own deadline; when the deadline fires, the
// failure is reclassified as ClassTimeout and — attempts permitting — a new
// attempt starts with a fresh timer. Non-retryable classes (rate limited,
// payment required, unauthorized, permanent) are re-raised immediately
// regardless of remaining attempts. The returned error is always a
// classified *Error wrapping the original failure.
//
// Do holds no cross-call state; the only side effects are timers and sleeps
// on the calling goroutine. Callers needing a hard aggregate ceiling beyond
// maxAttempts x (timeout + maxDelay) must enforce it via the parent context.
func Do[T any](ctx context.Context, op Operation[T], opts ...Option) (T, error) {
	p := defaultPolicy()
	for _, opt := range opts {
		opt(&p)
	}

	var zero T
	for attempt := 1; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
		v, err := op(attemptCtx)
		timedOut := attemptCtx.Err() != nil && ctx.Err() == nil
		cancel()

		if err == nil {
			return v, nil
		}

		cerr := Classify(err)
		if timedOut {
			// The per-attempt deadline fired; whatever the operation
			// reported, the real failure is the abandoned attempt.
			cerr = &Error{Err: err, Class: ClassTimeout, Status: cerr.Status}
		}

		// Parent context gone: no further attempts make sense.
		if ctx.Err() != nil {
			return zero, cerr
		}

		if !cerr.Class.CanRetry() || attempt >= p.maxAttempts {
			return zero, cerr
		}

		if p.onRetry != nil {
			p.onRetry(attempt, cerr)
		}

		select {
		case <-ctx.Done():
			return zero, cerr
		case <-time.After(Backoff(p.initialDelay, p.maxDelay, attempt)):
		}
	}
}

// Backoff returns the delay after the given 1-based failed attempt:
// min(initial * 2^(attempt-1), maxDelay).
func Backoff(initial, maxDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := initial << (attempt - 1)
	// Guard against overflow from large attempt counts.
	if d <= 0 || d > maxDelay {
		return maxDelay
	}
	return d
}
