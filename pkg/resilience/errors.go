package resilience

import (
	"fmt"
	"time"
)

// Class is the closed failure taxonomy produced by Classify and consumed
// by Do to decide between retrying and re-raising.
type Class int

const (
	// ClassRetryable covers transient failures worth another attempt:
	// network errors, 5xx responses, anything not matched below.
	ClassRetryable Class = iota

	// ClassTimeout marks an attempt abandoned by the per-call deadline.
	// Retryable: the next attempt starts with a fresh timer.
	ClassTimeout

	// ClassRateLimited marks 429-flavored failures. Never retried here;
	// hammering a throttling provider only deepens the penalty, so the
	// caller must surface it to the user instead.
	ClassRateLimited

	// ClassPaymentRequired marks 402-flavored failures (billing issue).
	ClassPaymentRequired

	// ClassUnauthorized marks 401-flavored failures. The caller may
	// refresh credentials once outside the invoker, never inside it.
	ClassUnauthorized

	// ClassPermanent marks failures explicitly tagged with Permanent():
	// semantically single-shot operations such as authorization-code
	// exchange, where a retry can never succeed.
	ClassPermanent
)

// String returns the class name for logging.
func (c Class) String() string {
	switch c {
	case ClassTimeout:
		return "timeout"
	case ClassRateLimited:
		return "rate_limited"
	case ClassPaymentRequired:
		return "payment_required"
	case ClassUnauthorized:
		return "unauthorized"
	case ClassPermanent:
		return "permanent"
	default:
		return "retryable"
	}
}

// CanRetry reports whether the invoker may run another attempt
// after a failure of this class.
func (c Class) CanRetry() bool {
	return c == ClassRetryable || c == ClassTimeout
}

// Error is a classified failure. It wraps the original error so callers
// can still unwrap provider-specific types, while carrying the class,
// the HTTP status (when one was observed), and any Retry-After hint.
type Error struct {
	Err        error
	Class      Class
	Status     int
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("resilience: %s (status %d): %v", e.Class, e.Status, e.Err)
	}
	return fmt.Sprintf("resilience: %s: %v", e.Class, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// permanentError tags an error as never-retryable regardless of shape.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as terminal for the invoker. Use it inside wrapped
// operations whose failure can never be fixed by retrying, e.g. exchanging
// a single-use authorization code.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
