package resilience

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// Classify maps a raw failure into the closed taxonomy. Evaluation order
// matters and mirrors how callers must react:
//
//  1. context cancellation / deadline -> ClassTimeout
//  2. explicit Permanent marker       -> ClassPermanent
//  3. HTTP 429 or rate-limit marker   -> ClassRateLimited
//  4. HTTP 402 or payment marker      -> ClassPaymentRequired
//  5. HTTP 401 or unauthorized marker -> ClassUnauthorized
//  6. anything else                   -> ClassRetryable
//
// Failures arrive from heterogeneous sources (oauth2 retrieve errors,
// googleapi errors, transport errors, provider JSON bodies flattened into
// messages), so classification is status- and message-based rather than
// type-based. All matching rules live here and nowhere else.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Err: err, Class: ClassTimeout}
	}

	var perm *permanentError
	if errors.As(err, &perm) {
		return &Error{Err: perm.err, Class: ClassPermanent, Status: statusOf(perm.err)}
	}

	status := statusOf(err)
	msg := strings.ToLower(err.Error())

	switch {
	case status == http.StatusTooManyRequests || containsAny(msg, "rate limit", "rate_limit", "too many requests", "quota exceeded", "429"):
		return &Error{Err: err, Class: ClassRateLimited, Status: status, RetryAfter: retryAfterOf(err)}
	case status == http.StatusPaymentRequired || containsAny(msg, "payment required", "402"):
		return &Error{Err: err, Class: ClassPaymentRequired, Status: status}
	case status == http.StatusUnauthorized || containsAny(msg, "unauthorized", "invalid_token", "401"):
		return &Error{Err: err, Class: ClassUnauthorized, Status: status}
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return &Error{Err: err, Class: ClassTimeout, Status: status}
	default:
		return &Error{Err: err, Class: ClassRetryable, Status: status}
	}
}

// statusOf extracts an HTTP status code from the error chain when present.
func statusOf(err error) int {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return retrieveErr.Response.StatusCode
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		return coded.StatusCode()
	}

	return 0
}

// retryAfterOf pulls a Retry-After hint out of HTTP-shaped errors.
func retryAfterOf(err error) time.Duration {
	var header http.Header

	var retrieveErr *oauth2.RetrieveError
	var apiErr *googleapi.Error
	switch {
	case errors.As(err, &retrieveErr) && retrieveErr.Response != nil:
		header = retrieveErr.Response.Header
	case errors.As(err, &apiErr):
		header = apiErr.Header
	default:
		return 0
	}

	seconds, convErr := strconv.Atoi(header.Get("Retry-After"))
	if convErr != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
