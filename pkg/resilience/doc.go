// Package resilience provides the single execution primitive used for every
// outbound provider call: retry with bounded exponential backoff, a
// per-attempt timeout enforced through context cancellation, and a closed
// error taxonomy deciding which failures are worth another attempt.
//
// The invoker and the classifier are deliberately one package. The point of
// centralizing classification is that matching rules (status codes,
// rate-limit markers, Retry-After headers) exist in exactly one place and are
// independently testable, instead of being duplicated at each call site.
//
// Typical usage:
//
//	token, err := resilience.Do(ctx, func(ctx context.Context) (*oauth2.Token, error) {
//	    return conf.Exchange(ctx, code, opts...)
//	}, resilience.WithTimeout(30*time.Second))
//
// Failures that can never succeed on retry are tagged inside the operation:
//
//	if exchangeRejected {
//	    return nil, resilience.Permanent(err) // auth codes are single-use
//	}
//
// Errors returned from Do are always *resilience.Error; callers branch on
// the Class for user-facing messaging and unwrap for provider detail.
package resilience
