package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/briefly/pkg/ratelimit"
)

// RateLimit bounds calls per authenticated owner. Must run after Auth;
// unauthenticated requests pass through untouched for Auth to reject.
// The prefix keeps per-endpoint budgets separate in a shared limiter.
func RateLimit(limiter ratelimit.Limiter, prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := OwnerID(r.Context())
			if owner == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := limiter.Allow(r.Context(), prefix+":"+owner)
			if err != nil {
				// A broken limiter backend must not take the API down.
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				seconds := int(math.Ceil(res.RetryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
