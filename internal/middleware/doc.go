// Package middleware holds the HTTP middleware chain: request ids,
// request logging, panic recovery, verified bearer auth, and per-owner
// rate limiting.
package middleware
