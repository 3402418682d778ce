// Package ratelimit bounds actions per owner per time window.
//
// Three implementations share the Limiter interface:
//
//   - FixedWindow: in-process counter windows; unit-testable without any
//     external store, used per-endpoint in the HTTP layer.
//   - Redis: the same fixed-window semantics shared across instances.
//   - Bucket: per-key token bucket (golang.org/x/time/rate) for pacing
//     outbound provider calls under published quotas.
package ratelimit
