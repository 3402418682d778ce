// Package redis connects the shared Redis client used by the state store
// and the distributed rate limiter.
package redis
