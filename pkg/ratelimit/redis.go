package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// Redis is a fixed-window limiter shared across service instances.
// INCR plus a window-length expiry set on the first hit makes the counter
// and its reset atomic enough for abuse bounding; clock skew between
// instances only shifts window edges, never loses counts.
type Redis struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
}

// NewRedis creates a distributed limiter allowing limit actions per window.
func NewRedis(client redis.UniversalClient, limit int, window time.Duration) *Redis {
	return &Redis{client: client, limit: limit, window: window}
}

// Allow records one attempt against key.
func (r *Redis) Allow(ctx context.Context, key string) (Result, error) {
	k := redisKeyPrefix + key

	count, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return Result{}, err
	}
	if count == 1 {
		if err := r.client.PExpire(ctx, k, r.window).Err(); err != nil {
			return Result{}, err
		}
	}

	if count > int64(r.limit) {
		ttl, err := r.client.PTTL(ctx, k).Result()
		if err != nil || ttl < 0 {
			ttl = r.window
		}
		return Result{Allowed: false, Remaining: 0, RetryAfter: ttl}, nil
	}

	return Result{Allowed: true, Remaining: r.limit - int(count)}, nil
}

var _ Limiter = (*Redis)(nil)
