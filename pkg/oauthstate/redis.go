package oauthstate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "oauthstate:"

// expiredGrace keeps an expired row around long enough for Consume to
// distinguish "expired" from "never existed". Past the grace window Redis
// evicts the key and callers see ErrStateNotFound, which the flow treats
// the same way (restart authorization).
const expiredGrace = time.Hour

// Redis is a Store backed by Redis. GETDEL gives Consume its atomicity:
// the read and delete are a single command, so concurrent callbacks racing
// on the same state key leave exactly one winner.
//
// Rows carry a Redis TTL of expiry+grace, so abandoned flows are evicted by
// Redis itself and SweepExpired has nothing left to do.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis creates a Store backed by the given client.
// The client should come from pkg/redis.Open.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

type redisState struct {
	CodeVerifier string    `json:"code_verifier"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func redisKey(ownerID, provider, stateToken string) string {
	return redisKeyPrefix + ownerID + ":" + provider + ":" + stateToken
}

// Create inserts a fresh row with TTL-based eviction.
func (r *Redis) Create(ctx context.Context, s *State) error {
	data, err := json.Marshal(redisState{
		CodeVerifier: s.CodeVerifier,
		ExpiresAt:    s.ExpiresAt,
	})
	if err != nil {
		return err
	}

	ttl := time.Until(s.ExpiresAt) + expiredGrace
	return r.client.Set(ctx, redisKey(s.OwnerID, s.Provider, s.StateToken), data, ttl).Err()
}

// Consume atomically fetches and deletes the row via GETDEL.
func (r *Redis) Consume(ctx context.Context, ownerID, provider, stateToken string) (string, error) {
	data, err := r.client.GetDel(ctx, redisKey(ownerID, provider, stateToken)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", ErrStateNotFound
	}
	if err != nil {
		return "", err
	}

	var s redisState
	if err := json.Unmarshal(data, &s); err != nil {
		return "", err
	}

	if time.Now().UTC().After(s.ExpiresAt) {
		return "", ErrStateExpired
	}
	return s.CodeVerifier, nil
}

// SweepExpired is a no-op for Redis: keys carry their own TTL.
func (r *Redis) SweepExpired(_ context.Context) (int64, error) {
	return 0, nil
}

var _ Store = (*Redis)(nil)
