package oauthstate

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL bounds how long an authorization attempt may stay in flight.
// Ten minutes comfortably covers the consent screen round-trip while keeping
// abandoned flows short-lived.
const DefaultTTL = 10 * time.Minute

// State is one in-flight authorization attempt. A row is created when the
// authorization URL is issued and consumed (read-and-deleted) exactly once
// by the callback. Expired rows are inert even before the sweeper removes
// them: Consume treats them as absent apart from the deletion side effect.
type State struct {
	ID           uuid.UUID
	OwnerID      string
	Provider     string
	StateToken   string
	CodeVerifier string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// New builds a state row for the given owner and PKCE material.
func New(ownerID, provider, stateToken, codeVerifier string, ttl time.Duration) *State {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now().UTC()
	return &State{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Provider:     provider,
		StateToken:   stateToken,
		CodeVerifier: codeVerifier,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
}

// Expired reports whether the attempt is past its deadline.
func (s *State) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store persists in-flight authorization state server-side.
//
// Consume is the security-critical operation: it must be atomic with
// respect to concurrent consumption of the same state (a replayed callback
// URL), so that exactly one caller obtains the verifier and every other
// caller observes ErrStateNotFound.
type Store interface {
	// Create inserts a fresh row. Every authorization attempt gets its
	// own row; Create never conflicts.
	Create(ctx context.Context, s *State) error

	// Consume atomically looks up and deletes the row matching all three
	// keys, returning its code verifier.
	// Returns ErrStateNotFound when no row matches (including the loser
	// of a concurrent race), and ErrStateExpired when the row existed but
	// was past its deadline; expired rows are deleted as a side effect so
	// they cannot be resurrected.
	Consume(ctx context.Context, ownerID, provider, stateToken string) (string, error)

	// SweepExpired deletes all rows past their deadline and reports how
	// many were removed. Safe to run concurrently with Consume.
	SweepExpired(ctx context.Context) (int64, error)
}
