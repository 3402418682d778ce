package oauthstate

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the durable Store backend. Atomic consumption relies on
// DELETE ... RETURNING: concurrent callbacks carrying the same state race on
// the row delete, and Postgres guarantees only one of them sees the row.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Store backed by the given connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Create inserts a fresh row.
func (p *Postgres) Create(ctx context.Context, s *State) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO oauth_states (id, owner_id, provider, state_token, code_verifier, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.OwnerID, s.Provider, s.StateToken, s.CodeVerifier, s.CreatedAt, s.ExpiresAt,
	)
	return err
}

// Consume deletes the matching row and returns its verifier in one
// statement. The second concurrent consumer finds no row and gets
// ErrStateNotFound; an expired row is removed but reported as expired.
func (p *Postgres) Consume(ctx context.Context, ownerID, provider, stateToken string) (string, error) {
	var (
		verifier  string
		expiresAt time.Time
	)
	err := p.pool.QueryRow(ctx, `
		DELETE FROM oauth_states
		WHERE owner_id = $1 AND provider = $2 AND state_token = $3
		RETURNING code_verifier, expires_at`,
		ownerID, provider, stateToken,
	).Scan(&verifier, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrStateNotFound
	}
	if err != nil {
		return "", err
	}

	if time.Now().UTC().After(expiresAt) {
		return "", ErrStateExpired
	}
	return verifier, nil
}

// SweepExpired garbage-collects abandoned flows.
func (p *Postgres) SweepExpired(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM oauth_states WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Store = (*Postgres)(nil)
