package credentials

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the authoritative Store backend.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Store backed by the given connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Get returns the record for (owner, provider).
func (p *Postgres) Get(ctx context.Context, ownerID, provider string) (*Record, error) {
	r := &Record{}
	err := p.pool.QueryRow(ctx, `
		SELECT owner_id, provider, linked, COALESCE(access_token, ''), refresh_token,
		       COALESCE(expires_at, 'epoch'::timestamptz), COALESCE(calendar_id, ''), updated_at
		FROM user_credentials
		WHERE owner_id = $1 AND provider = $2`,
		ownerID, provider,
	).Scan(&r.OwnerID, &r.Provider, &r.Linked, &r.AccessToken, &r.RefreshToken,
		&r.ExpiresAt, &r.CalendarID, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// SaveTokens upserts tokens and marks the record linked. COALESCE keeps any
// stored refresh token when the exchange response omitted one.
func (p *Postgres) SaveTokens(ctx context.Context, ownerID, provider, accessToken string, refreshToken *string, expiresAt time.Time) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO user_credentials (owner_id, provider, linked, access_token, refresh_token, expires_at, updated_at)
		VALUES ($1, $2, TRUE, $3, $4, $5, now())
		ON CONFLICT (owner_id, provider) DO UPDATE SET
			linked        = TRUE,
			access_token  = EXCLUDED.access_token,
			refresh_token = COALESCE(EXCLUDED.refresh_token, user_credentials.refresh_token),
			expires_at    = EXCLUDED.expires_at,
			updated_at    = now()`,
		ownerID, provider, accessToken, refreshToken, expiresAt,
	)
	return err
}

// UpdateAccessToken stores a refreshed token. The expires_at guard makes
// concurrent refreshes last-write-wins without ever regressing expiry.
func (p *Postgres) UpdateAccessToken(ctx context.Context, ownerID, provider, accessToken string, expiresAt time.Time) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE user_credentials
		SET access_token = $3, expires_at = $4, updated_at = now()
		WHERE owner_id = $1 AND provider = $2
		  AND (expires_at IS NULL OR expires_at <= $4)`,
		ownerID, provider, accessToken, expiresAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either a newer refresh already landed (fine) or the record is
		// missing entirely.
		exists, err := p.exists(ctx, ownerID, provider)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}

// SetCalendar persists the chosen calendar id.
func (p *Postgres) SetCalendar(ctx context.Context, ownerID, provider, calendarID string) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE user_credentials
		SET calendar_id = $3, updated_at = now()
		WHERE owner_id = $1 AND provider = $2`,
		ownerID, provider, calendarID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear nulls all credential fields and unlinks.
func (p *Postgres) Clear(ctx context.Context, ownerID, provider string) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE user_credentials
		SET linked = FALSE, access_token = NULL, refresh_token = NULL,
		    expires_at = NULL, calendar_id = NULL, updated_at = now()
		WHERE owner_id = $1 AND provider = $2`,
		ownerID, provider,
	)
	return err
}

func (p *Postgres) exists(ctx context.Context, ownerID, provider string) (bool, error) {
	var ok bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_credentials WHERE owner_id = $1 AND provider = $2)`,
		ownerID, provider,
	).Scan(&ok)
	return ok, err
}

var _ Store = (*Postgres)(nil)
