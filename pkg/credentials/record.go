package credentials

import (
	"context"
	"time"
)

// expirySkew treats tokens as expired slightly before their wire expiry so a
// token handed to a downstream call does not die mid-flight.
const expirySkew = time.Minute

// Record holds one owner's delegated credentials for one provider.
//
// Invariants:
//   - Linked implies AccessToken is non-empty.
//   - ExpiresAt in the past means the next use must refresh first.
//   - RefreshToken may be nil: providers omit it when re-consent did not
//     force a fresh grant. Refreshing without one is terminal — the owner
//     has to re-authorize.
type Record struct {
	OwnerID      string
	Provider     string
	Linked       bool
	AccessToken  string
	RefreshToken *string
	ExpiresAt    time.Time
	// CalendarID is provider-specific selection metadata, opaque here.
	CalendarID string
	UpdatedAt  time.Time
}

// NeedsRefresh reports whether the access token must be refreshed before use.
func (r *Record) NeedsRefresh(now time.Time) bool {
	return !r.ExpiresAt.After(now.Add(expirySkew))
}

// HasRefreshToken reports whether a refresh is even possible.
func (r *Record) HasRefreshToken() bool {
	return r.RefreshToken != nil && *r.RefreshToken != ""
}

// Store persists credential records, one per (owner, provider).
//
// Writer discipline: SaveTokens belongs to the callback exchanger,
// UpdateAccessToken to the refresher, Clear to the revoker. Refresh does
// not require mutual exclusion across processes — providers tolerate
// repeated refresh calls — but UpdateAccessToken must never move
// expires_at backwards behind a later write.
type Store interface {
	// Get returns the record for (owner, provider).
	// Returns ErrNotFound when the owner never linked this provider.
	Get(ctx context.Context, ownerID, provider string) (*Record, error)

	// SaveTokens upserts tokens after a successful code exchange and marks
	// the record linked. A nil refreshToken preserves any stored one:
	// providers omit the refresh token on re-consent and overwriting it
	// with null would silently break the refresh path.
	SaveTokens(ctx context.Context, ownerID, provider, accessToken string, refreshToken *string, expiresAt time.Time) error

	// UpdateAccessToken stores a refreshed access token. Last write wins,
	// except that expiry never regresses: a stale concurrent refresh
	// landing after a newer one is dropped.
	UpdateAccessToken(ctx context.Context, ownerID, provider, accessToken string, expiresAt time.Time) error

	// SetCalendar persists the owner's chosen calendar id.
	SetCalendar(ctx context.Context, ownerID, provider, calendarID string) error

	// Clear nulls all credential fields and marks the record unlinked.
	// Used by disconnect regardless of provider-side revoke success.
	Clear(ctx context.Context, ownerID, provider string) error
}
