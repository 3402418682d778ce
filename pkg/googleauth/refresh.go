package googleauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/briefly/pkg/credentials"
	"github.com/dmitrymomot/briefly/pkg/resilience"
)

// EnsureAccessToken returns an access token valid for immediate use,
// refreshing first when the stored one is at or past expiry. Every caller
// that talks to Google data APIs goes through here.
func (c *Connector) EnsureAccessToken(ctx context.Context, ownerID string) (string, error) {
	rec, err := c.creds.Get(ctx, ownerID, ProviderName)
	if errors.Is(err, credentials.ErrNotFound) {
		return "", ErrNotLinked
	}
	if err != nil {
		return "", err
	}
	if !rec.Linked {
		return "", ErrNotLinked
	}

	if rec.NeedsRefresh(time.Now().UTC()) {
		return c.RefreshAccessToken(ctx, ownerID)
	}
	return rec.AccessToken, nil
}

// RefreshAccessToken obtains a fresh access token using the stored refresh
// token and persists it. The refresh token itself is never rotated here —
// Google keeps it stable across refreshes.
//
// Concurrent refreshes for the same owner within this process collapse into
// one provider call via singleflight. Correctness does not depend on it:
// Google tolerates repeated refresh calls, and the store guarantees expiry
// never regresses behind a later write.
func (c *Connector) RefreshAccessToken(ctx context.Context, ownerID string) (string, error) {
	// The flight is shared: waiters piggyback on whichever caller got in
	// first, so the refresh must not die with that caller's request.
	// Detach from its cancellation; the invoker's per-attempt timeout
	// still bounds the provider call.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := c.refresh.Do(ownerID, func() (any, error) {
		return c.refreshOnce(flightCtx, ownerID)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Connector) refreshOnce(ctx context.Context, ownerID string) (string, error) {
	rec, err := c.creds.Get(ctx, ownerID, ProviderName)
	if errors.Is(err, credentials.ErrNotFound) {
		return "", ErrNotLinked
	}
	if err != nil {
		return "", err
	}
	if !rec.Linked {
		return "", ErrNotLinked
	}
	if !rec.HasRefreshToken() {
		// Terminal before any network call: there is nothing to retry,
		// the owner must re-authorize.
		return "", ErrReauthorizationRequired
	}
	refreshToken := *rec.RefreshToken

	token, err := resilience.Do(ctx, func(ctx context.Context) (*oauth2.Token, error) {
		src := c.oauth.TokenSource(c.httpCtx(ctx), &oauth2.Token{RefreshToken: refreshToken})
		tok, err := src.Token()
		if err != nil {
			var retrieveErr *oauth2.RetrieveError
			if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
				switch retrieveErr.Response.StatusCode {
				case http.StatusBadRequest, http.StatusUnauthorized:
					// The refresh token itself is invalid or revoked.
					return nil, resilience.Permanent(errors.Join(ErrReauthorizationRequired, err))
				}
			}
			return nil, err
		}
		return tok, nil
	}, c.retry...)
	if err != nil {
		if classified := resilience.Classify(err); classified.Class == resilience.ClassPermanent {
			return "", classified.Err
		}
		return "", err
	}

	if err := c.creds.UpdateAccessToken(ctx, ownerID, ProviderName, token.AccessToken, token.Expiry.UTC()); err != nil {
		return "", fmt.Errorf("googleauth: persist refreshed token: %w", err)
	}

	c.log.InfoContext(ctx, "access token refreshed", "owner_id", ownerID, "expires_at", token.Expiry.UTC())
	return token.AccessToken, nil
}
