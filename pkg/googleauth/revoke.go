package googleauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/briefly/pkg/credentials"
	"github.com/dmitrymomot/briefly/pkg/resilience"
)

// Disconnect revokes the stored token at Google and clears local
// credentials. The revoke call is best effort: its failures are logged and
// swallowed, because leaving the record "connected" over a provider hiccup
// would strand the user in a state they cannot fix from the UI.
func (c *Connector) Disconnect(ctx context.Context, ownerID string) error {
	rec, err := c.creds.Get(ctx, ownerID, ProviderName)
	if errors.Is(err, credentials.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token := rec.AccessToken
	if token == "" && rec.HasRefreshToken() {
		// Revoking the refresh token invalidates the whole grant too.
		token = *rec.RefreshToken
	}

	if token != "" {
		if err := c.revoke(ctx, token); err != nil {
			c.log.WarnContext(ctx, "provider-side token revoke failed, clearing local credentials anyway",
				"owner_id", ownerID, "error", err)
		}
	}

	if err := c.creds.Clear(ctx, ownerID, ProviderName); err != nil {
		return fmt.Errorf("googleauth: clear credentials: %w", err)
	}

	c.log.InfoContext(ctx, "google account disconnected", "owner_id", ownerID)
	return nil
}

func (c *Connector) revoke(ctx context.Context, token string) error {
	client := c.client
	if client == nil {
		client = http.DefaultClient
	}

	_, err := resilience.Do(ctx, func(ctx context.Context) (struct{}, error) {
		endpoint := revokeURL + "?token=" + url.QueryEscape(token)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, http.NoBody)
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := client.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			// Google answers 400 for already-revoked tokens. Any definitive
			// answer from the endpoint is final for a best-effort revoke;
			// only transport failures are worth another attempt.
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return struct{}{}, resilience.Permanent(fmt.Errorf("googleauth: revoke returned status %d: %s", resp.StatusCode, body))
		}
		return struct{}{}, nil
	}, c.retry...)
	return err
}
