package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/briefly/pkg/resilience"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// UserInfo is the linked Google account's basic profile.
type UserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// GetUserInfo fetches the owner's Google profile. The email identifies
// which Google account is linked and is where lifecycle notifications go.
func (c *Client) GetUserInfo(ctx context.Context, ownerID string) (*UserInfo, error) {
	if err := c.pacer.Wait(ctx, ownerID); err != nil {
		return nil, err
	}

	// The token is resolved inside the reauth wrapper so the retried call
	// sees the forced-refresh result, not the rejected token.
	return withReauth(ctx, c, ownerID, func(ctx context.Context) (*UserInfo, error) {
		accessToken, err := c.tokens.EnsureAccessToken(ctx, ownerID)
		if err != nil {
			return nil, err
		}

		return resilience.Do(ctx, func(ctx context.Context) (*UserInfo, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, http.NoBody)
			if err != nil {
				return nil, fmt.Errorf("gcal: create userinfo request: %w", err)
			}
			req.Header.Set("Authorization", "Bearer "+accessToken)

			resp, err := c.httpClient().Do(req)
			if err != nil {
				return nil, fmt.Errorf("gcal: fetch userinfo: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return nil, &statusError{code: resp.StatusCode}
			}

			var info UserInfo
			if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
				return nil, fmt.Errorf("gcal: decode userinfo: %w", err)
			}
			return &info, nil
		}, c.retry...)
	})
}

// statusError carries the HTTP status of a failed userinfo response so
// the classifier can map it without parsing message text.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gcal: userinfo request failed with status %d", e.code)
}

func (e *statusError) StatusCode() int { return e.code }

// UserEmail returns just the linked account's email address.
func (c *Client) UserEmail(ctx context.Context, ownerID string) (string, error) {
	info, err := c.GetUserInfo(ctx, ownerID)
	if err != nil {
		return "", err
	}
	return info.Email, nil
}
