package gcal

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenProvider yields access tokens for an owner. EnsureAccessToken
// refreshes only when the stored token is at or past its local expiry;
// RefreshAccessToken forces a refresh even when the stored token still
// looks valid, for when the provider rejects it ahead of that expiry.
// *googleauth.Connector satisfies it.
type TokenProvider interface {
	EnsureAccessToken(ctx context.Context, ownerID string) (string, error)
	RefreshAccessToken(ctx context.Context, ownerID string) (string, error)
}

// ownerTokenSource adapts TokenProvider to oauth2.TokenSource so Google
// API clients can pull per-owner tokens through the credential layer.
type ownerTokenSource struct {
	ctx     context.Context
	tokens  TokenProvider
	ownerID string
}

func (s *ownerTokenSource) Token() (*oauth2.Token, error) {
	accessToken, err := s.tokens.EnsureAccessToken(s.ctx, s.ownerID)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}, nil
}
