package googleauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/briefly/pkg/credentials"
	"github.com/dmitrymomot/briefly/pkg/oauthstate"
	"github.com/dmitrymomot/briefly/pkg/pkce"
	"github.com/dmitrymomot/briefly/pkg/resilience"
)

// stateSeparator joins the random state token with the owner id into the
// composite state value round-tripped through the provider redirect. The
// token is base64url and can never contain it; owner ids are opaque and
// might, so parsing splits on the first occurrence only.
const stateSeparator = ":"

const revokeURL = "https://oauth2.googleapis.com/revoke"

// Connector drives the credential lifecycle against Google: authorization
// initiation, callback exchange, refresh, and revoke. It is stateless per
// request; all shared state lives in the injected stores.
type Connector struct {
	oauth   *oauth2.Config
	states  oauthstate.Store
	creds   credentials.Store
	log     *slog.Logger
	client  *http.Client
	retry   []resilience.Option
	ttl     time.Duration
	refresh singleflight.Group
}

// New creates a Connector. Configuration is injected explicitly; the
// connector never reads process environment itself.
func New(cfg Config, states oauthstate.Store, creds credentials.Store, opts ...Option) (*Connector, error) {
	if cfg.ClientID == "" || cfg.RedirectURL == "" {
		return nil, ErrNotConfigured
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes()
	}

	return &Connector{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     googleOAuth.Endpoint,
		},
		states: states,
		creds:  creds,
		log:    o.logger,
		client: o.httpClient,
		retry:  o.retryOpts,
		ttl:    cfg.StateTTL,
	}, nil
}

// BeginAuthorization starts a PKCE flow for the owner and returns the
// provider authorization URL for the browser to follow. The only side
// effect is one state row; no network call happens here.
//
// prompt=consent is always sent. It degrades re-linking UX slightly but
// guarantees Google issues a refresh token even when the user re-consents
// without having revoked first — dropping it would silently break the
// refresh path for exactly those users.
func (c *Connector) BeginAuthorization(ctx context.Context, ownerID string) (string, error) {
	m, err := pkce.Generate()
	if err != nil {
		return "", err
	}

	if err := c.states.Create(ctx, oauthstate.New(ownerID, ProviderName, m.StateToken, m.CodeVerifier, c.ttl)); err != nil {
		return "", fmt.Errorf("googleauth: store authorization state: %w", err)
	}

	state := m.StateToken + stateSeparator + ownerID
	return c.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("code_challenge", m.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}

// HandleCallback completes the flow: validates and consumes the stored
// state, exchanges the code plus verifier for tokens, and persists them.
// Returns the owner id the flow belongs to.
//
// All failures here are terminal for the flow. Codes and states are
// single-use, so nothing in this path is retried except transport-level
// errors inside the token exchange itself.
func (c *Connector) HandleCallback(ctx context.Context, code, state, providerErr string) (string, error) {
	if providerErr != "" {
		// The state row stays untouched; it expires on its own.
		return "", fmt.Errorf("%w: %s", ErrProviderDenied, providerErr)
	}

	stateToken, ownerID, ok := strings.Cut(state, stateSeparator)
	if !ok || stateToken == "" || ownerID == "" {
		return "", ErrInvalidState
	}

	verifier, err := c.states.Consume(ctx, ownerID, ProviderName, stateToken)
	if err != nil {
		return "", err
	}

	token, err := resilience.Do(ctx, func(ctx context.Context) (*oauth2.Token, error) {
		tok, err := c.oauth.Exchange(c.httpCtx(ctx), code, oauth2.VerifierOption(verifier))
		if err != nil {
			var retrieveErr *oauth2.RetrieveError
			if errors.As(err, &retrieveErr) {
				// The provider saw and rejected the exchange; the code is
				// burned either way.
				return nil, resilience.Permanent(errors.Join(ErrTokenExchangeFailed, err))
			}
			return nil, err
		}
		return tok, nil
	}, c.retry...)
	if err != nil {
		if classified := resilience.Classify(err); classified.Class == resilience.ClassPermanent {
			return "", classified.Err
		}
		return "", errors.Join(ErrTokenExchangeFailed, err)
	}

	var refreshToken *string
	if token.RefreshToken != "" {
		refreshToken = &token.RefreshToken
	}
	if err := c.creds.SaveTokens(ctx, ownerID, ProviderName, token.AccessToken, refreshToken, token.Expiry.UTC()); err != nil {
		return "", fmt.Errorf("googleauth: persist tokens: %w", err)
	}

	c.log.InfoContext(ctx, "google account linked", "owner_id", ownerID)
	return ownerID, nil
}

// httpCtx injects the custom HTTP client (when set) for x/oauth2 calls.
func (c *Connector) httpCtx(ctx context.Context) context.Context {
	if c.client != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, c.client)
	}
	return ctx
}
