package googleauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/briefly/pkg/credentials"
	"github.com/dmitrymomot/briefly/pkg/googleauth"
	"github.com/dmitrymomot/briefly/pkg/oauthstate"
	"github.com/dmitrymomot/briefly/pkg/pkce"
	"github.com/dmitrymomot/briefly/pkg/resilience"
)

func testConfig() googleauth.Config {
	return googleauth.Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		RedirectURL:  "https://app.example.com/oauth/google/callback",
		StateTTL:     time.Minute,
	}
}

// googleRewriteTransport intercepts requests to Google hosts and routes
// them to a local handler instead.
type googleRewriteTransport struct {
	handler http.Handler
	calls   int
}

func (t *googleRewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.Contains(req.URL.Host, "google") || strings.Contains(req.URL.Host, "googleapis") {
		t.calls++
		recorder := httptest.NewRecorder()
		t.handler.ServeHTTP(recorder, req)
		return recorder.Result(), nil
	}
	return http.DefaultTransport.RoundTrip(req)
}

func newConnector(t *testing.T, handler http.Handler) (*googleauth.Connector, *oauthstate.Memory, *credentials.Memory, *googleRewriteTransport) {
	t.Helper()

	states := oauthstate.NewMemory()
	creds := credentials.NewMemory()
	transport := &googleRewriteTransport{handler: handler}

	conn, err := googleauth.New(testConfig(), states, creds,
		googleauth.WithHTTPClient(&http.Client{Transport: transport}),
		googleauth.WithRetryOptions(
			resilience.WithMaxAttempts(2),
			resilience.WithBackoff(time.Millisecond, time.Millisecond),
			resilience.WithTimeout(time.Second),
		),
	)
	require.NoError(t, err)
	return conn, states, creds, transport
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("missing client id", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.ClientID = ""
		_, err := googleauth.New(cfg, oauthstate.NewMemory(), credentials.NewMemory())
		require.ErrorIs(t, err, googleauth.ErrNotConfigured)
	})

	t.Run("missing redirect URL", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.RedirectURL = ""
		_, err := googleauth.New(cfg, oauthstate.NewMemory(), credentials.NewMemory())
		require.ErrorIs(t, err, googleauth.ErrNotConfigured)
	})
}

func TestBeginAuthorization(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	conn, states, _, transport := newConnector(t, nil)

	authURL, err := conn.BeginAuthorization(ctx, "U1")
	require.NoError(t, err)
	require.Zero(t, transport.calls, "initiation must not call the provider")

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()

	require.Equal(t, "test-client-id", q.Get("client_id"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "offline", q.Get("access_type"))
	require.Equal(t, "consent", q.Get("prompt"))
	require.Equal(t, "S256", q.Get("code_challenge_method"))
	require.NotEmpty(t, q.Get("code_challenge"))
	require.Contains(t, q.Get("scope"), "calendar")

	stateToken, ownerID, ok := strings.Cut(q.Get("state"), ":")
	require.True(t, ok)
	require.Equal(t, "U1", ownerID)
	require.GreaterOrEqual(t, len(stateToken), 16)

	// The state row is stored and consumable exactly once.
	verifier, err := states.Consume(ctx, "U1", "google", stateToken)
	require.NoError(t, err)
	require.Equal(t, pkce.ChallengeS256(verifier), q.Get("code_challenge"))
}

func TestHandleCallback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("end to end", func(t *testing.T) {
		t.Parallel()

		var exchanged url.Values
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			exchanged = r.PostForm
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "AT1",
				"refresh_token": "RT1",
				"token_type":    "Bearer",
				"expires_in":    3600,
			})
		})

		conn, states, creds, _ := newConnector(t, handler)

		authURL, err := conn.BeginAuthorization(ctx, "U1")
		require.NoError(t, err)
		u, _ := url.Parse(authURL)
		state := u.Query().Get("state")
		challenge := u.Query().Get("code_challenge")

		ownerID, err := conn.HandleCallback(ctx, "abc", state, "")
		require.NoError(t, err)
		require.Equal(t, "U1", ownerID)

		// The exchange carried the code and the matching verifier.
		require.Equal(t, "abc", exchanged.Get("code"))
		require.Equal(t, "authorization_code", exchanged.Get("grant_type"))
		require.Equal(t, challenge, pkce.ChallengeS256(exchanged.Get("code_verifier")))

		rec, err := creds.Get(ctx, "U1", "google")
		require.NoError(t, err)
		require.True(t, rec.Linked)
		require.Equal(t, "AT1", rec.AccessToken)
		require.Equal(t, "RT1", *rec.RefreshToken)
		require.WithinDuration(t, time.Now().Add(time.Hour), rec.ExpiresAt, time.Minute)

		// The state row is gone: a replayed callback fails closed.
		stateToken, _, _ := strings.Cut(state, ":")
		_, err = states.Consume(ctx, "U1", "google", stateToken)
		require.ErrorIs(t, err, oauthstate.ErrStateNotFound)
	})

	t.Run("provider denied leaves state untouched", func(t *testing.T) {
		t.Parallel()

		conn, states, _, transport := newConnector(t, nil)
		authURL, err := conn.BeginAuthorization(ctx, "U1")
		require.NoError(t, err)
		u, _ := url.Parse(authURL)
		state := u.Query().Get("state")

		_, err = conn.HandleCallback(ctx, "", state, "access_denied")
		require.ErrorIs(t, err, googleauth.ErrProviderDenied)
		require.Zero(t, transport.calls)

		stateToken, _, _ := strings.Cut(state, ":")
		_, err = states.Consume(ctx, "U1", "google", stateToken)
		require.NoError(t, err, "denied consent must not burn the state row")
	})

	t.Run("malformed state", func(t *testing.T) {
		t.Parallel()
		conn, _, _, _ := newConnector(t, nil)
		_, err := conn.HandleCallback(ctx, "abc", "no-separator-here", "")
		require.ErrorIs(t, err, googleauth.ErrInvalidState)
	})

	t.Run("unknown state", func(t *testing.T) {
		t.Parallel()
		conn, _, _, _ := newConnector(t, nil)
		_, err := conn.HandleCallback(ctx, "abc", "sometoken:U1", "")
		require.ErrorIs(t, err, oauthstate.ErrStateNotFound)
	})

	t.Run("expired state", func(t *testing.T) {
		t.Parallel()
		conn, states, _, _ := newConnector(t, nil)

		s := oauthstate.New("U1", "google", "expired-token-123", "v", time.Minute)
		s.ExpiresAt = time.Now().UTC().Add(-time.Second)
		require.NoError(t, states.Create(ctx, s))

		_, err := conn.HandleCallback(ctx, "abc", "expired-token-123:U1", "")
		require.ErrorIs(t, err, oauthstate.ErrStateExpired)
	})

	t.Run("rejected exchange is not retried", func(t *testing.T) {
		t.Parallel()

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
		})

		conn, _, creds, transport := newConnector(t, handler)
		authURL, err := conn.BeginAuthorization(ctx, "U1")
		require.NoError(t, err)
		u, _ := url.Parse(authURL)

		_, err = conn.HandleCallback(ctx, "already-used", u.Query().Get("state"), "")
		require.ErrorIs(t, err, googleauth.ErrTokenExchangeFailed)
		require.Equal(t, 1, transport.calls, "authorization codes are single-use; the exchange must not retry")

		_, err = creds.Get(ctx, "U1", "google")
		require.ErrorIs(t, err, credentials.ErrNotFound)
	})

	t.Run("missing refresh token preserves the stored one", func(t *testing.T) {
		t.Parallel()

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "AT2",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		})

		conn, _, creds, _ := newConnector(t, handler)
		rt := "RT-original"
		require.NoError(t, creds.SaveTokens(ctx, "U1", "google", "AT1", &rt, time.Now().UTC()))

		authURL, err := conn.BeginAuthorization(ctx, "U1")
		require.NoError(t, err)
		u, _ := url.Parse(authURL)

		_, err = conn.HandleCallback(ctx, "abc", u.Query().Get("state"), "")
		require.NoError(t, err)

		rec, err := creds.Get(ctx, "U1", "google")
		require.NoError(t, err)
		require.Equal(t, "AT2", rec.AccessToken)
		require.Equal(t, "RT-original", *rec.RefreshToken)
	})
}
