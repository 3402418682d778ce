package pkce_test

import (
	"crypto/sha256"
	"encoding/base64"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/briefly/pkg/pkce"
)

var verifierPattern = regexp.MustCompile(`^[A-Za-z0-9\-._~]+$`)

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("verifier length and alphabet", func(t *testing.T) {
		t.Parallel()
		m, err := pkce.Generate()
		require.NoError(t, err)
		require.Len(t, m.CodeVerifier, pkce.VerifierLength)
		require.Regexp(t, verifierPattern, m.CodeVerifier)
	})

	t.Run("challenge is S256 of verifier", func(t *testing.T) {
		t.Parallel()
		m, err := pkce.Generate()
		require.NoError(t, err)

		sum := sha256.Sum256([]byte(m.CodeVerifier))
		want := base64.RawURLEncoding.EncodeToString(sum[:])
		require.Equal(t, want, m.CodeChallenge)
		require.NotContains(t, m.CodeChallenge, "=")
		require.NotContains(t, m.CodeChallenge, "+")
		require.NotContains(t, m.CodeChallenge, "/")
	})

	t.Run("state token independent of verifier", func(t *testing.T) {
		t.Parallel()
		m, err := pkce.Generate()
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(m.StateToken), 16)
		require.NotEqual(t, m.StateToken, m.CodeVerifier)
		require.False(t, strings.Contains(m.StateToken, ":"),
			"state token must not contain the composite-state separator")
	})

	t.Run("successive calls differ", func(t *testing.T) {
		t.Parallel()
		a, err := pkce.Generate()
		require.NoError(t, err)
		b, err := pkce.Generate()
		require.NoError(t, err)
		require.NotEqual(t, a.CodeVerifier, b.CodeVerifier)
		require.NotEqual(t, a.StateToken, b.StateToken)
	})
}

func TestChallengeS256(t *testing.T) {
	t.Parallel()

	// Reference vector from RFC 7636 appendix B.
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	require.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", pkce.ChallengeS256(verifier))
}
