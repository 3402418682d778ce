package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"math/big"
)

// verifierCharset is the unreserved URL-safe character set allowed for
// code verifiers by RFC 7636 section 4.1.
const verifierCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

const (
	// VerifierLength is the code verifier length used for new flows.
	// RFC 7636 allows 43-128 characters; 64 gives ~380 bits of entropy.
	VerifierLength = 64

	// stateTokenBytes is the entropy of the anti-CSRF state token.
	stateTokenBytes = 24
)

// ErrRandomSource is returned when the secure random source fails.
var ErrRandomSource = errors.New("pkce: secure random source failed")

// Material holds everything a single authorization attempt needs:
// the CSRF state token, the secret code verifier kept server-side,
// and the derived challenge embedded into the authorization URL.
type Material struct {
	StateToken    string
	CodeVerifier  string
	CodeChallenge string
}

// Generate produces fresh PKCE material from crypto/rand.
// The state token is independent of the verifier; it binds the callback
// to this attempt and carries no secret value beyond unguessability.
func Generate() (Material, error) {
	verifier, err := randomVerifier(VerifierLength)
	if err != nil {
		return Material{}, errors.Join(ErrRandomSource, err)
	}

	state := make([]byte, stateTokenBytes)
	if _, err := rand.Read(state); err != nil {
		return Material{}, errors.Join(ErrRandomSource, err)
	}

	return Material{
		StateToken:    base64.RawURLEncoding.EncodeToString(state),
		CodeVerifier:  verifier,
		CodeChallenge: ChallengeS256(verifier),
	}, nil
}

// ChallengeS256 derives the S256 code challenge for a verifier:
// base64url(SHA-256(verifier)) without padding, per RFC 7636 section 4.2.
func ChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// randomVerifier draws n characters uniformly from the unreserved charset.
// Uses rejection-free modular sampling via math/big to avoid bias.
func randomVerifier(n int) (string, error) {
	out := make([]byte, n)
	maxIdx := big.NewInt(int64(len(verifierCharset)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, maxIdx)
		if err != nil {
			return "", err
		}
		out[i] = verifierCharset[idx.Int64()]
	}
	return string(out), nil
}
