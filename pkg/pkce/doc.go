// Package pkce generates Proof Key for Code Exchange material (RFC 7636)
// for OAuth2 authorization-code flows.
//
// Each call to Generate returns three independent values:
//
//   - StateToken: random anti-CSRF token round-tripped through the
//     provider redirect and matched against the stored flow state.
//   - CodeVerifier: the client secret for this flow, stored server-side
//     and sent only during token exchange.
//   - CodeChallenge: base64url(SHA-256(verifier)), embedded into the
//     authorization URL with code_challenge_method=S256.
//
// The package is pure: no storage, no network, only crypto/rand.
//
// Example:
//
//	m, err := pkce.Generate()
//	if err != nil {
//	    return err
//	}
//	// store m.StateToken + m.CodeVerifier, send m.CodeChallenge to the provider
package pkce
