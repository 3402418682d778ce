// Package googleauth implements the Google credential lifecycle for the
// meeting-notes product: OAuth2 authorization-code flow with PKCE, token
// storage and refresh, and best-effort revocation on disconnect.
//
// The Connector is an OAuth *client* obtaining delegated calendar access
// for one user at a time; it is not an authorization server. It composes
// the leaf packages:
//
//   - pkg/pkce generates verifier/challenge/state material
//   - pkg/oauthstate persists single-use flow state server-side
//   - pkg/credentials persists tokens per (owner, provider)
//   - pkg/resilience wraps every outbound provider call
//
// Lifecycle:
//
//	url, _ := conn.BeginAuthorization(ctx, ownerID)   // browser follows url
//	owner, _ := conn.HandleCallback(ctx, code, state, "") // provider redirect
//	token, _ := conn.EnsureAccessToken(ctx, ownerID)  // refreshes if stale
//	_ = conn.Disconnect(ctx, ownerID)                 // revoke + clear
//
// Failure semantics follow the single-use nature of codes and states:
// state consumption and code exchange are never retried; only
// transport-level failures inside provider calls go through the backoff
// loop, and a provider rejection of a refresh token surfaces as
// ErrReauthorizationRequired so the UI can prompt a fresh consent.
package googleauth
