// Package oauthstate persists the server-side half of an OAuth2
// authorization attempt: the anti-CSRF state token and the PKCE code
// verifier, bound to an owner and provider, with a short TTL.
//
// Rows are strictly single-use. The callback consumes its row atomically
// (lookup-and-delete in one step), so a replayed callback URL cannot
// redeem the same state twice: the second consumer observes
// ErrStateNotFound. Expired rows behave as absent apart from being
// deleted on touch, and a periodic sweep garbage-collects attempts the
// user abandoned before ever reaching the callback.
//
// Three backends share the Store interface: Postgres (authoritative,
// DELETE..RETURNING for atomicity), Redis (GETDEL, TTL-evicted), and an
// in-memory map for tests and single-node development.
package oauthstate
