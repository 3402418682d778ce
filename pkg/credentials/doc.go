// Package credentials stores delegated third-party tokens, one record per
// (owner, provider). It enforces the writer discipline of the credential
// lifecycle: the callback exchanger saves tokens, the refresher updates the
// access token without ever regressing expiry or touching the refresh
// token, and the revoker is the only writer allowed to null everything out.
package credentials
