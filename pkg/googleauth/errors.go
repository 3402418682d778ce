package googleauth

import "errors"

var (
	// ErrNotConfigured is returned when client id or redirect URL are
	// missing at construction. Deployment issue, not a user error.
	ErrNotConfigured = errors.New("googleauth: client id and redirect URL must be configured")

	// ErrInvalidState is returned when the callback state value cannot be
	// split into a state token and owner id. Terminal; restart the flow.
	ErrInvalidState = errors.New("googleauth: malformed callback state")

	// ErrProviderDenied is returned when the provider redirected back with
	// an error, typically because the user declined consent.
	ErrProviderDenied = errors.New("googleauth: provider denied authorization")

	// ErrTokenExchangeFailed is returned when the provider rejects the
	// code exchange. Authorization codes are single-use, so this is never
	// retried.
	ErrTokenExchangeFailed = errors.New("googleauth: token exchange failed")

	// ErrReauthorizationRequired is returned when no usable refresh token
	// exists or the provider reports the stored one invalid. The owner
	// must restart the authorization flow; retrying cannot help.
	ErrReauthorizationRequired = errors.New("googleauth: reauthorization required")

	// ErrNotLinked is returned when an operation needs credentials the
	// owner never granted (or already disconnected).
	ErrNotLinked = errors.New("googleauth: google account not linked")
)
