package oauthstate

import "errors"

var (
	// ErrStateNotFound is returned when no state row matches the callback.
	// Terminal for the flow: the user must restart authorization.
	ErrStateNotFound = errors.New("oauthstate: state not found")

	// ErrStateExpired is returned when the matching state row was past its
	// deadline. The row is deleted as a side effect. Terminal for the flow.
	ErrStateExpired = errors.New("oauthstate: state expired")
)
