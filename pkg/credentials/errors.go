package credentials

import "errors"

var (
	// ErrNotFound is returned when no record exists for (owner, provider).
	ErrNotFound = errors.New("credentials: record not found")

	// ErrNotLinked is returned when the record exists but holds no usable
	// credentials (disconnected or never completed the flow).
	ErrNotLinked = errors.New("credentials: provider not linked")
)
