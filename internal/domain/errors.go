package domain

import "errors"

var (
	// ErrInvalidInput signals a request or record that failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPropertyNotFound signals a missing property.
	ErrPropertyNotFound = errors.New("property not found")
	// ErrStoreTimeout signals a store call that exceeded its deadline.
	ErrStoreTimeout = errors.New("store timeout")
	// ErrStoreUnavailable signals a store that cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)
