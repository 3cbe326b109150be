// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across session/gateway/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication after the single
	// refresh-and-retry attempt has been exhausted.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoSession indicates no usable token pair exists (login required).
	ErrNoSession = errors.New("no session")

	// ErrMalformedResponse indicates an unexpected shape in a login/refresh
	// response; prior session state is left untouched.
	ErrMalformedResponse = errors.New("malformed response")
)
