package auth

import "errors"

var (
	// ErrUnauthorized is returned when a request carries no usable token.
	ErrUnauthorized = errors.New("auth: missing bearer token")
	// ErrForbidden is returned when the caller's role is too low for the route.
	ErrForbidden = errors.New("auth: role not permitted")
	// ErrInvalidToken is returned for malformed, expired or unsigned tokens.
	ErrInvalidToken = errors.New("auth: invalid token")
)
