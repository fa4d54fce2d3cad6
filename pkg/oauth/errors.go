package oauth

import "errors"

var (
	// ErrAuthConfig indicates a missing or invalid OAuth configuration
	ErrAuthConfig = errors.New("oauth: invalid configuration")

	// ErrInvalidGrant indicates a rejected code or refresh token
	ErrInvalidGrant = errors.New("oauth: invalid grant")

	// ErrUnauthorized indicates a missing or unknown bearer token
	ErrUnauthorized = errors.New("oauth: unauthorized")
)
