// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal        = errors.New("internal error")
	ErrInvalidArgument = errors.New("invalid argument")

	// Registration errors.
	ErrLoginTaken = errors.New("login already taken")
	ErrEmailTaken = errors.New("email already taken")

	// Authentication errors. ErrInvalidCredentials deliberately covers both
	// "unknown login" and "wrong password" so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid login or password")

	// Token decode errors (invalid or malformed token).
	ErrTokenMalformed   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")

	// Token lifecycle errors. An expired token is an expected outcome,
	// not a security event.
	ErrTokenExpired   = errors.New("token expired")
	ErrRevoked        = errors.New("token revoked")
	ErrAlreadyRevoked = errors.New("token already revoked")

	// Session validation errors.
	ErrUnknownSubject = errors.New("unknown subject")
)
