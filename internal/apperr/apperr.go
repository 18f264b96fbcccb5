// Package apperr defines the error taxonomy shared by services and the
// HTTP layer. Services wrap these sentinels with fmt.Errorf("...: %w", ...)
// and handlers classify them with errors.Is.
package apperr

import "errors"

var (
	// ErrValidation marks missing or malformed request fields.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a lookup that matched no user.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a duplicate-email registration.
	ErrConflict = errors.New("already exists")

	// ErrInvalidCredentials marks a failed email/password check.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized marks a missing, forged, malformed or expired
	// session token. One outcome on purpose: callers learn nothing about
	// which check failed.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidResetToken marks a reset secret that matches no live
	// token. Wrong, consumed and expired secrets are indistinguishable.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)
