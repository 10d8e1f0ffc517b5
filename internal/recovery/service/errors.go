package service

import "errors"

var (
	// ErrInvalidIdentifier is returned when a recovery is started for an
	// empty or malformed identifier.
	ErrInvalidIdentifier = errors.New("invalid_identifier")

	ErrSessionNotFound = errors.New("session_not_found")
	ErrSessionExpired  = errors.New("session_expired")
	ErrSessionBlocked  = errors.New("session_blocked")

	// ErrInvalidState is returned when an operation is attempted against a
	// session whose state does not permit it, e.g. answers submitted to a
	// session that has no pending questions.
	ErrInvalidState = errors.New("invalid_session_state")

	// Token consumption failures. Handlers collapse all three into a single
	// generic message; the distinction exists for logs and for callers inside
	// the process.
	ErrTokenNotFound = errors.New("token_not_found")
	ErrTokenExpired  = errors.New("token_expired")
	ErrTokenUsed     = errors.New("token_used")

	ErrNotEnrolled = errors.New("not_enrolled")
)
