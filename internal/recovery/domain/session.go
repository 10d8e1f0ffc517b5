package domain

import "time"

// SessionState is the lifecycle state of a recovery session. Transitions are
// one-directional: COMPLETED, BLOCKED and EXPIRED are terminal.
type SessionState string

const (
	StateStarted         SessionState = "STARTED"
	StateAwaitingAnswers SessionState = "AWAITING_ANSWERS"
	StateVerified        SessionState = "VERIFIED"
	StateBlocked         SessionState = "BLOCKED"
	StateCompleted       SessionState = "COMPLETED"
	StateExpired         SessionState = "EXPIRED"
)

// Terminal reports whether no further transition out of s is permitted.
// EXPIRED is terminal by definition even though the record may be reaped.
func (s SessionState) Terminal() bool {
	switch s {
	case StateBlocked, StateCompleted, StateExpired:
		return true
	}
	return false
}

// Session is a single recovery attempt for an identifier. The session manager
// exclusively owns Session lifetimes.
type Session struct {
	ID         string // ULID exposed to the caller
	Identifier string // email or phone under recovery; never logged in plaintext
	UserID     string // identity resolved from the identifier
	State      SessionState

	// Risk holds the latest assessment only; earlier passes are discarded.
	Risk *RiskAssessment

	// TokenID references the single token minted for this session, set on
	// entry to VERIFIED. Empty until then. The token itself never points back
	// at the session.
	TokenID string

	CreatedAt time.Time
	ExpiresAt time.Time
	UpdatedAt time.Time
}

// ExpiredAt reports whether the session is past its TTL at the given instant.
func (s Session) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
