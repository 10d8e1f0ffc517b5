package domain

import "time"

// RecoveryToken is the stored record of a single-use recovery token. Only the
// deterministic digest is persisted; the plaintext is returned to the caller
// once at issuance and never stored.
type RecoveryToken struct {
	ID          string // ULID record id
	UserID      string // owning identity (back-reference, not an ownership edge)
	TokenDigest string // peppered Argon2id digest of the plaintext
	Used        bool   // set exactly once on consumption
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// ExpiredAt reports whether the token is past its TTL at the given instant.
// Expiry must fail consume on its own; the background sweep is an
// optimization only.
func (t RecoveryToken) ExpiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Enrollment records an authenticator (TOTP) secret for an identifier. When
// present, re-verification offers a one-time-code challenge as a strong
// step-up answer.
type Enrollment struct {
	Identifier string
	TOTPSecret string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
