package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict reports a conditional update that matched no row: the
	// record moved on under a concurrent writer (or another replica).
	ErrConflict = errors.New("store: conflicting update")
)

// Store is the root data access interface. Concrete drivers (sqlite, memory)
// implement this. Sub-repositories keep concerns tidy; multi-step operations
// that must be atomic (token consume + session completion) go through WithTx.
type Store interface {
	Sessions() Sessions
	Tokens() Tokens
	Enrollments() Enrollments

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, rolling back when fn errors
	// and committing otherwise. Preferred over Tx for most callers.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backend is still reachable.
	Ping(ctx context.Context) error
}

// Tx is a transactional store with Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Sessions interface {
	// CreateSession inserts a new recovery session (id provided via ULID).
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSession returns a session by its id.
	GetSession(ctx context.Context, id string) (domain.Session, error)

	// GetSessionByTokenID returns the session that minted the given token.
	GetSessionByTokenID(ctx context.Context, tokenID string) (domain.Session, error)

	// UpdateSession persists state, risk and the token reference,
	// conditional on the session still being in expectState. Returns
	// ErrConflict when the condition no longer holds.
	UpdateSession(ctx context.Context, s domain.Session, expectState domain.SessionState) error

	// ExpireSessions transitions every non-terminal session past its TTL to
	// EXPIRED, returning how many were transitioned.
	ExpireSessions(ctx context.Context, now time.Time) (int64, error)

	// DeleteSessionsExpiredBefore reaps long-dead session records.
	DeleteSessionsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Tokens interface {
	// CreateToken stores a new token record. The digest is unique; a
	// collision reports ErrAlreadyExists.
	CreateToken(ctx context.Context, t domain.RecoveryToken) error

	// GetTokenByDigest returns the token by its at-rest digest.
	GetTokenByDigest(ctx context.Context, digest string) (domain.RecoveryToken, error)

	// MarkTokenUsed flips used from false to true in one atomic step.
	// Returns ErrConflict when the token was already used, ErrNotFound when
	// no such token exists.
	MarkTokenUsed(ctx context.Context, id string) error

	// ListTokensByUser returns every token record owned by a user.
	ListTokensByUser(ctx context.Context, userID string) ([]domain.RecoveryToken, error)

	// DeleteUserTokens removes all of a user's tokens, returning the count.
	DeleteUserTokens(ctx context.Context, userID string) (int64, error)

	// DeleteExpiredTokens is housekeeping; consume fails on expiry
	// independently of this sweep.
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)

	// CountTokens returns the total number of stored token records.
	CountTokens(ctx context.Context) (int64, error)
}

type Enrollments interface {
	// UpsertEnrollment stores or replaces the authenticator secret for an
	// identifier.
	UpsertEnrollment(ctx context.Context, e domain.Enrollment) error

	// GetEnrollment returns the enrollment for an identifier.
	GetEnrollment(ctx context.Context, identifier string) (domain.Enrollment, error)

	// DeleteEnrollment removes an identifier's enrollment.
	DeleteEnrollment(ctx context.Context, identifier string) error
}
