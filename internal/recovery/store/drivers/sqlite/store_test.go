package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
	"github.com/aussiebroadwan/regain/internal/recovery/store"
	"github.com/aussiebroadwan/regain/internal/recovery/store/drivers/sqlite"
	"github.com/aussiebroadwan/regain/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newToken(userID string, expiresIn time.Duration) domain.RecoveryToken {
	now := time.Now().UTC()
	id := idx.New().String()
	return domain.RecoveryToken{
		ID:          id,
		UserID:      userID,
		TokenDigest: "digest-" + id,
		CreatedAt:   now,
		ExpiresAt:   now.Add(expiresIn),
	}
}

func newSession(state domain.SessionState, expiresIn time.Duration) domain.Session {
	now := time.Now().UTC()
	return domain.Session{
		ID:         idx.New().String(),
		Identifier: "user@example.com",
		UserID:     "u1",
		State:      state,
		CreatedAt:  now,
		ExpiresAt:  now.Add(expiresIn),
		UpdatedAt:  now,
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations())
}

func TestTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tok := newToken("u1", time.Hour)
	require.NoError(t, s.Tokens().CreateToken(ctx, tok))

	t.Run("lookup by digest", func(t *testing.T) {
		got, err := s.Tokens().GetTokenByDigest(ctx, tok.TokenDigest)
		require.NoError(t, err)
		require.Equal(t, tok.ID, got.ID)
		require.Equal(t, tok.UserID, got.UserID)
		require.False(t, got.Used)
		require.WithinDuration(t, tok.ExpiresAt, got.ExpiresAt, time.Second)
	})

	t.Run("duplicate digest rejected", func(t *testing.T) {
		dup := newToken("u2", time.Hour)
		dup.TokenDigest = tok.TokenDigest
		require.ErrorIs(t, s.Tokens().CreateToken(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("mark used flips exactly once", func(t *testing.T) {
		require.NoError(t, s.Tokens().MarkTokenUsed(ctx, tok.ID))
		require.ErrorIs(t, s.Tokens().MarkTokenUsed(ctx, tok.ID), store.ErrConflict)
		require.ErrorIs(t, s.Tokens().MarkTokenUsed(ctx, "missing"), store.ErrNotFound)

		got, err := s.Tokens().GetTokenByDigest(ctx, tok.TokenDigest)
		require.NoError(t, err)
		require.True(t, got.Used)
	})
}

func TestTokenUserOperations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for range 3 {
		require.NoError(t, s.Tokens().CreateToken(ctx, newToken("alice", time.Hour)))
	}
	require.NoError(t, s.Tokens().CreateToken(ctx, newToken("bob", time.Hour)))

	tokens, err := s.Tokens().ListTokensByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	deleted, err := s.Tokens().DeleteUserTokens(ctx, "alice")
	require.NoError(t, err)
	require.EqualValues(t, 3, deleted)

	count, err := s.Tokens().CountTokens(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestTokenExpirySweep(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Tokens().CreateToken(ctx, newToken("u", -time.Minute)))
	require.NoError(t, s.Tokens().CreateToken(ctx, newToken("u", time.Hour)))

	deleted, err := s.Tokens().DeleteExpiredTokens(ctx, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)
}

func TestSessionConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sess := newSession(domain.StateStarted, time.Hour)
	sess.Risk = &domain.RiskAssessment{
		Score: 35, Level: domain.RiskMedium, Confidence: 1.0,
		PendingQuestions: []domain.Question{
			{ID: "q_affirm", Prompt: "Do you confirm?", Kind: domain.QuestionAck, Required: true},
		},
	}
	require.NoError(t, s.Sessions().CreateSession(ctx, sess))

	// Risk round-trips through its JSON column.
	got, err := s.Sessions().GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Risk)
	require.Equal(t, domain.RiskMedium, got.Risk.Level)
	require.Len(t, got.Risk.PendingQuestions, 1)

	sess.State = domain.StateVerified
	sess.TokenID = "tok-1"
	require.NoError(t, s.Sessions().UpdateSession(ctx, sess, domain.StateStarted))

	// Stale expectation loses.
	sess.State = domain.StateCompleted
	require.ErrorIs(t,
		s.Sessions().UpdateSession(ctx, sess, domain.StateStarted),
		store.ErrConflict)

	missing := newSession(domain.StateStarted, time.Hour)
	require.ErrorIs(t,
		s.Sessions().UpdateSession(ctx, missing, domain.StateStarted),
		store.ErrNotFound)

	byToken, err := s.Sessions().GetSessionByTokenID(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, sess.ID, byToken.ID)
}

func TestSessionExpirySweeps(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	stale := newSession(domain.StateStarted, -time.Minute)
	done := newSession(domain.StateCompleted, -time.Minute)
	live := newSession(domain.StateStarted, time.Hour)
	for _, sess := range []domain.Session{stale, done, live} {
		require.NoError(t, s.Sessions().CreateSession(ctx, sess))
	}

	expired, err := s.Sessions().ExpireSessions(ctx, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, expired)

	got, err := s.Sessions().GetSession(ctx, stale.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StateExpired, got.State)

	// Terminal states are left alone.
	got, err = s.Sessions().GetSession(ctx, done.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StateCompleted, got.State)

	reaped, err := s.Sessions().DeleteSessionsExpiredBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 2, reaped)
}

func TestTransactionAtomicity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	tok := newToken("u1", time.Hour)
	require.NoError(t, s.Tokens().CreateToken(ctx, tok))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Tokens().MarkTokenUsed(ctx, tok.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Tokens().GetTokenByDigest(ctx, tok.TokenDigest)
	require.NoError(t, err)
	require.False(t, got.Used, "rolled-back consume must not stick")

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Tokens().MarkTokenUsed(ctx, tok.ID)
	}))

	got, err = s.Tokens().GetTokenByDigest(ctx, tok.TokenDigest)
	require.NoError(t, err)
	require.True(t, got.Used)
}

func TestEnrollmentUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Enrollments().UpsertEnrollment(ctx, domain.Enrollment{
		Identifier: "user@example.com",
		TOTPSecret: "SECRET",
	}))
	require.NoError(t, s.Enrollments().UpsertEnrollment(ctx, domain.Enrollment{
		Identifier: "user@example.com",
		TOTPSecret: "ROTATED",
	}))

	e, err := s.Enrollments().GetEnrollment(ctx, "user@example.com")
	require.NoError(t, err)
	require.Equal(t, "ROTATED", e.TOTPSecret)

	require.NoError(t, s.Enrollments().DeleteEnrollment(ctx, "user@example.com"))
	_, err = s.Enrollments().GetEnrollment(ctx, "user@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
