package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
	"github.com/aussiebroadwan/regain/internal/recovery/store"
	"github.com/aussiebroadwan/regain/internal/recovery/store/drivers/memory"
	"github.com/aussiebroadwan/regain/pkg/idx"
	"github.com/stretchr/testify/require"
)

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

func TestTokensRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("create and lookup by digest", func(t *testing.T) {
		s := memory.NewStore()
		tok := newToken("u1", time.Hour)
		require.NoError(t, s.Tokens().CreateToken(ctx, tok))

		got, err := s.Tokens().GetTokenByDigest(ctx, tok.TokenDigest)
		require.NoError(t, err)
		require.Equal(t, tok.ID, got.ID)
		require.False(t, got.Used)
	})

	t.Run("digest uniqueness enforced", func(t *testing.T) {
		s := memory.NewStore()
		tok := newToken("u1", time.Hour)
		require.NoError(t, s.Tokens().CreateToken(ctx, tok))

		dup := newToken("u2", time.Hour)
		dup.TokenDigest = tok.TokenDigest
		require.ErrorIs(t, s.Tokens().CreateToken(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("mark used is single shot", func(t *testing.T) {
		s := memory.NewStore()
		tok := newToken("u1", time.Hour)
		require.NoError(t, s.Tokens().CreateToken(ctx, tok))

		require.NoError(t, s.Tokens().MarkTokenUsed(ctx, tok.ID))
		require.ErrorIs(t, s.Tokens().MarkTokenUsed(ctx, tok.ID), store.ErrConflict)
		require.ErrorIs(t, s.Tokens().MarkTokenUsed(ctx, "missing"), store.ErrNotFound)
	})

	t.Run("concurrent consumers race to one winner", func(t *testing.T) {
		s := memory.NewStore()
		tok := newToken("u1", time.Hour)
		require.NoError(t, s.Tokens().CreateToken(ctx, tok))

		const attempts = 50
		results := make(chan error, attempts)
		for range attempts {
			go func() {
				results <- s.Tokens().MarkTokenUsed(ctx, tok.ID)
			}()
		}

		var wins, conflicts int
		for range attempts {
			switch err := <-results; {
			case err == nil:
				wins++
			case errors.Is(err, store.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		require.Equal(t, 1, wins)
		require.Equal(t, attempts-1, conflicts)
	})

	t.Run("list and delete by user", func(t *testing.T) {
		s := memory.NewStore()
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
	})

	t.Run("expired sweep", func(t *testing.T) {
		s := memory.NewStore()
		require.NoError(t, s.Tokens().CreateToken(ctx, newToken("u", -time.Minute)))
		require.NoError(t, s.Tokens().CreateToken(ctx, newToken("u", time.Hour)))

		deleted, err := s.Tokens().DeleteExpiredTokens(ctx, time.Now())
		require.NoError(t, err)
		require.EqualValues(t, 1, deleted)
	})
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

func TestSessionsRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("conditional update enforces expected state", func(t *testing.T) {
		s := memory.NewStore()
		sess := newSession(domain.StateStarted, time.Hour)
		require.NoError(t, s.Sessions().CreateSession(ctx, sess))

		sess.State = domain.StateVerified
		require.NoError(t, s.Sessions().UpdateSession(ctx, sess, domain.StateStarted))

		// The session is VERIFIED now, so the same expectation fails.
		sess.State = domain.StateCompleted
		require.ErrorIs(t,
			s.Sessions().UpdateSession(ctx, sess, domain.StateStarted),
			store.ErrConflict)

		missing := newSession(domain.StateStarted, time.Hour)
		require.ErrorIs(t,
			s.Sessions().UpdateSession(ctx, missing, domain.StateStarted),
			store.ErrNotFound)
	})

	t.Run("token id index", func(t *testing.T) {
		s := memory.NewStore()
		sess := newSession(domain.StateStarted, time.Hour)
		require.NoError(t, s.Sessions().CreateSession(ctx, sess))

		sess.State = domain.StateVerified
		sess.TokenID = "tok-1"
		require.NoError(t, s.Sessions().UpdateSession(ctx, sess, domain.StateStarted))

		got, err := s.Sessions().GetSessionByTokenID(ctx, "tok-1")
		require.NoError(t, err)
		require.Equal(t, sess.ID, got.ID)
	})

	t.Run("expire sweep skips terminal sessions", func(t *testing.T) {
		s := memory.NewStore()
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

		got, err = s.Sessions().GetSession(ctx, done.ID)
		require.NoError(t, err)
		require.Equal(t, domain.StateCompleted, got.State)
	})
}

func TestTransactionRollback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := memory.NewStore()
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

	// The failed transaction must not have consumed the token.
	got, err := s.Tokens().GetTokenByDigest(ctx, tok.TokenDigest)
	require.NoError(t, err)
	require.False(t, got.Used)

	// And a successful one does.
	err = s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Tokens().MarkTokenUsed(ctx, tok.ID)
	})
	require.NoError(t, err)

	got, err = s.Tokens().GetTokenByDigest(ctx, tok.TokenDigest)
	require.NoError(t, err)
	require.True(t, got.Used)
}

func TestEnrollmentsRepo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := memory.NewStore()
	require.NoError(t, s.Enrollments().UpsertEnrollment(ctx, domain.Enrollment{
		Identifier: "user@example.com",
		TOTPSecret: "SECRET",
	}))

	e, err := s.Enrollments().GetEnrollment(ctx, "user@example.com")
	require.NoError(t, err)
	require.Equal(t, "SECRET", e.TOTPSecret)

	require.NoError(t, s.Enrollments().UpsertEnrollment(ctx, domain.Enrollment{
		Identifier: "user@example.com",
		TOTPSecret: "ROTATED",
	}))
	e, err = s.Enrollments().GetEnrollment(ctx, "user@example.com")
	require.NoError(t, err)
	require.Equal(t, "ROTATED", e.TOTPSecret)

	require.NoError(t, s.Enrollments().DeleteEnrollment(ctx, "user@example.com"))
	_, err = s.Enrollments().GetEnrollment(ctx, "user@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
