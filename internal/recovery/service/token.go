package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
	"github.com/aussiebroadwan/regain/internal/recovery/store"
	"github.com/aussiebroadwan/regain/pkg/cryptox"
	"github.com/aussiebroadwan/regain/pkg/idx"
	"github.com/aussiebroadwan/regain/pkg/slogx"
)

// DefaultTokenTTL bounds how long an issued recovery token stays consumable.
const DefaultTokenTTL = 15 * time.Minute

// TokenService issues and consumes single-use recovery tokens. Plaintext
// tokens exist only in transit: the store holds a deterministic peppered
// digest, so possession of the database never yields a usable token.
type TokenService struct {
	Store    store.Store
	TokenTTL time.Duration
}

// TokenStats is the operational summary exposed on the stats endpoint.
type TokenStats struct {
	TotalTokens int64 `json:"total_tokens"`
}

func (s *TokenService) ttl() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return DefaultTokenTTL
}

// Issue mints a fresh opaque token for the user and persists its record.
// The returned plaintext is shown exactly once; it cannot be recovered from
// the stored digest.
func (s *TokenService) Issue(ctx context.Context, userID string) (string, domain.RecoveryToken, error) {
	return s.issue(ctx, s.Store, userID)
}

// issue is the tx-agnostic implementation, shared with the session manager
// which mints inside its own transaction.
func (s *TokenService) issue(ctx context.Context, st store.Store, userID string) (string, domain.RecoveryToken, error) {
	plaintext, err := cryptox.NewOpaqueToken(cryptox.TokenSize256)
	if err != nil {
		return "", domain.RecoveryToken{}, err
	}

	now := time.Now().UTC()
	token := domain.RecoveryToken{
		ID:          idx.New().String(),
		UserID:      userID,
		TokenDigest: cryptox.DigestToken(plaintext),
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl()),
	}

	if err := st.Tokens().CreateToken(ctx, token); err != nil {
		return "", domain.RecoveryToken{}, err
	}

	slogx.FromContext(ctx).Info("recovery token issued",
		slog.String("token_id", token.ID),
		slog.String("user_id", token.UserID),
		slog.Time("expires_at", token.ExpiresAt),
	)
	return plaintext, token, nil
}

// Consume atomically marks the token used and returns the owning user id.
// Exactly one concurrent consumer succeeds; the rest observe ErrTokenUsed.
func (s *TokenService) Consume(ctx context.Context, plaintext string) (string, error) {
	var userID string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		token, err := s.lookupLive(ctx, tx, plaintext)
		if err != nil {
			return err
		}
		if err := consumeToken(ctx, tx, token.ID); err != nil {
			return err
		}
		userID = token.UserID
		return nil
	})
	if err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Info("recovery token consumed", slog.String("user_id", userID))
	return userID, nil
}

// Validate reports whether the token would currently be accepted, without
// consuming it.
func (s *TokenService) Validate(ctx context.Context, plaintext string) (bool, string, error) {
	token, err := s.lookupLive(ctx, s.Store, plaintext)
	switch {
	case err == nil:
		return true, token.UserID, nil
	case errors.Is(err, ErrTokenNotFound),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenUsed):
		return false, "", nil
	default:
		return false, "", err
	}
}

// RevokeAll deletes every token owned by the user. Revocation is immediate:
// any in-flight consume that has not yet committed will fail its lookup.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) (int64, error) {
	revoked, err := s.Store.Tokens().DeleteUserTokens(ctx, userID)
	if err != nil {
		return 0, err
	}
	slogx.FromContext(ctx).Info("recovery tokens revoked",
		slog.String("user_id", userID),
		slog.Int64("revoked", revoked),
	)
	return revoked, nil
}

// Stats returns operational counters for diagnostics.
func (s *TokenService) Stats(ctx context.Context) (TokenStats, error) {
	total, err := s.Store.Tokens().CountTokens(ctx)
	if err != nil {
		return TokenStats{}, err
	}
	return TokenStats{TotalTokens: total}, nil
}

// lookupLive resolves the plaintext to a token record that is neither used
// nor past its TTL. Expiry is enforced here regardless of the background
// sweep.
func (s *TokenService) lookupLive(ctx context.Context, st store.Store, plaintext string) (domain.RecoveryToken, error) {
	token, err := st.Tokens().GetTokenByDigest(ctx, cryptox.DigestToken(plaintext))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.RecoveryToken{}, ErrTokenNotFound
		}
		return domain.RecoveryToken{}, err
	}
	if token.ExpiredAt(time.Now()) {
		return domain.RecoveryToken{}, ErrTokenExpired
	}
	if token.Used {
		return domain.RecoveryToken{}, ErrTokenUsed
	}
	return token, nil
}

// consumeToken performs the used=false -> true flip, mapping the store's
// conflict to the service error. Shared with session completion.
func consumeToken(ctx context.Context, st store.Store, tokenID string) error {
	err := st.Tokens().MarkTokenUsed(ctx, tokenID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrConflict):
		return ErrTokenUsed
	case errors.Is(err, store.ErrNotFound):
		return ErrTokenNotFound
	default:
		return err
	}
}
