package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
	"github.com/aussiebroadwan/regain/internal/recovery/store"
)

type tokensRepo struct {
	q querier
}

const tokenColumns = `id, user_id, token_digest, used, created_at, expires_at`

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.RecoveryToken) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO recovery_tokens (`+tokenColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenDigest, t.Used, utc(t.CreatedAt), utc(t.ExpiresAt),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *tokensRepo) GetTokenByDigest(ctx context.Context, digest string) (domain.RecoveryToken, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+tokenColumns+` FROM recovery_tokens WHERE token_digest = ?`, digest)

	var t domain.RecoveryToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenDigest, &t.Used, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		return domain.RecoveryToken{}, mapNotFound(err)
	}
	return t, nil
}

// MarkTokenUsed is the single-use check-and-set: the conditional UPDATE
// succeeds for exactly one of any number of concurrent consumers.
func (r *tokensRepo) MarkTokenUsed(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE recovery_tokens SET used = 1 WHERE id = ? AND used = 0`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		row := r.q.QueryRowContext(ctx,
			`SELECT used FROM recovery_tokens WHERE id = ?`, id)
		var used bool
		if err := row.Scan(&used); err != nil {
			return mapNotFound(err)
		}
		return store.ErrConflict
	}
	return nil
}

func (r *tokensRepo) ListTokensByUser(ctx context.Context, userID string) ([]domain.RecoveryToken, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+tokenColumns+` FROM recovery_tokens
		WHERE user_id = ? ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []domain.RecoveryToken
	for rows.Next() {
		var t domain.RecoveryToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.TokenDigest, &t.Used, &t.CreatedAt, &t.ExpiresAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *tokensRepo) DeleteUserTokens(ctx context.Context, userID string) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM recovery_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *tokensRepo) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM recovery_tokens WHERE expires_at < ?`, utc(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *tokensRepo) CountTokens(ctx context.Context) (int64, error) {
	row := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM recovery_tokens`)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
