package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
	"github.com/aussiebroadwan/regain/internal/recovery/store"
)

type sessionsRepo struct {
	q querier
}

const sessionColumns = `id, identifier, user_id, state, risk, token_id, created_at, expires_at, updated_at`

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	risk, err := marshalRisk(s.Risk)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO recovery_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Identifier, s.UserID, string(s.State), risk, s.TokenID,
		utc(s.CreatedAt), utc(s.ExpiresAt), utc(s.UpdatedAt),
	)
	return err
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM recovery_sessions WHERE id = ?`, id)
	return scanSession(row)
}

func (r *sessionsRepo) GetSessionByTokenID(ctx context.Context, tokenID string) (domain.Session, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM recovery_sessions WHERE token_id = ?`, tokenID)
	return scanSession(row)
}

func (r *sessionsRepo) UpdateSession(ctx context.Context, s domain.Session, expectState domain.SessionState) error {
	risk, err := marshalRisk(s.Risk)
	if err != nil {
		return err
	}

	res, err := r.q.ExecContext(ctx, `
		UPDATE recovery_sessions
		SET state = ?, risk = ?, token_id = ?, updated_at = ?
		WHERE id = ? AND state = ?`,
		string(s.State), risk, s.TokenID, utc(time.Now()),
		s.ID, string(expectState),
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish a missing session from one that moved on.
		if _, err := r.GetSession(ctx, s.ID); err != nil {
			return err
		}
		return store.ErrConflict
	}
	return nil
}

func (r *sessionsRepo) ExpireSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE recovery_sessions
		SET state = ?, updated_at = ?
		WHERE expires_at < ? AND state NOT IN (?, ?, ?)`,
		string(domain.StateExpired), utc(now), utc(now),
		string(domain.StateCompleted), string(domain.StateBlocked), string(domain.StateExpired),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *sessionsRepo) DeleteSessionsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM recovery_sessions WHERE expires_at < ?`, utc(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		s     domain.Session
		state string
		risk  string
	)
	err := row.Scan(
		&s.ID, &s.Identifier, &s.UserID, &state, &risk, &s.TokenID,
		&s.CreatedAt, &s.ExpiresAt, &s.UpdatedAt,
	)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}

	s.State = domain.SessionState(state)
	s.Risk, err = unmarshalRisk(risk)
	if err != nil {
		return domain.Session{}, err
	}
	return s, nil
}
