package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
)

type enrollmentsRepo struct {
	q querier
}

func (r *enrollmentsRepo) UpsertEnrollment(ctx context.Context, e domain.Enrollment) error {
	now := utc(time.Now())
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO enrollments (identifier, totp_secret, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (identifier) DO UPDATE SET
			totp_secret = excluded.totp_secret,
			updated_at = excluded.updated_at`,
		e.Identifier, e.TOTPSecret, now, now,
	)
	return err
}

func (r *enrollmentsRepo) GetEnrollment(ctx context.Context, identifier string) (domain.Enrollment, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT identifier, totp_secret, created_at, updated_at
		FROM enrollments WHERE identifier = ?`, identifier)

	var e domain.Enrollment
	err := row.Scan(&e.Identifier, &e.TOTPSecret, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.Enrollment{}, mapNotFound(err)
	}
	return e, nil
}

func (r *enrollmentsRepo) DeleteEnrollment(ctx context.Context, identifier string) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM enrollments WHERE identifier = ?`, identifier)
	return err
}
