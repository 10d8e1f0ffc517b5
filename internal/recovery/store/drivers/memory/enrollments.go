package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
	"github.com/aussiebroadwan/regain/internal/recovery/store"
)

type enrollmentsRepo struct {
	lock *sync.Mutex // nil inside a transaction
	st   func() *state
}

func (r *enrollmentsRepo) UpsertEnrollment(ctx context.Context, e domain.Enrollment) error {
	defer acquire(r.lock)()
	st := r.st()

	now := time.Now().UTC()
	if existing, ok := st.enrollments[e.Identifier]; ok {
		e.CreatedAt = existing.CreatedAt
	} else {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	st.enrollments[e.Identifier] = e
	return nil
}

func (r *enrollmentsRepo) GetEnrollment(ctx context.Context, identifier string) (domain.Enrollment, error) {
	defer acquire(r.lock)()

	e, ok := r.st().enrollments[identifier]
	if !ok {
		return domain.Enrollment{}, store.ErrNotFound
	}
	return e, nil
}

func (r *enrollmentsRepo) DeleteEnrollment(ctx context.Context, identifier string) error {
	defer acquire(r.lock)()
	delete(r.st().enrollments, identifier)
	return nil
}
