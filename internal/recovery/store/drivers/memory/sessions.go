package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
	"github.com/aussiebroadwan/regain/internal/recovery/store"
)

type sessionsRepo struct {
	lock *sync.Mutex // nil inside a transaction
	st   func() *state
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	defer acquire(r.lock)()
	st := r.st()

	if _, exists := st.sessions[s.ID]; exists {
		return store.ErrAlreadyExists
	}
	st.sessions[s.ID] = s
	if s.TokenID != "" {
		st.sessionByToken[s.TokenID] = s.ID
	}
	return nil
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	defer acquire(r.lock)()

	s, ok := r.st().sessions[id]
	if !ok {
		return domain.Session{}, store.ErrNotFound
	}
	return s, nil
}

func (r *sessionsRepo) GetSessionByTokenID(ctx context.Context, tokenID string) (domain.Session, error) {
	defer acquire(r.lock)()
	st := r.st()

	id, ok := st.sessionByToken[tokenID]
	if !ok {
		return domain.Session{}, store.ErrNotFound
	}
	return st.sessions[id], nil
}

func (r *sessionsRepo) UpdateSession(ctx context.Context, s domain.Session, expectState domain.SessionState) error {
	defer acquire(r.lock)()
	st := r.st()

	current, ok := st.sessions[s.ID]
	if !ok {
		return store.ErrNotFound
	}
	if current.State != expectState {
		return store.ErrConflict
	}

	s.CreatedAt = current.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	st.sessions[s.ID] = s
	if s.TokenID != "" {
		st.sessionByToken[s.TokenID] = s.ID
	}
	return nil
}

func (r *sessionsRepo) ExpireSessions(ctx context.Context, now time.Time) (int64, error) {
	defer acquire(r.lock)()
	st := r.st()

	var expired int64
	for id, s := range st.sessions {
		if !s.State.Terminal() && s.ExpiredAt(now) {
			s.State = domain.StateExpired
			s.UpdatedAt = now.UTC()
			st.sessions[id] = s
			expired++
		}
	}
	return expired, nil
}

func (r *sessionsRepo) DeleteSessionsExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	defer acquire(r.lock)()
	st := r.st()

	var deleted int64
	for id, s := range st.sessions {
		if s.ExpiresAt.Before(cutoff) {
			delete(st.sessions, id)
			if s.TokenID != "" {
				delete(st.sessionByToken, s.TokenID)
			}
			deleted++
		}
	}
	return deleted, nil
}
