package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
	"github.com/aussiebroadwan/regain/internal/recovery/store"
)

type tokensRepo struct {
	lock *sync.Mutex // nil inside a transaction
	st   func() *state
}

func (r *tokensRepo) CreateToken(ctx context.Context, t domain.RecoveryToken) error {
	defer acquire(r.lock)()
	st := r.st()

	if _, exists := st.tokenByDigest[t.TokenDigest]; exists {
		return store.ErrAlreadyExists
	}
	if _, exists := st.tokens[t.ID]; exists {
		return store.ErrAlreadyExists
	}

	st.tokens[t.ID] = t
	st.tokenByDigest[t.TokenDigest] = t.ID
	return nil
}

func (r *tokensRepo) GetTokenByDigest(ctx context.Context, digest string) (domain.RecoveryToken, error) {
	defer acquire(r.lock)()
	st := r.st()

	id, ok := st.tokenByDigest[digest]
	if !ok {
		return domain.RecoveryToken{}, store.ErrNotFound
	}
	return st.tokens[id], nil
}

func (r *tokensRepo) MarkTokenUsed(ctx context.Context, id string) error {
	defer acquire(r.lock)()
	st := r.st()

	t, ok := st.tokens[id]
	if !ok {
		return store.ErrNotFound
	}
	if t.Used {
		return store.ErrConflict
	}

	t.Used = true
	st.tokens[id] = t
	return nil
}

func (r *tokensRepo) ListTokensByUser(ctx context.Context, userID string) ([]domain.RecoveryToken, error) {
	defer acquire(r.lock)()

	var tokens []domain.RecoveryToken
	for _, t := range r.st().tokens {
		if t.UserID == userID {
			tokens = append(tokens, t)
		}
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].CreatedAt.Before(tokens[j].CreatedAt)
	})
	return tokens, nil
}

func (r *tokensRepo) DeleteUserTokens(ctx context.Context, userID string) (int64, error) {
	defer acquire(r.lock)()
	st := r.st()

	var deleted int64
	for id, t := range st.tokens {
		if t.UserID == userID {
			delete(st.tokens, id)
			delete(st.tokenByDigest, t.TokenDigest)
			deleted++
		}
	}
	return deleted, nil
}

func (r *tokensRepo) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	defer acquire(r.lock)()
	st := r.st()

	var deleted int64
	for id, t := range st.tokens {
		if t.ExpiresAt.Before(now) {
			delete(st.tokens, id)
			delete(st.tokenByDigest, t.TokenDigest)
			deleted++
		}
	}
	return deleted, nil
}

func (r *tokensRepo) CountTokens(ctx context.Context) (int64, error) {
	defer acquire(r.lock)()
	return int64(len(r.st().tokens)), nil
}
