// Package memory is the in-process store driver: maps guarded by a single
// mutex, plus secondary indexes for digest and user lookups. Suitable for
// tests, local development and single-replica deployments that accept losing
// in-flight recoveries on restart.
package memory

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
	"github.com/aussiebroadwan/regain/internal/recovery/store"
)

var errNestedTx = errors.New("memory: nested transactions not supported")

// state holds every table and index. All access goes through the owning
// Store's mutex, either per-call or for the span of a transaction.
type state struct {
	sessions       map[string]domain.Session // by session id
	sessionByToken map[string]string         // token id -> session id

	tokens        map[string]domain.RecoveryToken // by token record id
	tokenByDigest map[string]string               // digest -> token record id

	enrollments map[string]domain.Enrollment // by identifier
}

func newState() *state {
	return &state{
		sessions:       make(map[string]domain.Session),
		sessionByToken: make(map[string]string),
		tokens:         make(map[string]domain.RecoveryToken),
		tokenByDigest:  make(map[string]string),
		enrollments:    make(map[string]domain.Enrollment),
	}
}

// snapshot deep-copies the state so a rolled-back transaction can restore it.
func (st *state) snapshot() *state {
	return &state{
		sessions:       maps.Clone(st.sessions),
		sessionByToken: maps.Clone(st.sessionByToken),
		tokens:         maps.Clone(st.tokens),
		tokenByDigest:  maps.Clone(st.tokenByDigest),
		enrollments:    maps.Clone(st.enrollments),
	}
}

type Store struct {
	mu sync.Mutex
	st *state
}

func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) ApplyMigrations() error { return nil } // nothing to migrate

func (s *Store) Close() error { return nil }

func (s *Store) Ping(ctx context.Context) error { return nil }

// Tx locks the whole store for the duration of the transaction. Commit keeps
// the mutations; Rollback restores the snapshot taken here.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	s.mu.Lock()
	return &txStore{owner: s, before: s.st.snapshot()}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) Sessions() store.Sessions {
	return &sessionsRepo{lock: &s.mu, st: func() *state { return s.st }}
}

func (s *Store) Tokens() store.Tokens {
	return &tokensRepo{lock: &s.mu, st: func() *state { return s.st }}
}

func (s *Store) Enrollments() store.Enrollments {
	return &enrollmentsRepo{lock: &s.mu, st: func() *state { return s.st }}
}

type txStore struct {
	owner  *Store
	before *state
	done   bool
}

func (t *txStore) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.owner.mu.Unlock()
	return nil
}

func (t *txStore) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.owner.st = t.before
	t.owner.mu.Unlock()
	return nil
}

func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, errNestedTx }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errNestedTx
}

// Tx-scoped repos run with the owner's mutex already held.
func (t *txStore) Sessions() store.Sessions {
	return &sessionsRepo{st: func() *state { return t.owner.st }}
}

func (t *txStore) Tokens() store.Tokens {
	return &tokensRepo{st: func() *state { return t.owner.st }}
}

func (t *txStore) Enrollments() store.Enrollments {
	return &enrollmentsRepo{st: func() *state { return t.owner.st }}
}

// acquire locks for a single repo call. Inside a transaction lock is nil
// because the transaction already holds the mutex.
func acquire(lock *sync.Mutex) func() {
	if lock == nil {
		return func() {}
	}
	lock.Lock()
	return lock.Unlock
}
