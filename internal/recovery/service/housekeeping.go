package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/store"
)

// sessionRetention is how long expired session records are kept before being
// reaped. Long enough to debug a failed recovery, short enough to keep the
// table bounded.
const sessionRetention = 24 * time.Hour

// HousekeepingService periodically expires stale sessions and deletes
// expired token and session records. Correctness never depends on the sweep:
// consume and session operations enforce TTLs on their own.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the sweeper. A non-positive interval
// defaults to 10 minutes.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", "interval", s.Interval)
}

// Stop shuts the worker down, blocking until an in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// First sweep right away so a restart catches up promptly.
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep runs each cleanup independently; one failing never stops the others.
func (s *HousekeepingService) sweep() {
	ctx := context.Background()
	now := time.Now().UTC()

	if n, err := s.Store.Sessions().ExpireSessions(ctx, now); err != nil {
		s.Logger.Error("failed to expire stale sessions", "error", err)
	} else if n > 0 {
		s.Logger.Info("expired stale sessions", "count", n)
	}

	if n, err := s.Store.Tokens().DeleteExpiredTokens(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired tokens", "error", err)
	} else if n > 0 {
		s.Logger.Info("deleted expired tokens", "count", n)
	}

	cutoff := now.Add(-sessionRetention)
	if n, err := s.Store.Sessions().DeleteSessionsExpiredBefore(ctx, cutoff); err != nil {
		s.Logger.Error("failed to reap old sessions", "error", err)
	} else if n > 0 {
		s.Logger.Info("reaped old sessions", "count", n)
	}
}
