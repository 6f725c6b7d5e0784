package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pennywise/expense-tracker/internal/api/metrics"
)

const defaultReapInterval = time.Hour

// SessionPruner is the part of ports.SessionRepository the reaper needs.
type SessionPruner interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// SessionReaper periodically deletes sessions that have expired. Expired
// sessions are already rejected at lookup, so the sweep only bounds table growth.
type SessionReaper struct {
	store    SessionPruner
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
	wg       sync.WaitGroup
}

// NewSessionReaper creates a reaper sweeping every interval.
// If interval <= 0, defaultReapInterval is used.
func NewSessionReaper(store SessionPruner, interval time.Duration, log zerolog.Logger) *SessionReaper {
	if interval <= 0 {
		interval = defaultReapInterval
	}
	return &SessionReaper{store: store, interval: interval, now: time.Now, log: log}
}

// Start launches the sweep goroutine. It stops when ctx is cancelled; Wait
// blocks until it has.
func (r *SessionReaper) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(ctx)
	}()
}

// Wait blocks until the goroutine started by Start has returned.
func (r *SessionReaper) Wait() {
	r.wg.Wait()
}

func (r *SessionReaper) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Prune(ctx); err != nil && ctx.Err() == nil {
				r.log.Error().Err(err).Msg("session sweep failed")
			}
		}
	}
}

// Prune runs one sweep and returns the number of sessions removed.
func (r *SessionReaper) Prune(ctx context.Context) (int64, error) {
	n, err := r.store.DeleteExpiredSessions(ctx, r.now())
	if err != nil {
		metrics.ReaperErrorsTotal.Inc()
		return 0, err
	}
	metrics.SessionsReapedTotal.Add(float64(n))
	if n > 0 {
		r.log.Info().Int64("removed", n).Msg("expired sessions pruned")
	}
	return n, nil
}
