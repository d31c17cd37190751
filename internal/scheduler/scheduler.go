// Package scheduler triggers recurring analysis runs on a cron cadence so
// the persisted results track refreshed input assumptions.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one schedulable unit of work. Errors are logged, not fatal: a failed
// run must never stop the cadence.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner with context propagation and overlap
// suppression per job.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a stopped scheduler.
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds a named job on the given cron spec. A job still running when
// its next tick arrives is skipped, not stacked.
func (s *Scheduler) Register(spec, name string, timeout time.Duration, job Job) error {
	var running sync.Mutex

	id, err := s.cron.AddFunc(spec, func() {
		if !running.TryLock() {
			s.log.Warn().Str("job", name).Msg("previous invocation still running, skipping tick")
			return
		}
		defer running.Unlock()

		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		started := time.Now()
		if err := job(ctx); err != nil {
			s.log.Error().Err(err).Str("job", name).Msg("scheduled job failed")
			return
		}
		s.log.Info().Str("job", name).Dur("elapsed", time.Since(started)).Msg("scheduled job complete")
	})
	if err != nil {
		return fmt.Errorf("registering job %s on spec %q: %w", name, spec, err)
	}

	s.log.Info().Str("job", name).Str("spec", spec).Int("entry_id", int(id)).Msg("job registered")
	return nil
}

// Start begins dispatching ticks in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop halts dispatch and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}
