package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/queue"
)

// Scheduler enqueues periodic housekeeping tasks for the worker. Session
// validity never depends on it; the reaper only keeps the sessions table
// tidy.
type Scheduler struct {
	cron       *cron.Cron
	queue      queue.Enqueuer
	reaperSpec string
	log        zerolog.Logger
}

func NewScheduler(q queue.Enqueuer, reaperSpec string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:       c,
		queue:      q,
		reaperSpec: reaperSpec,
		log:        log.With().Str("component", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil || s.reaperSpec == "" {
		s.log.Info().Msg("scheduler disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.reaperSpec, s.enqueueSessionReap); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling; the returned context is done once running jobs
// have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) enqueueSessionReap() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.queue.Enqueue(ctx, queue.Task{Type: queue.TaskSessionReap}); err != nil {
		s.log.Error().Err(err).Msg("enqueue session reap failed")
	}
}
