package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Task is a unit of background maintenance.
type Task func(ctx context.Context) error

// Scheduler runs a maintenance task on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	name    string
	task    Task
	timeout time.Duration
}

// NewScheduler creates a new scheduler instance. Each run of task is bounded by timeout.
func NewScheduler(schedule, name string, timeout time.Duration, task Task) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		name:    name,
		task:    task,
		timeout: timeout,
	}
	if _, err := s.cron.AddFunc(schedule, s.execute); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Run starts the scheduler and blocks until ctx is cancelled. A run that is in
// progress when ctx ends is allowed to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Info().Str("task", s.name).Msg("Starting background scheduler...")
	s.cron.Start()

	<-ctx.Done()

	log.Info().Str("task", s.name).Msg("Stopping background scheduler.")
	<-s.cron.Stop().Done()
	return nil
}

// execute performs one run of the task. Failures are logged and wait for the
// next tick.
func (s *Scheduler) execute() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.task(ctx); err != nil {
		log.Error().Err(err).Str("task", s.name).Msg("Scheduled task failed")
		return
	}
	log.Info().Str("task", s.name).Dur("duration", time.Since(start)).Msg("Scheduled task executed successfully")
}
