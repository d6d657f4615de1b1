/**
 * @description
 * Cron scheduler setup. Registers the subscription lapse sweep on the
 * configured schedule and runs it once at startup so a long-stopped
 * instance catches up immediately.
 */

package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps the cron runner.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
}

// New creates a scheduler with the lapse job registered.
func New(jobs *Jobs, schedule string, logger *slog.Logger) (*Scheduler, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, jobs.LapseExpiredSubscriptions); err != nil {
		return nil, err
	}
	return &Scheduler{cron: c, jobs: jobs, logger: logger}, nil
}

// Start runs the lapse job once, then starts the cron loop in the background.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")
	go s.jobs.LapseExpiredSubscriptions()
	s.cron.Start()
}

// Stop halts the cron loop. Running jobs finish on their own.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}
