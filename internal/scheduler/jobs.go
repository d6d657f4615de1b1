/**
 * @description
 * Scheduled job implementations. The only job today lapses subscriptions
 * whose billing period has ended; the webhook path itself stays retry-free.
 */

package scheduler

import (
	"context"
	"log/slog"
)

// Repository defines database operations needed by the jobs.
type Repository interface {
	LapseExpiredSubscriptions(ctx context.Context) (int64, error)
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	repo   Repository
	logger *slog.Logger
}

// NewJobs creates a new Jobs runner.
func NewJobs(repo Repository, logger *slog.Logger) *Jobs {
	return &Jobs{repo: repo, logger: logger}
}

// LapseExpiredSubscriptions marks active subscriptions past their period end
// as expired.
func (j *Jobs) LapseExpiredSubscriptions() {
	j.logger.Info("starting subscription lapse job")
	ctx := context.Background()

	lapsed, err := j.repo.LapseExpiredSubscriptions(ctx)
	if err != nil {
		j.logger.Error("failed to lapse expired subscriptions", "error", err)
		return
	}
	if lapsed == 0 {
		j.logger.Info("no subscriptions to lapse")
		return
	}
	j.logger.Info("subscription lapse job finished", "lapsed", lapsed)
}
