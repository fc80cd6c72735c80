// Package jobs runs periodic maintenance on the gocron scheduler.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sangkips/retailpos-api/internal/domain/repository"
	"github.com/sangkips/retailpos-api/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

const runTimeout = 2 * time.Minute

// Job is a named task that reports how many records it touched
type Job struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) (int64, error)
}

// Scheduler wraps a gocron scheduler with logging and run metrics
type Scheduler struct {
	cron    *gocron.Scheduler
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewScheduler creates a scheduler in UTC. Jobs of the same name never overlap.
func NewScheduler(m *metrics.Metrics, logger *zap.Logger) *Scheduler {
	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()
	return &Scheduler{
		cron:    cron,
		metrics: m,
		logger:  logger.Named("jobs"),
	}
}

// Register schedules job at its interval. The first run happens one interval
// after Start.
func (s *Scheduler) Register(job Job) error {
	if job.Every <= 0 {
		return fmt.Errorf("job %s: interval must be positive", job.Name)
	}
	if job.Run == nil {
		return errors.New("job " + job.Name + " has no run func")
	}
	if _, err := s.cron.Every(job.Every).WaitForSchedule().Do(s.execute, job); err != nil {
		return fmt.Errorf("schedule job %s: %w", job.Name, err)
	}
	s.logger.Info("job scheduled", zap.String("job", job.Name), zap.Duration("every", job.Every))
	return nil
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.StartAsync()
}

// Stop halts the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) execute(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	start := time.Now()
	n, err := job.Run(ctx)
	if s.metrics != nil {
		s.metrics.JobRunsTotal.WithLabelValues(job.Name, metrics.Result(err)).Inc()
	}
	if err != nil {
		s.logger.Error("job failed", zap.String("job", job.Name), zap.Error(err))
		return
	}
	s.logger.Info("job finished",
		zap.String("job", job.Name),
		zap.Int64("affected", n),
		zap.Duration("took", time.Since(start)),
	)
}

// IdempotencyCleanup removes expired idempotency keys
func IdempotencyCleanup(repo repository.IdempotencyRepository, every time.Duration) Job {
	return Job{
		Name:  "idempotency_cleanup",
		Every: every,
		Run:   repo.DeleteExpired,
	}
}

// CartPurger deletes carts that have not changed for a while
type CartPurger interface {
	PurgeStale(ctx context.Context, ttl time.Duration) (int64, error)
}

// StaleCartSweep deletes carts untouched for longer than ttl
func StaleCartSweep(carts CartPurger, every, ttl time.Duration) Job {
	return Job{
		Name:  "stale_cart_sweep",
		Every: every,
		Run: func(ctx context.Context) (int64, error) {
			return carts.PurgeStale(ctx, ttl)
		},
	}
}
