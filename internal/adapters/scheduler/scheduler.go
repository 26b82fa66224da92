// Package scheduler runs the periodic sweep that queues every user with
// preferences for a background matching pass.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/mq/queue"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/repository"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/logger"
)

// TriggerSweep marks jobs queued by the periodic sweep.
const TriggerSweep = "sweep"

// ErrSweepRunning is returned by Sweep when a previous sweep has not finished.
var ErrSweepRunning = errors.New("sweep already running")

// Enqueuer accepts jobs without blocking.
type Enqueuer interface {
	Enqueue(ctx context.Context, j queue.Job) bool
}

// Report summarises one sweep.
type Report struct {
	Users    int
	Enqueued int
	Dropped  int
}

// Scheduler wraps robfig/cron and owns the sweep loop.
type Scheduler struct {
	cron    *cron.Cron
	users   repository.UserLister
	queue   Enqueuer
	spec    string
	limiter *rate.Limiter
	onStart bool
	now     func() time.Time
	logger  logger.Logger

	running atomic.Bool
}

// New creates a scheduler that sweeps users into q.
func New(users repository.UserLister, q Enqueuer, opts ...Option) *Scheduler {
	s := &Scheduler{
		users:   users,
		queue:   q,
		spec:    "@every 1h",
		limiter: rate.NewLimiter(rate.Inf, 1),
		onStart: true,
		now:     time.Now,
		logger:  logger.OrNop().Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = cron.New(cron.WithLogger(CronLogger(s.logger)))
	return s
}

// Start registers the sweep and starts cron. Unless disabled, one sweep also
// runs right away so users are served without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info(ctx, "cron started", logger.String("spec", s.spec))

	if s.onStart {
		go s.run(ctx)
	}
	return nil
}

// Stop stops cron and waits for a running sweep to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn(ctx, "sweep still running at shutdown")
	}
	s.logger.Info(ctx, "cron stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	report, err := s.Sweep(ctx)
	switch {
	case errors.Is(err, ErrSweepRunning):
		s.logger.Warn(ctx, "previous sweep still running, skipping tick")
	case err != nil:
		s.logger.Error(ctx, "sweep failed", logger.Error(err))
	default:
		s.logger.Info(ctx, "sweep complete",
			logger.Int("users", report.Users),
			logger.Int("enqueued", report.Enqueued),
			logger.Int("dropped", report.Dropped),
		)
	}
}

// Sweep lists users with preferences and queues one job per user, at most
// the configured rate per second. Users that do not fit in the queue are
// dropped and picked up by the next sweep.
func (s *Scheduler) Sweep(ctx context.Context) (Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return Report{}, ErrSweepRunning
	}
	defer s.running.Store(false)

	ids, err := s.users.UsersWithPreferences(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list users: %w", err)
	}

	report := Report{Users: len(ids)}
	for _, id := range ids {
		if err := s.limiter.Wait(ctx); err != nil {
			return report, fmt.Errorf("sweep interrupted: %w", err)
		}
		if s.queue.Enqueue(ctx, queue.Job{UserID: id, Trigger: TriggerSweep, EnqueuedAt: s.now()}) {
			report.Enqueued++
			continue
		}
		report.Dropped++
		s.logger.Debug(ctx, "queue full, user dropped", logger.String("user", id))
	}
	return report, nil
}
