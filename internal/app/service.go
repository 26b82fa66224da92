// Package service wires ranking, quota, sent-job tracking and priority alerts
// into the operations exposed by the HTTP API and the background sweep.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/mq/queue"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/mq/worker"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/repository"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/scheduler"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/alerts"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/dedupe"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/model"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/scoring"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/quota"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/ranking"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/logger"
)

// TriggerManual marks jobs queued through Refresh.
const TriggerManual = "manual"

// Delivery is what one matching pass handed to a user.
type Delivery struct {
	Matches  []model.Match
	Quota    quota.Status
	// Degraded is set when a dependency failed and an empty list was returned.
	Degraded bool
}

// Stats is a snapshot of the background machinery.
type Stats struct {
	Started        bool  `json:"started"`
	Workers        int   `json:"workers"`
	QueueLength    int   `json:"queueLength"`
	QueueCapacity  int   `json:"queueCapacity"`
	Processed      int64 `json:"processed"`
	Failed         int64 `json:"failed"`
	AlertCacheSize int64 `json:"alertCacheSize"`
}

// Service implements the API dependencies of the matching engine.
type Service struct {
	mu sync.Mutex

	store repository.Store

	ranker   *ranking.Ranker
	quota    *quota.Gate
	notifier *alerts.Notifier
	deduper  dedupe.Deduper

	queue     *queue.InMemoryQueue
	pool      *worker.Pool
	scheduler *scheduler.Scheduler

	// Configuration
	weights      scoring.Weights
	oversample   int
	defaultLimit int
	maxLimit     int
	workerCount  int
	queueSize    int
	dedupeSize   int
	sweepSpec    string
	sweepRate    float64
	channel      model.Channel
	loc          *time.Location
	now          func() time.Time

	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New builds a Service over store. counter backs daily quotas and dispatcher
// receives recorded priority alerts.
func New(store repository.Store, counter quota.Counter, dispatcher alerts.Dispatcher, opts ...Option) *Service {
	s := &Service{
		store:        store,
		weights:      scoring.DefaultWeights(),
		oversample:   5,
		defaultLimit: 10,
		maxLimit:     50,
		workerCount:  runtime.NumCPU() * 2,
		queueSize:    10_000,
		dedupeSize:   100_000,
		sweepSpec:    "@every 1h",
		sweepRate:    20,
		channel:      model.ChannelWhatsApp,
		loc:          time.UTC,
		now:          time.Now,
		logger:       logger.OrNop().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ranker = ranking.NewRanker(store,
		ranking.WithWeights(s.weights),
		ranking.WithOversample(s.oversample),
		ranking.WithRankerClock(s.now),
		ranking.WithLogger(s.logger.Named("ranking")),
		ranking.WithSaver(ranking.NewPersister(store,
			ranking.WithClock(s.now),
			ranking.WithPersisterLogger(s.logger.Named("persister")),
		)),
	)
	s.quota = quota.NewGate(counter, store,
		quota.WithLocation(s.loc),
		quota.WithClock(s.now),
		quota.WithLogger(s.logger.Named("quota")),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.notifier = alerts.NewNotifier(
		alerts.NewGate(store, store, alerts.WithDeduper(s.deduper)),
		store, store, dispatcher,
		alerts.WithClock(s.now),
		alerts.WithLogger(s.logger.Named("alerts")),
	)
	return s
}

// Start launches the sweep worker pool and, when a schedule is configured,
// the periodic sweep.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, worker.HandlerFunc(s.HandleJob),
		worker.WithLogger(s.logger.Named("worker")))
	s.pool.Start(runCtx)

	if s.sweepSpec != "" {
		s.scheduler = scheduler.New(s.store, s.queue,
			scheduler.WithSpec(s.sweepSpec),
			scheduler.WithRate(s.sweepRate),
			scheduler.WithClock(s.now),
			scheduler.WithLogger(s.logger.Named("scheduler")),
		)
		if err := s.scheduler.Start(runCtx); err != nil {
			cancel()
			_ = s.pool.Shutdown(ctx)
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	s.cancel = cancel
	s.started = true
	s.logger.Info(ctx, "matching service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.String("sweep", s.sweepSpec),
	)
	return nil
}

// Stop halts the sweep, drains queued users and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping matching service")

	if s.scheduler != nil {
		s.scheduler.Stop(ctx)
	}
	err := s.pool.Shutdown(ctx)
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "matching service stopped")
	return err
}

// Matches ranks open postings for the user, charges the ones not sent before
// against the daily quota and records them as sent. Failures are logged and degrade to an empty
// delivery; only a missing user ID is an error.
func (s *Service) Matches(ctx context.Context, userID string, limit int) (Delivery, error) {
	if userID == "" {
		return Delivery{Matches: []model.Match{}}, fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}
	d, err := s.deliver(ctx, userID, s.clampLimit(limit), false)
	if err != nil {
		s.logger.Error(ctx, "matching degraded to an empty list",
			logger.String("user_id", userID), logger.Error(err))
		return Delivery{Matches: []model.Match{}, Quota: d.Quota, Degraded: true}, nil
	}
	return d, nil
}

func (s *Service) clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return s.defaultLimit
	case limit > s.maxLimit:
		return s.maxLimit
	default:
		return limit
	}
}

// deliver ranks and records a delivery. Only postings never sent to the user
// are charged against the quota. With fresh set, already-sent postings are
// left out of the ranking so new ones can take their slots.
func (s *Service) deliver(ctx context.Context, userID string, limit int, fresh bool) (Delivery, error) {
	var (
		prefs  []model.Preference
		status quota.Status
		sent   map[string]struct{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prefs, err = s.store.Preferences(gctx, userID)
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		status, err = s.quota.Check(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		sent, err = s.store.SentPostingIDs(gctx, userID)
		if err != nil {
			return fmt.Errorf("load sent jobs: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Delivery{}, err
	}

	d := Delivery{Matches: []model.Match{}, Quota: status}
	if !status.Allowed || len(prefs) == 0 {
		return d, nil
	}

	req := ranking.Request{
		UserID:      userID,
		Preferences: prefs,
		Limit:       min(limit, status.Remaining()),
	}
	if fresh {
		req.Exclude = sent
	}
	matches, err := s.ranker.Rank(ctx, req)
	if err != nil {
		return d, err
	}

	var newIDs []string
	for _, m := range matches {
		if _, ok := sent[m.Posting.ID]; !ok {
			newIDs = append(newIDs, m.Posting.ID)
		}
	}

	granted := 0
	if len(newIDs) > 0 {
		granted, err = s.quota.Reserve(ctx, userID, len(newIDs))
		if errors.Is(err, quota.ErrQuotaExceeded) {
			// another pass used the remaining quota between Check and Reserve
			d.Quota.Allowed = false
			d.Quota.Used = d.Quota.Limit
			return d, nil
		}
		if err != nil {
			return d, err
		}
		newIDs = newIDs[:granted]
	}

	kept := 0
	for _, m := range matches {
		if _, ok := sent[m.Posting.ID]; !ok {
			if kept == granted {
				continue
			}
			kept++
		}
		d.Matches = append(d.Matches, m)
	}

	if len(newIDs) > 0 {
		if err := s.store.RecordSent(ctx, userID, newIDs, s.now()); err != nil {
			s.logger.Warn(ctx, "failed to record sent jobs",
				logger.String("user_id", userID), logger.Int("count", len(newIDs)), logger.Error(err))
		}
	}

	d.Quota.Used += granted
	d.Quota.Allowed = d.Quota.Used < d.Quota.Limit
	return d, nil
}

// HandleJob runs a background matching pass over postings the user has not
// been sent yet and raises priority alerts for delivered matches at or above
// alerts.HighMatchThreshold.
func (s *Service) HandleJob(ctx context.Context, job queue.Job) error {
	d, err := s.deliver(ctx, job.UserID, s.defaultLimit, true)
	if err != nil {
		return err
	}
	var failed int
	for _, m := range d.Matches {
		if m.Total < alerts.HighMatchThreshold {
			continue
		}
		if _, err := s.notifier.Notify(ctx, alerts.Request{
			UserID:    job.UserID,
			PostingID: m.Posting.ID,
			Channel:   s.channel,
		}); err != nil {
			failed++
			s.logger.Error(ctx, "priority alert failed",
				logger.String("user_id", job.UserID),
				logger.String("posting_id", m.Posting.ID),
				logger.Error(err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d priority alerts failed", failed, len(d.Matches))
	}
	return nil
}

// Refresh queues a background matching pass for the user.
func (s *Service) Refresh(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}
	s.mu.Lock()
	q := s.queue
	started := s.started
	s.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	if !q.Enqueue(ctx, queue.Job{UserID: userID, Trigger: TriggerManual, EnqueuedAt: s.now()}) {
		return ErrQueueFull
	}
	return nil
}

// PriorityAlert runs the priority alert workflow for one delivered posting.
func (s *Service) PriorityAlert(ctx context.Context, req alerts.Request) (alerts.Result, error) {
	if req.UserID == "" || req.PostingID == "" {
		return alerts.Result{}, fmt.Errorf("%w: user and posting ids are required", ErrInvalidRequest)
	}
	if req.Channel == "" {
		req.Channel = s.channel
	}
	return s.notifier.Notify(ctx, req)
}

// UpdateSentStatus records what the user did with a delivered posting.
func (s *Service) UpdateSentStatus(ctx context.Context, userID, postingID, status string) error {
	if userID == "" || postingID == "" {
		return fmt.Errorf("%w: user and posting ids are required", ErrInvalidRequest)
	}
	st, err := model.ParseSentStatus(status)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return s.store.UpdateStatus(ctx, userID, postingID, st)
}

// Quota reports the user's delivery allowance for today.
func (s *Service) Quota(ctx context.Context, userID string) (quota.Status, error) {
	if userID == "" {
		return quota.Status{}, fmt.Errorf("%w: user id is required", ErrInvalidRequest)
	}
	return s.quota.Check(ctx, userID)
}

// GetStats returns a snapshot for monitoring.
func (s *Service) GetStats(ctx context.Context) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Started:        s.started,
		QueueCapacity:  s.queueSize,
		AlertCacheSize: s.deduper.Size(),
	}
	if s.started {
		st.Workers = s.pool.Size()
		st.QueueLength = s.queue.Len(ctx)
		st.Processed = s.pool.Processed()
		st.Failed = s.pool.Failed()
	}
	return st
}
