// Package worker runs background matching passes pulled off the sweep queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/mq/queue"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/logger"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2
	poolShutdownTimeout     = 30 * time.Second
)

// Handler runs one matching pass for a queued user.
type Handler interface {
	Handle(ctx context.Context, job queue.Job) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, job queue.Job) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, job queue.Job) error { return f(ctx, job) }

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// InMemoryWorker drains jobs from a queue into a handler.
type InMemoryWorker struct {
	queue   Queue
	handler Handler
	name    string

	shutdown chan struct{}
	done     chan struct{}

	processed *atomic.Int64
	failed    *atomic.Int64

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker.
func NewInMemoryWorker(q Queue, h Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		handler:   h,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		processed: new(atomic.Int64),
		failed:    new(atomic.Int64),
		logger:    logger.OrNop().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(logger.String("worker", w.name))
	return w
}

// Run processes jobs until the queue channel closes, ctx is canceled or
// Shutdown is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) {
	start := time.Now()
	defer func() {
		// a panicking handler must not take the pool down
		if r := recover(); r != nil {
			w.failed.Add(1)
			w.logger.Error(ctx, "handler panicked",
				logger.String("user", job.UserID),
				logger.Any("panic", r),
			)
		}
	}()

	if err := w.handler.Handle(ctx, job); err != nil {
		w.failed.Add(1)
		w.logger.Error(ctx, "matching pass failed",
			logger.String("user", job.UserID),
			logger.String("trigger", job.Trigger),
			logger.Error(err),
		)
		return
	}
	w.processed.Add(1)
	metrics.RecordSweepUser()
	w.logger.Debug(ctx, "matching pass done",
		logger.String("user", job.UserID),
		logger.Duration("took", time.Since(start)),
		logger.Duration("waited", start.Sub(job.EnqueuedAt)),
	)
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	processed atomic.Int64
	failed    atomic.Int64

	logger logger.Logger
}

// NewPool creates workerCount workers reading q. A count below one defaults
// to twice the CPU count.
func NewPool(workerCount int, q Queue, h Handler, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.OrNop().Named("worker-pool"),
	}
	for i := range workerCount {
		wopts := append(append([]Option{}, opts...), WithName("worker-"+strconv.Itoa(i)))
		w := NewInMemoryWorker(q, h, wopts...)
		w.processed = &p.processed
		w.failed = &p.failed
		p.workers[i] = w
	}
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns how many jobs completed without error.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Failed returns how many jobs returned an error or panicked.
func (p *Pool) Failed() int64 { return p.failed.Load() }

// Shutdown closes the queue and waits for the workers to drain it. Workers
// still busy when ctx (or the pool timeout) expires are told to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Warn(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			close(w.shutdown)
			timedOut++
		}
	}
	if timedOut > 0 {
		p.logger.Warn(ctx, "workers did not drain in time", logger.Int("workers", timedOut))
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	p.logger.Info(ctx, "worker pool stopped",
		logger.Int("processed", int(p.processed.Load())),
		logger.Int("failed", int(p.failed.Load())),
	)
	return nil
}
