package scheduler

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/logger"
)

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithSpec sets the cron spec, e.g. "@every 30m" or "0 9 * * *".
func WithSpec(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.spec = spec
		}
	}
}

// WithRate caps how many users per second a sweep enqueues. Zero or less
// means unlimited.
func WithRate(perSecond float64) Option {
	return func(s *Scheduler) {
		if perSecond > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithRunOnStart controls the immediate sweep done by Start.
func WithRunOnStart(enabled bool) Option {
	return func(s *Scheduler) {
		s.onStart = enabled
	}
}

// WithClock sets the clock used to stamp queued jobs.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}
