package service

import (
	"time"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/model"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/scoring"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWeights sets the scoring weights.
func WithWeights(w scoring.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithOversample sets how many postings are fetched per requested match.
func WithOversample(factor int) Option {
	return func(s *Service) {
		if factor > 0 {
			s.oversample = factor
		}
	}
}

// WithLimits sets the default and maximum number of matches per call.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(s *Service) {
		if defaultLimit > 0 && maxLimit >= defaultLimit {
			s.defaultLimit = defaultLimit
			s.maxLimit = maxLimit
		}
	}
}

// WithWorkerCount sets the number of sweep workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the sweep queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the alert dedupe cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSweep sets the sweep cron spec and enqueue rate. An empty spec
// disables the periodic sweep; manual refreshes still work.
func WithSweep(spec string, perSecond float64) Option {
	return func(s *Service) {
		s.sweepSpec = spec
		s.sweepRate = perSecond
	}
}

// WithChannel sets the channel priority alerts are issued on.
func WithChannel(c model.Channel) Option {
	return func(s *Service) {
		if c != "" {
			s.channel = c
		}
	}
}

// WithLocation sets the zone whose midnight resets daily quotas.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the service clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
