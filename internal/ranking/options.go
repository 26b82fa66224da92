package ranking

import (
	"time"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/scoring"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/logger"
)

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithWeights sets the default weights used when a request carries none.
func WithWeights(w scoring.Weights) Option {
	return func(r *Ranker) {
		if w.Validate() == nil {
			r.calc = scoring.New(scoring.WithWeights(w))
		}
	}
}

// WithOversample sets how many postings are fetched per requested result.
func WithOversample(factor int) Option {
	return func(r *Ranker) {
		if factor > 0 {
			r.oversample = factor
		}
	}
}

// WithSaver sets where ranked matches are persisted.
func WithSaver(s ScoreSaver) Option {
	return func(r *Ranker) {
		r.saver = s
	}
}

// WithRankerClock overrides the clock used to decide which postings are open.
func WithRankerClock(now func() time.Time) Option {
	return func(r *Ranker) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger of the Ranker.
func WithLogger(l logger.Logger) Option {
	return func(r *Ranker) {
		if l != nil {
			r.log = l
		}
	}
}

// PersisterOption applies a configuration option to the Persister.
type PersisterOption func(*Persister)

// WithClock overrides the CalculatedAt clock.
func WithClock(now func() time.Time) PersisterOption {
	return func(p *Persister) {
		if now != nil {
			p.now = now
		}
	}
}

// WithPersisterLogger sets the logger of the Persister.
func WithPersisterLogger(l logger.Logger) PersisterOption {
	return func(p *Persister) {
		if l != nil {
			p.log = l
		}
	}
}
