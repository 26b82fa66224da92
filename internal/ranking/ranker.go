// Package ranking turns a user's preferences into an ordered list of matching
// postings and records the scores it produced.
package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/repository"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/model"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/scoring"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/logger"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/metrics"
)

const defaultOversample = 5

// Request describes one ranking call. The first preference's Threshold gates
// the call; an explicit 0 is honored and only nil falls back to
// model.DefaultThreshold.
type Request struct {
	UserID      string
	Preferences []model.Preference
	Limit       int
	// Weights overrides the ranker's weights for this call when set.
	Weights *scoring.Weights
	// Exclude lists posting IDs that are skipped before scoring.
	Exclude map[string]struct{}
}

// ScoreSaver persists ranked matches. Failures are reported, not returned.
type ScoreSaver interface {
	Save(ctx context.Context, userID string, matches []model.Match) SaveReport
}

// Ranker scores open postings against a user's preferences.
type Ranker struct {
	postings   repository.PostingSource
	calc       *scoring.Calculator
	saver      ScoreSaver
	oversample int
	now        func() time.Time
	log        logger.Logger
}

// NewRanker creates a Ranker reading from postings.
func NewRanker(postings repository.PostingSource, opts ...Option) *Ranker {
	r := &Ranker{
		postings:   postings,
		calc:       scoring.New(),
		oversample: defaultOversample,
		now:        time.Now,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank returns at most req.Limit matches at or above the threshold, best
// first. Postings with equal totals keep their newest-first fetch order.
//
// The threshold comes from the first preference for the whole call, even when
// another preference is the best fit for a posting.
func (r *Ranker) Rank(ctx context.Context, req Request) ([]model.Match, error) {
	if len(req.Preferences) == 0 || req.Limit <= 0 {
		return []model.Match{}, nil
	}

	calc := r.calc
	if req.Weights != nil {
		if err := req.Weights.Validate(); err != nil {
			r.log.Warn(ctx, "ignoring ranking request with invalid weights",
				logger.String("user_id", req.UserID), logger.Error(err))
			return []model.Match{}, nil
		}
		calc = scoring.New(scoring.WithWeights(*req.Weights))
	}

	start := time.Now()
	postings, err := r.postings.OpenPostings(ctx, r.now(), req.Limit*r.oversample+len(req.Exclude))
	if err != nil {
		metrics.RecordRankingError()
		return nil, fmt.Errorf("%w: %w", ErrStoreRead, err)
	}

	threshold := model.DefaultThreshold
	if th := req.Preferences[0].Threshold; th != nil {
		threshold = *th
	}

	matches := make([]model.Match, 0, len(postings))
	scored := 0
	for _, p := range postings {
		if _, skip := req.Exclude[p.ID]; skip {
			continue
		}
		scored++
		pref, _ := scoring.BestPreference(p, req.Preferences)
		total, breakdown := calc.Score(p, pref)
		metrics.RecordMatchScore(total)
		if total < threshold {
			continue
		}
		matches = append(matches, model.Match{
			Posting:      p,
			PreferenceID: pref.ID,
			Total:        total,
			Breakdown:    breakdown,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Total > matches[j].Total
	})
	if len(matches) > req.Limit {
		matches = matches[:req.Limit]
	}

	if r.saver != nil && len(matches) > 0 {
		if rep := r.saver.Save(ctx, req.UserID, matches); rep.Failed > 0 {
			r.log.Warn(ctx, "some match scores were not persisted",
				logger.String("user_id", req.UserID),
				logger.Int("written", rep.Written),
				logger.Int("failed", rep.Failed))
		}
	}

	metrics.RecordRanking(scored, float64(time.Since(start).Microseconds())/1000)
	r.log.Debug(ctx, "ranked postings",
		logger.String("user_id", req.UserID),
		logger.Int("scored", scored),
		logger.Int("matched", len(matches)),
		logger.Int("threshold", threshold))
	return matches, nil
}
