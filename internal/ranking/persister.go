package ranking

import (
	"context"
	"fmt"
	"time"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/repository"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/model"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/logger"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/metrics"
)

// SaveReport summarizes a Save call.
type SaveReport struct {
	Written int
	Failed  int
}

// Persister writes ranked matches to a ScoreStore, one row per
// (user, posting). Rows that fail are logged; the others stay written.
type Persister struct {
	store repository.ScoreStore
	now   func() time.Time
	log   logger.Logger
}

var _ ScoreSaver = (*Persister)(nil)

// NewPersister creates a Persister over store.
func NewPersister(store repository.ScoreStore, opts ...PersisterOption) *Persister {
	p := &Persister{store: store, now: time.Now, log: logger.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Save upserts one score per match.
func (p *Persister) Save(ctx context.Context, userID string, matches []model.Match) SaveReport {
	if len(matches) == 0 {
		return SaveReport{}
	}
	at := p.now()
	scores := make([]model.Score, len(matches))
	for i, m := range matches {
		scores[i] = model.Score{
			UserID:       userID,
			PostingID:    m.Posting.ID,
			Total:        m.Total,
			Breakdown:    m.Breakdown,
			CalculatedAt: at,
		}
	}

	rep := SaveReport{Written: len(scores)}
	for i, err := range p.store.UpsertScores(ctx, scores) {
		if err == nil {
			continue
		}
		rep.Written--
		rep.Failed++
		p.log.Warn(ctx, "score upsert failed",
			logger.String("user_id", userID),
			logger.String("posting_id", scores[i].PostingID),
			logger.Error(fmt.Errorf("%w: %w", ErrStorePersist, err)))
	}
	metrics.RecordScoresPersisted(rep.Written, rep.Failed)
	return rep
}
