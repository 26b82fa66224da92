// Package alerts decides which matches deserve a priority notification and
// records the ones that were issued.
package alerts

import (
	"context"
	"errors"
	"fmt"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/repository"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/dedupe"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/model"
)

// HighMatchThreshold is the fixed score a stored match needs to qualify for a
// priority alert. It is independent of the user's own threshold.
const HighMatchThreshold = 80

// GateOption applies a configuration option to the Gate.
type GateOption func(*Gate)

// WithDeduper sets the in-process fast path in front of the alert store.
func WithDeduper(d dedupe.Deduper) GateOption {
	return func(g *Gate) {
		if d != nil {
			g.seen = d
		}
	}
}

// Gate answers high-match questions and records alerts.
type Gate struct {
	scores repository.ScoreStore
	alerts repository.AlertStore
	seen   dedupe.Deduper
}

// NewGate creates a Gate.
func NewGate(scores repository.ScoreStore, alerts repository.AlertStore, opts ...GateOption) *Gate {
	g := &Gate{
		scores: scores,
		alerts: alerts,
		seen:   dedupe.NewInMemoryDeduper(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsHighMatch reports whether a stored score for the pair reaches
// HighMatchThreshold. A missing score is not an error.
func (g *Gate) IsHighMatch(ctx context.Context, userID, postingID string) (bool, error) {
	_, high, err := g.highMatch(ctx, userID, postingID)
	return high, err
}

func (g *Gate) highMatch(ctx context.Context, userID, postingID string) (model.Score, bool, error) {
	sc, err := g.scores.Score(ctx, userID, postingID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Score{}, false, nil
	}
	if err != nil {
		return model.Score{}, false, fmt.Errorf("alerts: read score: %w", err)
	}
	return sc, sc.Total >= HighMatchThreshold, nil
}

// RecordAlert stores alert. recorded is false when the pair already had one.
func (g *Gate) RecordAlert(ctx context.Context, alert model.Alert) (recorded bool, err error) {
	key := dedupe.Key(alert.UserID, alert.PostingID)
	if g.seen.SeenAndRecord(ctx, key) {
		return false, nil
	}
	ok, err := g.alerts.InsertAlert(ctx, alert)
	if err != nil {
		g.seen.Unrecord(ctx, key)
		return false, fmt.Errorf("%w: %w", ErrAlertPersist, err)
	}
	return ok, nil
}
