package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/repository"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/logger"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/metrics"
)

// Status is a user's quota position for the current day.
type Status struct {
	Allowed bool
	Limit   int
	Used    int
}

// Remaining returns how many deliveries are left today.
func (s Status) Remaining() int {
	return max(0, s.Limit-s.Used)
}

// Option applies a configuration option to the Gate.
type Option func(*Gate)

// WithLocation sets the timezone whose midnight starts a new day.
func WithLocation(loc *time.Location) Option {
	return func(g *Gate) {
		if loc != nil {
			g.loc = loc
		}
	}
}

// WithClock overrides the gate's clock.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLogger sets the gate's logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.log = l
		}
	}
}

// Gate combines plan limits with a Counter.
type Gate struct {
	counter Counter
	plans   repository.PlanStore
	loc     *time.Location
	now     func() time.Time
	log     logger.Logger
}

// NewGate creates a Gate.
func NewGate(counter Counter, plans repository.PlanStore, opts ...Option) *Gate {
	g := &Gate{
		counter: counter,
		plans:   plans,
		loc:     time.UTC,
		now:     time.Now,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gate) today() time.Time {
	return g.now().In(g.loc)
}

func (g *Gate) limit(ctx context.Context, userID string) (int, error) {
	plan, err := g.plans.Plan(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("quota: plan lookup: %w", err)
	}
	return plan.MaxDailyJobs, nil
}

// Check reports whether the user can receive more postings today.
func (g *Gate) Check(ctx context.Context, userID string) (Status, error) {
	limit, err := g.limit(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	used, err := g.counter.Used(ctx, userID, g.today())
	if err != nil {
		return Status{}, fmt.Errorf("quota: read counter: %w", err)
	}
	st := Status{Allowed: used < limit, Limit: limit, Used: used}
	if !st.Allowed {
		metrics.RecordQuotaDenied()
		g.log.Info(ctx, "daily quota exhausted",
			logger.String("user_id", userID), logger.Int("limit", limit))
	}
	return st, nil
}

// Reserve claims up to n deliveries for today. It returns ErrQuotaExceeded
// when nothing could be granted.
func (g *Gate) Reserve(ctx context.Context, userID string, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	limit, err := g.limit(ctx, userID)
	if err != nil {
		return 0, err
	}
	granted, err := g.counter.Reserve(ctx, userID, g.today(), limit, n)
	if err != nil {
		return 0, fmt.Errorf("quota: reserve: %w", err)
	}
	if granted == 0 {
		metrics.RecordQuotaDenied()
		return 0, ErrQuotaExceeded
	}
	return granted, nil
}
