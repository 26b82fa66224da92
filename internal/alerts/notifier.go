package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/repository"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/model"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/logger"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/metrics"
)

// Badge marks priority messages.
const Badge = "⭐ VAGA RECOMENDADA"

// Outcome is the result of a Notify call.
type Outcome string

const (
	OutcomeSent         Outcome = "sent"
	OutcomeDuplicate    Outcome = "duplicate"
	OutcomeNotHighMatch Outcome = "not_high_match"
	OutcomeNotEntitled  Outcome = "not_entitled"
)

// Request asks for a priority alert on one delivered posting.
type Request struct {
	UserID    string
	PostingID string
	// SendID identifies the delivery; one is generated when empty.
	SendID  string
	Channel model.Channel
}

// Payload is what a Dispatcher hands to the messaging workflow.
type Payload struct {
	UserID      string        `json:"userId"`
	PostingID   string        `json:"jobId"`
	SendID      string        `json:"sentJobId"`
	JobTitle    string        `json:"jobTitle"`
	CompanyName string        `json:"companyName"`
	JobArea     string        `json:"jobArea"`
	MatchScore  int           `json:"matchScore"`
	Channel     model.Channel `json:"channel"`
	Priority    bool          `json:"priority"`
	Badge       string        `json:"badge"`
	Message     string        `json:"message"`
}

// Dispatcher delivers a recorded alert to the outbound transport.
type Dispatcher interface {
	Dispatch(ctx context.Context, p Payload) error
}

// Result describes what Notify did.
type Result struct {
	Outcome    Outcome
	Payload    *Payload
	Dispatched bool
}

// Option applies a configuration option to the Notifier.
type Option func(*Notifier)

// WithLogger sets the notifier's logger.
func WithLogger(l logger.Logger) Option {
	return func(n *Notifier) {
		if l != nil {
			n.log = l
		}
	}
}

// WithClock overrides the alert timestamp clock.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) {
		if now != nil {
			n.now = now
		}
	}
}

// Notifier runs the priority alert workflow: entitlement, high-match check,
// durable record, then dispatch. An alert is always stored before it is sent.
type Notifier struct {
	gate       *Gate
	plans      repository.PlanStore
	postings   repository.PostingLookup
	dispatcher Dispatcher
	now        func() time.Time
	log        logger.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(gate *Gate, plans repository.PlanStore, postings repository.PostingLookup, d Dispatcher, opts ...Option) *Notifier {
	n := &Notifier{
		gate:       gate,
		plans:      plans,
		postings:   postings,
		dispatcher: d,
		now:        time.Now,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify issues a priority alert when the user's plan allows it and the stored
// score for the posting is a high match. Dispatch failures are logged; the
// alert stays recorded.
func (n *Notifier) Notify(ctx context.Context, req Request) (Result, error) {
	plan, err := n.plans.Plan(ctx, req.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("alerts: plan lookup: %w", err)
	}
	if !plan.PriorityAlert {
		return n.done(Result{Outcome: OutcomeNotEntitled}), nil
	}

	score, high, err := n.gate.highMatch(ctx, req.UserID, req.PostingID)
	if err != nil {
		return Result{}, err
	}
	if !high {
		return n.done(Result{Outcome: OutcomeNotHighMatch}), nil
	}
	posting, err := n.postings.Posting(ctx, req.PostingID)
	if err != nil {
		return Result{}, fmt.Errorf("alerts: load posting %s: %w", req.PostingID, err)
	}

	if req.SendID == "" {
		req.SendID = uuid.NewString()
	}
	if req.Channel == "" {
		req.Channel = model.ChannelWhatsApp
	}
	alert := model.Alert{
		UserID:    req.UserID,
		PostingID: req.PostingID,
		SendID:    req.SendID,
		Score:     score.Total,
		Channel:   req.Channel,
		CreatedAt: n.now(),
	}
	recorded, err := n.gate.RecordAlert(ctx, alert)
	if err != nil {
		return Result{}, err
	}
	if !recorded {
		return n.done(Result{Outcome: OutcomeDuplicate}), nil
	}

	p := NewPayload(alert, posting)
	res := Result{Outcome: OutcomeSent, Payload: &p}
	if n.dispatcher != nil {
		if err := n.dispatcher.Dispatch(ctx, p); err != nil {
			n.log.Warn(ctx, "priority alert recorded but not dispatched",
				logger.String("user_id", req.UserID),
				logger.String("posting_id", req.PostingID),
				logger.Error(fmt.Errorf("%w: %w", ErrDispatch, err)))
		} else {
			res.Dispatched = true
		}
	}
	n.log.Info(ctx, "priority alert issued",
		logger.String("user_id", req.UserID),
		logger.String("posting_id", req.PostingID),
		logger.Int("score", score.Total),
		logger.Bool("dispatched", res.Dispatched))
	return n.done(res), nil
}

func (n *Notifier) done(r Result) Result {
	metrics.RecordPriorityAlert(string(r.Outcome))
	return r
}

// NewPayload builds the outbound message for a recorded alert.
func NewPayload(a model.Alert, p model.Posting) Payload {
	return Payload{
		UserID:      a.UserID,
		PostingID:   a.PostingID,
		SendID:      a.SendID,
		JobTitle:    p.Title,
		CompanyName: p.Company,
		JobArea:     p.Area,
		MatchScore:  a.Score,
		Channel:     a.Channel,
		Priority:    true,
		Badge:       Badge,
		Message: fmt.Sprintf("⭐ *VAGA RECOMENDADA* ⭐\n\n🎯 Match: %d%%\n\n%s\n%s\n\nEsta vaga tem alta compatibilidade com seu perfil!",
			a.Score, p.Title, p.Company),
	}
}

// LogDispatcher writes payloads to a logger. It stands in for the messaging
// workflow when no broker is configured.
type LogDispatcher struct {
	Log logger.Logger
}

// Dispatch logs p.
func (d LogDispatcher) Dispatch(ctx context.Context, p Payload) error {
	l := d.Log
	if l == nil {
		l = logger.Nop()
	}
	l.Info(ctx, "priority alert",
		logger.String("user_id", p.UserID),
		logger.String("posting_id", p.PostingID),
		logger.String("send_id", p.SendID),
		logger.Int("match_score", p.MatchScore),
		logger.String("channel", string(p.Channel)))
	return nil
}
