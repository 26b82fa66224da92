// Package repository defines the storage contracts of the matching engine and
// an in-memory implementation of them.
package repository

import (
	"context"
	"time"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/model"
)

// PostingSource lists postings that can still be matched.
type PostingSource interface {
	// OpenPostings returns up to limit postings that are open at now, newest
	// PostedAt first.
	OpenPostings(ctx context.Context, now time.Time, limit int) ([]model.Posting, error)
}

// PostingLookup fetches a single posting by ID or returns ErrNotFound.
type PostingLookup interface {
	Posting(ctx context.Context, postingID string) (model.Posting, error)
}

// PreferenceSource loads a user's preference sets in their stored order.
type PreferenceSource interface {
	Preferences(ctx context.Context, userID string) ([]model.Preference, error)
}

// UserLister enumerates users that have at least one preference.
type UserLister interface {
	UsersWithPreferences(ctx context.Context) ([]string, error)
}

// ScoreStore persists match scores keyed on (UserID, PostingID).
type ScoreStore interface {
	// UpsertScores writes every score, replacing existing rows for the same
	// pair. The returned slice is nil on full success; otherwise it has one
	// entry per input with nil for rows that were written.
	UpsertScores(ctx context.Context, scores []model.Score) []error

	// Score returns the stored score or ErrNotFound.
	Score(ctx context.Context, userID, postingID string) (model.Score, error)
}

// AlertStore persists priority alerts, at most one per (UserID, PostingID).
type AlertStore interface {
	// InsertAlert returns false without error when the pair already has an alert.
	InsertAlert(ctx context.Context, alert model.Alert) (bool, error)
}

// SentJobStore records deliveries and what the user did with them.
type SentJobStore interface {
	// RecordSent inserts a pending row per posting; existing rows are left alone.
	RecordSent(ctx context.Context, userID string, postingIDs []string, at time.Time) error
	// SentPostingIDs returns every posting already delivered to the user.
	SentPostingIDs(ctx context.Context, userID string) (map[string]struct{}, error)
	// UpdateStatus returns ErrNotFound when the posting was never sent to the user.
	UpdateStatus(ctx context.Context, userID, postingID string, status model.SentStatus) error
	// CountSentSince counts deliveries to the user at or after since.
	CountSentSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// PlanStore resolves a user's active plan.
type PlanStore interface {
	// Plan returns the active plan, or the free plan when there is none.
	Plan(ctx context.Context, userID string) (model.Plan, error)
}

// Store is the union every backend implements.
type Store interface {
	PostingSource
	PostingLookup
	PreferenceSource
	UserLister
	ScoreStore
	AlertStore
	SentJobStore
	PlanStore
}

// FreePlan returns the plan of users without an active subscription.
func FreePlan(dailyLimit int) model.Plan {
	return model.Plan{Name: "free", MaxDailyJobs: dailyLimit}
}
