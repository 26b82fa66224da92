package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/model"
)

const defaultFreePlanLimit = 5

type pairKey struct {
	user    string
	posting string
}

// MemoryStore implements Store in process memory. It is safe for concurrent
// use and backs tests and the memory store mode of the daemon.
type MemoryStore struct {
	mu          sync.RWMutex
	postings    []model.Posting
	preferences map[string][]model.Preference
	scores      map[pairKey]model.Score
	alerts      map[pairKey]model.Alert
	sent        map[pairKey]model.SentJob
	plans       map[string]model.Plan
	freePlan    model.Plan
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		preferences: make(map[string][]model.Preference),
		scores:      make(map[pairKey]model.Score),
		alerts:      make(map[pairKey]model.Alert),
		sent:        make(map[pairKey]model.SentJob),
		plans:       make(map[string]model.Plan),
		freePlan:    FreePlan(defaultFreePlanLimit),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddPostings appends postings to the catalogue.
func (s *MemoryStore) AddPostings(postings ...model.Posting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postings = append(s.postings, postings...)
}

// SetPreferences replaces a user's preference sets.
func (s *MemoryStore) SetPreferences(userID string, prefs ...model.Preference) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences[userID] = append([]model.Preference(nil), prefs...)
}

// SetPlan assigns an active plan to a user.
func (s *MemoryStore) SetPlan(userID string, plan model.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[userID] = plan
}

func (s *MemoryStore) OpenPostings(ctx context.Context, now time.Time, limit int) ([]model.Posting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	open := make([]model.Posting, 0, len(s.postings))
	for _, p := range s.postings {
		if p.IsOpen(now) {
			open = append(open, p)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(open, func(i, j int) bool {
		return open[i].PostedAt.After(open[j].PostedAt)
	})
	if len(open) > limit {
		open = open[:limit]
	}
	return open, nil
}

func (s *MemoryStore) Posting(ctx context.Context, postingID string) (model.Posting, error) {
	if err := ctx.Err(); err != nil {
		return model.Posting{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.postings {
		if p.ID == postingID {
			return p, nil
		}
	}
	return model.Posting{}, ErrNotFound
}

func (s *MemoryStore) Preferences(ctx context.Context, userID string) ([]model.Preference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Preference(nil), s.preferences[userID]...), nil
}

func (s *MemoryStore) UsersWithPreferences(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	users := make([]string, 0, len(s.preferences))
	for id, prefs := range s.preferences {
		if len(prefs) > 0 {
			users = append(users, id)
		}
	}
	s.mu.RUnlock()
	sort.Strings(users)
	return users, nil
}

func (s *MemoryStore) UpsertScores(ctx context.Context, scores []model.Score) []error {
	var errs []error
	fail := func(i int, err error) {
		if errs == nil {
			errs = make([]error, len(scores))
		}
		errs[i] = err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sc := range scores {
		if err := ctx.Err(); err != nil {
			fail(i, err)
			continue
		}
		if sc.UserID == "" || sc.PostingID == "" {
			fail(i, fmt.Errorf("%w: empty user or posting id", ErrInvalidScore))
			continue
		}
		s.scores[pairKey{sc.UserID, sc.PostingID}] = sc
	}
	return errs
}

func (s *MemoryStore) Score(ctx context.Context, userID, postingID string) (model.Score, error) {
	if err := ctx.Err(); err != nil {
		return model.Score{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.scores[pairKey{userID, postingID}]
	if !ok {
		return model.Score{}, ErrNotFound
	}
	return sc, nil
}

// ScoreCount returns the number of stored score rows.
func (s *MemoryStore) ScoreCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scores)
}

func (s *MemoryStore) InsertAlert(ctx context.Context, alert model.Alert) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	k := pairKey{alert.UserID, alert.PostingID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alerts[k]; ok {
		return false, nil
	}
	s.alerts[k] = alert
	return true, nil
}

// AlertCount returns the number of stored alerts.
func (s *MemoryStore) AlertCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

func (s *MemoryStore) RecordSent(ctx context.Context, userID string, postingIDs []string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range postingIDs {
		k := pairKey{userID, id}
		if _, ok := s.sent[k]; ok {
			continue
		}
		s.sent[k] = model.SentJob{UserID: userID, PostingID: id, Status: model.SentPending, SentAt: at}
	}
	return nil
}

func (s *MemoryStore) SentPostingIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make(map[string]struct{})
	for k := range s.sent {
		if k.user == userID {
			ids[k.posting] = struct{}{}
		}
	}
	return ids, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, userID, postingID string, status model.SentStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k := pairKey{userID, postingID}
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.sent[k]
	if !ok {
		return ErrNotFound
	}
	job.Status = status
	s.sent[k] = job
	return nil
}

func (s *MemoryStore) CountSentSince(ctx context.Context, userID string, since time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for k, job := range s.sent {
		if k.user == userID && !job.SentAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// SentJob returns the delivery row for a pair.
func (s *MemoryStore) SentJob(userID, postingID string) (model.SentJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.sent[pairKey{userID, postingID}]
	return job, ok
}

func (s *MemoryStore) Plan(ctx context.Context, userID string) (model.Plan, error) {
	if err := ctx.Err(); err != nil {
		return model.Plan{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.plans[userID]; ok {
		return p, nil
	}
	return s.freePlan, nil
}
