package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/repository"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/model"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/pkg/logger"
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithFreePlanLimit sets the daily limit for users without an active plan.
func WithFreePlanLimit(limit int) Option {
	return func(s *Store) {
		if limit >= 0 {
			s.freePlan = repository.FreePlan(limit)
		}
	}
}

// WithLogger sets the store's logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Store implements repository.Store on PostgreSQL.
type Store struct {
	db       DB
	freePlan model.Plan
	log      logger.Logger
}

var _ repository.Store = (*Store)(nil)

// New creates a Store over db.
func New(db DB, opts ...Option) *Store {
	s := &Store{db: db, freePlan: repository.FreePlan(5), log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const postingColumns = `id, title, description, company_name, job_area, country, city,
	salary_min, salary_max, currency, employment_type, remote, level, apply_url,
	posted_at, expires_at`

func (s *Store) OpenPostings(ctx context.Context, now time.Time, limit int) ([]model.Posting, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+postingColumns+`
		 FROM jobs
		 WHERE expires_at IS NULL OR expires_at > $1
		 ORDER BY posted_at DESC
		 LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var out []model.Posting
	for rows.Next() {
		p, err := s.scanPosting(ctx, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Posting(ctx context.Context, postingID string) (model.Posting, error) {
	row := s.db.QueryRow(ctx, `SELECT `+postingColumns+` FROM jobs WHERE id = $1`, postingID)
	p, err := s.scanPosting(ctx, row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Posting{}, repository.ErrNotFound
	}
	return p, err
}

func (s *Store) scanPosting(ctx context.Context, row pgx.Row) (model.Posting, error) {
	var p model.Posting
	var employment, level string
	if err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Company, &p.Area, &p.Country, &p.City,
		&p.SalaryMin, &p.SalaryMax, &p.Currency, &employment, &p.Remote, &level, &p.ApplyURL,
		&p.PostedAt, &p.ExpiresAt,
	); err != nil {
		return model.Posting{}, fmt.Errorf("scan job: %w", err)
	}
	p.EmploymentType = s.employment(ctx, employment, "job", p.ID)
	p.Level = s.level(ctx, level, "job", p.ID)
	return p, nil
}

// level and employment map stored free text onto the closed sets. Unknown
// values are logged and scored as unspecified.
func (s *Store) level(ctx context.Context, raw, kind, id string) model.Level {
	l, err := model.ParseLevel(raw)
	if err != nil {
		s.log.Warn(ctx, "unrecognized level", logger.String(kind, id), logger.Error(err))
	}
	return l
}

func (s *Store) employment(ctx context.Context, raw, kind, id string) model.EmploymentType {
	e, err := model.ParseEmploymentType(raw)
	if err != nil {
		s.log.Warn(ctx, "unrecognized employment type", logger.String(kind, id), logger.Error(err))
	}
	return e
}

func (s *Store) Preferences(ctx context.Context, userID string) ([]model.Preference, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, job_area, country, min_salary, max_salary, currency,
		        level, employment_type, remote, match_score_threshold
		 FROM job_preferences
		 WHERE user_id = $1
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query job_preferences: %w", err)
	}
	defer rows.Close()

	var out []model.Preference
	for rows.Next() {
		var p model.Preference
		var level, employment string
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Area, &p.Country, &p.MinSalary, &p.MaxSalary, &p.Currency,
			&level, &employment, &p.Remote, &p.Threshold,
		); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		p.Level = s.level(ctx, level, "preference", p.ID)
		p.EmploymentType = s.employment(ctx, employment, "preference", p.ID)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) UsersWithPreferences(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT user_id FROM job_preferences ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	users, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect users: %w", err)
	}
	return users, nil
}

// UpsertScores writes each row in its own statement so a rejected row leaves
// the others committed. errs[i] reports row i.
func (s *Store) UpsertScores(ctx context.Context, scores []model.Score) []error {
	if len(scores) == 0 {
		return nil
	}
	errs := make([]error, len(scores))
	failed := false
	for i, sc := range scores {
		if errs[i] = s.upsertScore(ctx, sc); errs[i] != nil {
			failed = true
		}
	}
	if !failed {
		return nil
	}
	return errs
}

func (s *Store) upsertScore(ctx context.Context, sc model.Score) error {
	breakdown, err := json.Marshal(sc.Breakdown)
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO job_match_scores (user_id, job_id, match_score, score_breakdown, calculated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, job_id) DO UPDATE
		 SET match_score = EXCLUDED.match_score,
		     score_breakdown = EXCLUDED.score_breakdown,
		     calculated_at = EXCLUDED.calculated_at`,
		sc.UserID, sc.PostingID, sc.Total, breakdown, sc.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}
	return nil
}

func (s *Store) Score(ctx context.Context, userID, postingID string) (model.Score, error) {
	sc := model.Score{UserID: userID, PostingID: postingID}
	var breakdown []byte
	err := s.db.QueryRow(ctx,
		`SELECT match_score, score_breakdown, calculated_at
		 FROM job_match_scores
		 WHERE user_id = $1 AND job_id = $2`,
		userID, postingID,
	).Scan(&sc.Total, &breakdown, &sc.CalculatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Score{}, repository.ErrNotFound
	}
	if err != nil {
		return model.Score{}, fmt.Errorf("query score: %w", err)
	}
	if err := json.Unmarshal(breakdown, &sc.Breakdown); err != nil {
		return model.Score{}, fmt.Errorf("decode breakdown: %w", err)
	}
	return sc, nil
}

func (s *Store) InsertAlert(ctx context.Context, a model.Alert) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO priority_job_alerts (user_id, job_id, sent_job_id, match_score, sent_via, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, job_id) DO NOTHING`,
		a.UserID, a.PostingID, a.SendID, a.Score, string(a.Channel), a.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert alert: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) RecordSent(ctx context.Context, userID string, postingIDs []string, at time.Time) error {
	if len(postingIDs) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO sent_jobs (user_id, job_id, view_status, sent_at)
		 SELECT $1, job_id, 'pending', $3 FROM unnest($2::text[]) AS job_id
		 ON CONFLICT (user_id, job_id) DO NOTHING`,
		userID, postingIDs, at,
	)
	if err != nil {
		return fmt.Errorf("insert sent_jobs: %w", err)
	}
	return nil
}

func (s *Store) SentPostingIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	rows, err := s.db.Query(ctx, `SELECT job_id FROM sent_jobs WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("query sent_jobs: %w", err)
	}
	jobs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect sent_jobs: %w", err)
	}
	ids := make(map[string]struct{}, len(jobs))
	for _, id := range jobs {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (s *Store) UpdateStatus(ctx context.Context, userID, postingID string, status model.SentStatus) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE sent_jobs SET view_status = $3 WHERE user_id = $1 AND job_id = $2`,
		userID, postingID, string(status),
	)
	if err != nil {
		return fmt.Errorf("update sent_jobs: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) CountSentSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FROM sent_jobs WHERE user_id = $1 AND sent_at >= $2`,
		userID, since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sent_jobs: %w", err)
	}
	return n, nil
}

func (s *Store) Plan(ctx context.Context, userID string) (model.Plan, error) {
	var plan model.Plan
	var maxDaily *int
	err := s.db.QueryRow(ctx,
		`SELECT p.name, p.max_daily_jobs, p.priority
		 FROM user_subscriptions us
		 JOIN subscription_plans p ON p.id = us.plan_id
		 WHERE us.user_id = $1 AND us.status = 'active'
		 LIMIT 1`,
		userID,
	).Scan(&plan.Name, &maxDaily, &plan.PriorityAlert)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.freePlan, nil
	}
	if err != nil {
		return model.Plan{}, fmt.Errorf("query plan: %w", err)
	}
	// A plan without a positive cap falls back to the free allowance.
	plan.MaxDailyJobs = s.freePlan.MaxDailyJobs
	if maxDaily != nil && *maxDaily > 0 {
		plan.MaxDailyJobs = *maxDaily
	}
	return plan, nil
}
