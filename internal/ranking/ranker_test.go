package ranking_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/adapters/repository"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/model"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/scoring"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }
func intp(v int) *int         { return &v }

type recordingSource struct {
	postings []model.Posting
	err      error
	asked    int
}

func (s *recordingSource) OpenPostings(_ context.Context, _ time.Time, limit int) ([]model.Posting, error) {
	s.asked = limit
	if s.err != nil {
		return nil, s.err
	}
	if len(s.postings) > limit {
		return s.postings[:limit], nil
	}
	return s.postings, nil
}

type brokenScores struct{ repository.ScoreStore }

func (brokenScores) UpsertScores(_ context.Context, scores []model.Score) []error {
	errs := make([]error, len(scores))
	for i := range errs {
		errs[i] = errors.New("connection reset")
	}
	return errs
}

func devPosting(id string, age time.Duration) model.Posting {
	return model.Posting{ID: id, Country: "Brasil", Area: "Desenvolvimento", SalaryMin: f64(8000), PostedAt: now.Add(-age)}
}

func brDev() model.Preference {
	return model.Preference{ID: "br-dev", Country: "Brasil", Area: "Desenvolvedor", MinSalary: f64(5000), Threshold: intp(60)}
}

func newStore(postings ...model.Posting) *repository.MemoryStore {
	s := repository.NewMemoryStore()
	s.AddPostings(postings...)
	return s
}

func TestRankInputs(t *testing.T) {
	Convey("Given a ranker over a populated store", t, func() {
		ctx := context.Background()
		r := ranking.NewRanker(newStore(devPosting("p1", time.Hour)), ranking.WithRankerClock(func() time.Time { return now }))

		Convey("No preferences yield an empty result", func() {
			got, err := r.Rank(ctx, ranking.Request{UserID: "u", Limit: 10})
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})

		Convey("A non-positive limit yields an empty result", func() {
			got, err := r.Rank(ctx, ranking.Request{UserID: "u", Preferences: []model.Preference{brDev()}, Limit: 0})
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})

		Convey("Invalid override weights yield an empty result", func() {
			w := scoring.Weights{Area: -3}
			got, err := r.Rank(ctx, ranking.Request{UserID: "u", Preferences: []model.Preference{brDev()}, Limit: 5, Weights: &w})
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})
	})
}

func TestRankScenarios(t *testing.T) {
	Convey("Given one Brazilian development posting", t, func() {
		ctx := context.Background()
		store := newStore(devPosting("p1", time.Hour))
		r := ranking.NewRanker(store,
			ranking.WithRankerClock(func() time.Time { return now }),
			ranking.WithSaver(ranking.NewPersister(store)))

		Convey("A matching developer preference surfaces it as a high match", func() {
			got, err := r.Rank(ctx, ranking.Request{UserID: "u", Preferences: []model.Preference{brDev()}, Limit: 10})
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 1)
			So(got[0].Posting.ID, ShouldEqual, "p1")
			So(got[0].PreferenceID, ShouldEqual, "br-dev")
			So(got[0].Total, ShouldBeGreaterThanOrEqualTo, 80)
			So(got[0].Breakdown.Salary, ShouldEqual, 100)
		})

		Convey("A Portuguese marketing preference excludes it", func() {
			pref := model.Preference{Country: "Portugal", Area: "Marketing"}
			got, err := r.Rank(ctx, ranking.Request{UserID: "u", Preferences: []model.Preference{pref}, Limit: 10})
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
			So(store.ScoreCount(), ShouldEqual, 0)
		})
	})
}

func TestRankOrdering(t *testing.T) {
	Convey("Given postings of varying fit", t, func() {
		ctx := context.Background()
		weak := model.Posting{ID: "weak", Country: "Brasil", Area: "Desenvolvimento", SalaryMin: f64(3000), PostedAt: now.Add(-time.Minute)}
		store := newStore(
			weak,
			devPosting("tie-newer", 2*time.Minute),
			devPosting("tie-older", 3*time.Minute),
			model.Posting{ID: "off", Country: "Chile", Area: "Vendas", PostedAt: now.Add(-4 * time.Minute)},
		)
		r := ranking.NewRanker(store, ranking.WithRankerClock(func() time.Time { return now }))
		req := ranking.Request{UserID: "u", Preferences: []model.Preference{brDev()}, Limit: 10}

		Convey("Results are sorted by total with fetch order breaking ties", func() {
			got, err := r.Rank(ctx, req)
			So(err, ShouldBeNil)
			ids := make([]string, len(got))
			for i, m := range got {
				ids[i] = m.Posting.ID
				So(m.Total, ShouldBeGreaterThanOrEqualTo, 60)
			}
			So(ids, ShouldResemble, []string{"tie-newer", "tie-older", "weak"})
		})

		Convey("The limit truncates the ranked list", func() {
			req.Limit = 2
			got, err := r.Rank(ctx, req)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 2)
			So(got[0].Posting.ID, ShouldEqual, "tie-newer")
		})

		Convey("A zero threshold keeps everything fetched", func() {
			p := brDev()
			p.Threshold = intp(0)
			req.Preferences = []model.Preference{p}
			got, err := r.Rank(ctx, req)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 4)
			So(got[3].Posting.ID, ShouldEqual, "off")
		})

		Convey("Excluded postings are never scored or returned", func() {
			req.Limit = 2
			req.Exclude = map[string]struct{}{"tie-newer": {}}
			got, err := r.Rank(ctx, req)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 2)
			So(got[0].Posting.ID, ShouldEqual, "tie-older")
			So(got[1].Posting.ID, ShouldEqual, "weak")
		})
	})
}

func TestThresholdComesFromFirstPreference(t *testing.T) {
	Convey("Given two preferences with different thresholds", t, func() {
		ctx := context.Background()
		r := ranking.NewRanker(newStore(devPosting("p1", time.Hour)), ranking.WithRankerClock(func() time.Time { return now }))
		strict := model.Preference{ID: "strict", Country: "Portugal", Area: "Marketing", Threshold: intp(95)}
		lenient := brDev()

		Convey("The first preference's threshold governs the call", func() {
			got, err := r.Rank(ctx, ranking.Request{UserID: "u", Preferences: []model.Preference{strict, lenient}, Limit: 5})
			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)

			got, err = r.Rank(ctx, ranking.Request{UserID: "u", Preferences: []model.Preference{lenient, strict}, Limit: 5})
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 1)
		})
	})
}

func TestOversampleAndWeights(t *testing.T) {
	Convey("Given a recording posting source", t, func() {
		ctx := context.Background()
		var postings []model.Posting
		for i := range 30 {
			postings = append(postings, devPosting(fmt.Sprintf("p%02d", i), time.Duration(i)*time.Minute))
		}
		src := &recordingSource{postings: postings}

		Convey("The default fetch is five times the limit", func() {
			r := ranking.NewRanker(src)
			_, err := r.Rank(ctx, ranking.Request{UserID: "u", Preferences: []model.Preference{brDev()}, Limit: 3})
			So(err, ShouldBeNil)
			So(src.asked, ShouldEqual, 15)
		})

		Convey("The factor is configurable", func() {
			r := ranking.NewRanker(src, ranking.WithOversample(2))
			_, err := r.Rank(ctx, ranking.Request{UserID: "u", Preferences: []model.Preference{brDev()}, Limit: 3})
			So(err, ShouldBeNil)
			So(src.asked, ShouldEqual, 6)
		})

		Convey("Exclusions widen the fetch", func() {
			r := ranking.NewRanker(src)
			_, err := r.Rank(ctx, ranking.Request{
				UserID: "u", Preferences: []model.Preference{brDev()}, Limit: 3,
				Exclude: map[string]struct{}{"p00": {}, "p01": {}},
			})
			So(err, ShouldBeNil)
			So(src.asked, ShouldEqual, 17)
		})

		Convey("Per-request weights override the configured ones", func() {
			r := ranking.NewRanker(src)
			w := scoring.Weights{Country: 1}
			got, err := r.Rank(ctx, ranking.Request{UserID: "u", Preferences: []model.Preference{brDev()}, Limit: 1, Weights: &w})
			So(err, ShouldBeNil)
			So(got[0].Total, ShouldEqual, 100)
		})
	})
}

func TestRankStoreFailures(t *testing.T) {
	Convey("Given a posting source that fails", t, func() {
		ctx := context.Background()
		r := ranking.NewRanker(&recordingSource{err: errors.New("timeout")})

		Convey("The error is surfaced without a partial list", func() {
			got, err := r.Rank(ctx, ranking.Request{UserID: "u", Preferences: []model.Preference{brDev()}, Limit: 3})
			So(got, ShouldBeNil)
			So(errors.Is(err, ranking.ErrStoreRead), ShouldBeTrue)
		})
	})

	Convey("Given a score store that rejects every row", t, func() {
		ctx := context.Background()
		store := newStore(devPosting("p1", time.Hour))
		r := ranking.NewRanker(store,
			ranking.WithRankerClock(func() time.Time { return now }),
			ranking.WithSaver(ranking.NewPersister(brokenScores{store})))

		Convey("The ranking is still returned", func() {
			got, err := r.Rank(ctx, ranking.Request{UserID: "u", Preferences: []model.Preference{brDev()}, Limit: 3})
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 1)
		})
	})
}
