// Package scoring computes how well a job posting fits a user preference.
package scoring

import (
	"math"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/model"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/similarity"
)

const (
	scoreFull    = 100
	scoreNeutral = 50
	scoreNone    = 0
)

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithWeights replaces the default weights. Invalid weights are ignored.
func WithWeights(w Weights) Option {
	return func(c *Calculator) {
		if w.Validate() == nil {
			c.weights = w
		}
	}
}

// Calculator scores postings against preferences. It holds no mutable state
// and is safe for concurrent use.
type Calculator struct {
	weights Weights
}

// New creates a Calculator using DefaultWeights unless overridden.
func New(opts ...Option) *Calculator {
	c := &Calculator{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Weights returns the weights in use.
func (c *Calculator) Weights() Weights {
	return c.weights
}

// Score returns the weighted total in 0..100 and the per-criterion breakdown.
func (c *Calculator) Score(posting model.Posting, pref model.Preference) (int, model.Breakdown) {
	b := model.Breakdown{
		Country:        countryScore(posting.Country, pref.Country),
		Area:           areaScore(posting.Area, pref.Area),
		Salary:         salaryScore(posting.SalaryMin, pref.MinSalary),
		Level:          levelScore(posting.Level, pref.Level),
		EmploymentType: employmentScore(posting.EmploymentType, pref.EmploymentType),
		Remote:         remoteScore(posting.Remote, pref.Remote),
	}
	return total(b, c.weights), b
}

func total(b model.Breakdown, w Weights) int {
	sum := w.Sum()
	if sum == 0 {
		return 0
	}
	weighted := float64(b.Country)*w.Country +
		float64(b.Area)*w.Area +
		float64(b.Salary)*w.Salary +
		float64(b.Level)*w.Level +
		float64(b.EmploymentType)*w.EmploymentType +
		float64(b.Remote)*w.Remote
	return int(math.Round(math.Min(scoreFull, math.Max(0, weighted/sum))))
}

func countryScore(posting, pref string) int {
	if similarity.Normalize(posting) == similarity.Normalize(pref) {
		return scoreFull
	}
	return scoreNone
}

func areaScore(posting, pref string) int {
	return int(math.Round(similarity.Similarity(posting, pref) * scoreFull))
}

// salaryScore treats a missing or zero minimum on either side as unknown.
func salaryScore(postingMin, prefMin *float64) int {
	if prefMin == nil || *prefMin == 0 || postingMin == nil || *postingMin == 0 {
		return scoreNeutral
	}
	if *postingMin >= *prefMin {
		return scoreFull
	}
	shortfall := (*prefMin - *postingMin) / *prefMin
	return int(math.Round(math.Max(0, scoreFull-shortfall*scoreFull)))
}

// levelScore is lenient: a seniority mismatch is neutral, not zero.
func levelScore(posting, pref model.Level) int {
	switch {
	case posting == model.LevelUnspecified || pref == model.LevelUnspecified:
		return scoreNeutral
	case posting == pref:
		return scoreFull
	default:
		return scoreNeutral
	}
}

func employmentScore(posting, pref model.EmploymentType) int {
	switch {
	case posting == model.EmploymentUnspecified || pref == model.EmploymentUnspecified:
		return scoreNeutral
	case posting == pref:
		return scoreFull
	default:
		return scoreNone
	}
}

// remoteScore only looks at the preference for neutrality; a posting without
// a remote flag never satisfies a stated preference.
func remoteScore(posting, pref *bool) int {
	if pref == nil {
		return scoreNeutral
	}
	if posting != nil && *posting == *pref {
		return scoreFull
	}
	return scoreNone
}
