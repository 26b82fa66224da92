package scoring

import (
	"fmt"
	"math"
)

// Weights sets the relative importance of each criterion. Only ratios matter;
// the total is normalized by the weight sum.
type Weights struct {
	Country        float64
	Area           float64
	Salary         float64
	Level          float64
	EmploymentType float64
	Remote         float64
}

// DefaultWeights returns the production weighting (40/30/15/8/4/3).
func DefaultWeights() Weights {
	return Weights{
		Country:        40,
		Area:           30,
		Salary:         15,
		Level:          8,
		EmploymentType: 4,
		Remote:         3,
	}
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Country + w.Area + w.Salary + w.Level + w.EmploymentType + w.Remote
}

// Validate rejects negative or NaN weights. All-zero weights are valid.
func (w Weights) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"country", w.Country},
		{"area", w.Area},
		{"salary", w.Salary},
		{"level", w.Level},
		{"employment_type", w.EmploymentType},
		{"remote", w.Remote},
	} {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidWeights, f.name, f.v)
		}
	}
	return nil
}
