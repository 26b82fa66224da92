package scoring_test

import (
	"errors"
	"math"
	"testing"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/model"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func f64(v float64) *float64 { return &v }
func flag(v bool) *bool        { return &v }

func devPosting() model.Posting {
	return model.Posting{ID: "p-1", Country: "Brasil", Area: "Desenvolvimento", SalaryMin: f64(8000)}
}

func TestCalculatorScenarios(t *testing.T) {
	Convey("Given the default calculator", t, func() {
		calc := scoring.New()

		Convey("A Brazilian developer preference matches a development posting", func() {
			th := 60
			pref := model.Preference{Country: "Brasil", Area: "Desenvolvedor", MinSalary: f64(5000), Threshold: &th}
			total, b := calc.Score(devPosting(), pref)

			So(b.Country, ShouldEqual, 100)
			So(b.Area, ShouldEqual, 67)
			So(b.Salary, ShouldEqual, 100)
			So(b.Level, ShouldEqual, 50)
			So(b.EmploymentType, ShouldEqual, 50)
			So(b.Remote, ShouldEqual, 50)
			So(total, ShouldEqual, 83)
			So(total, ShouldBeGreaterThanOrEqualTo, 80)
		})

		Convey("A Portuguese marketing preference does not", func() {
			pref := model.Preference{Country: "Portugal", Area: "Marketing"}
			total, b := calc.Score(devPosting(), pref)

			So(b.Country, ShouldEqual, 0)
			So(b.Area, ShouldEqual, 13)
			So(b.Salary, ShouldEqual, 50)
			So(total, ShouldEqual, 19)
			So(total, ShouldBeLessThan, model.DefaultThreshold)
		})
	})
}

func TestCriterionRules(t *testing.T) {
	Convey("Given the default calculator", t, func() {
		calc := scoring.New()
		base := model.Preference{Country: "Brasil", Area: "Vendas"}

		Convey("Country is exact after normalization", func() {
			_, b := calc.Score(model.Posting{Country: "BRASIL", Area: "Vendas"}, base)
			So(b.Country, ShouldEqual, 100)
			_, b = calc.Score(model.Posting{Country: "Brazil", Area: "Vendas"}, base)
			So(b.Country, ShouldEqual, 0)
		})

		Convey("Salary is neutral when either minimum is unknown", func() {
			for _, c := range []struct{ job, pref *float64 }{
				{nil, f64(5000)},
				{f64(5000), nil},
				{f64(0), f64(5000)},
				{f64(5000), f64(0)},
			} {
				p := base
				p.MinSalary = c.pref
				_, b := calc.Score(model.Posting{SalaryMin: c.job}, p)
				So(b.Salary, ShouldEqual, 50)
			}
		})

		Convey("Salary degrades proportionally below the preference", func() {
			p := base
			p.MinSalary = f64(5000)
			for job, want := range map[float64]int{5000: 100, 9000: 100, 4000: 80, 2000: 40, 1: 0} {
				_, b := calc.Score(model.Posting{SalaryMin: f64(job)}, p)
				So(b.Salary, ShouldEqual, want)
			}
		})

		Convey("Level mismatch is neutral", func() {
			p := base
			p.Level = model.LevelSenior
			_, b := calc.Score(model.Posting{Level: model.LevelSenior}, p)
			So(b.Level, ShouldEqual, 100)
			_, b = calc.Score(model.Posting{Level: model.LevelJunior}, p)
			So(b.Level, ShouldEqual, 50)
			_, b = calc.Score(model.Posting{}, p)
			So(b.Level, ShouldEqual, 50)
		})

		Convey("Employment type mismatch is zero", func() {
			p := base
			p.EmploymentType = model.EmploymentCLT
			_, b := calc.Score(model.Posting{EmploymentType: model.EmploymentCLT}, p)
			So(b.EmploymentType, ShouldEqual, 100)
			_, b = calc.Score(model.Posting{EmploymentType: model.EmploymentPJ}, p)
			So(b.EmploymentType, ShouldEqual, 0)
			_, b = calc.Score(model.Posting{}, p)
			So(b.EmploymentType, ShouldEqual, 50)
		})

		Convey("An unrecognized stored employment type scores neutral, not as a mismatch", func() {
			p := base
			p.EmploymentType = model.EmploymentCLT
			e, err := model.ParseEmploymentType("freela por projeto")
			So(errors.Is(err, model.ErrUnknownValue), ShouldBeTrue)
			So(e, ShouldEqual, model.EmploymentUnspecified)

			_, b := calc.Score(model.Posting{EmploymentType: e}, p)
			So(b.EmploymentType, ShouldEqual, 50)
		})

		Convey("Remote only goes neutral on the preference side", func() {
			_, b := calc.Score(model.Posting{Remote: flag(true)}, base)
			So(b.Remote, ShouldEqual, 50)

			p := base
			p.Remote = flag(true)
			_, b = calc.Score(model.Posting{Remote: flag(true)}, p)
			So(b.Remote, ShouldEqual, 100)
			_, b = calc.Score(model.Posting{Remote: flag(false)}, p)
			So(b.Remote, ShouldEqual, 0)
			_, b = calc.Score(model.Posting{}, p)
			So(b.Remote, ShouldEqual, 0)
		})
	})
}

func TestWeights(t *testing.T) {
	Convey("Given custom weights", t, func() {
		pref := model.Preference{Country: "Portugal", Area: "Desenvolvedor", MinSalary: f64(5000)}

		Convey("Area-only weights make the total equal the area score", func() {
			calc := scoring.New(scoring.WithWeights(scoring.Weights{Area: 1}))
			total, b := calc.Score(devPosting(), pref)
			So(total, ShouldEqual, b.Area)
		})

		Convey("All-zero weights yield zero", func() {
			calc := scoring.New(scoring.WithWeights(scoring.Weights{}))
			total, _ := calc.Score(devPosting(), pref)
			So(total, ShouldEqual, 0)
		})

		Convey("Invalid weights are rejected and ignored", func() {
			bad := scoring.Weights{Country: -1, Area: 1}
			So(errors.Is(bad.Validate(), scoring.ErrInvalidWeights), ShouldBeTrue)
			So(errors.Is(scoring.Weights{Area: math.NaN()}.Validate(), scoring.ErrInvalidWeights), ShouldBeTrue)

			calc := scoring.New(scoring.WithWeights(bad))
			So(calc.Weights(), ShouldResemble, scoring.DefaultWeights())
		})

		Convey("Defaults sum to 100", func() {
			So(scoring.DefaultWeights().Sum(), ShouldEqual, 100)
		})
	})
}

func TestTotalAlwaysInRange(t *testing.T) {
	Convey("Given a grid of postings and preferences", t, func() {
		calc := scoring.New()
		postings := []model.Posting{
			{},
			devPosting(),
			{Country: "Portugal", Area: "Marketing", SalaryMin: f64(1), Remote: flag(false), Level: model.LevelJunior, EmploymentType: model.EmploymentPJ},
		}
		prefs := []model.Preference{
			{},
			{Country: "Brasil", Area: "Desenvolvimento", MinSalary: f64(1e9), Remote: flag(true), Level: model.LevelSenior, EmploymentType: model.EmploymentCLT},
			{Country: "Portugal", Area: "Marketing"},
		}
		for _, p := range postings {
			for _, pr := range prefs {
				total, b := calc.Score(p, pr)
				So(total, ShouldBeBetweenOrEqual, 0, 100)
				for _, v := range []int{b.Country, b.Area, b.Salary, b.Level, b.EmploymentType, b.Remote} {
					So(v, ShouldBeBetweenOrEqual, 0, 100)
				}
			}
		}
	})
}
