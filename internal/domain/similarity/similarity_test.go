package similarity_test

import (
	"testing"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/similarity"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given strings with accents and case", t, func() {
		So(similarity.Normalize("São Paulo"), ShouldEqual, "sao paulo")
		So(similarity.Normalize("  ÉNGENHARIA  "), ShouldEqual, "engenharia")
		So(similarity.Normalize("Júnior"), ShouldEqual, "junior")
		So(similarity.Normalize(""), ShouldEqual, "")
	})
}

func TestDistance(t *testing.T) {
	Convey("Given pairs of strings", t, func() {
		cases := []struct {
			a, b string
			want int
		}{
			{"", "", 0},
			{"abc", "", 3},
			{"", "abc", 3},
			{"kitten", "sitting", 3},
			{"flaw", "lawn", 2},
			{"marketing", "marketing", 0},
			{"ção", "cao", 2},
		}
		for _, c := range cases {
			So(similarity.Distance(c.a, c.b), ShouldEqual, c.want)
			So(similarity.Distance(c.b, c.a), ShouldEqual, c.want)
		}
	})
}

func TestSimilarity(t *testing.T) {
	Convey("Given the similarity function", t, func() {
		Convey("Identical strings score one", func() {
			for _, s := range []string{"", "a", "Desenvolvimento", "São Paulo"} {
				So(similarity.Similarity(s, s), ShouldEqual, 1.0)
			}
		})

		Convey("Accents and case are ignored", func() {
			So(similarity.Similarity("Educação", "EDUCACAO"), ShouldEqual, 1.0)
		})

		Convey("It is symmetric and bounded", func() {
			pairs := [][2]string{
				{"Desenvolvimento", "Desenvolvedor"},
				{"Marketing", "Desenvolvimento"},
				{"", "vendas"},
				{"TI", "Tecnologia da Informação"},
			}
			for _, p := range pairs {
				ab := similarity.Similarity(p[0], p[1])
				So(ab, ShouldEqual, similarity.Similarity(p[1], p[0]))
				So(ab, ShouldBeBetweenOrEqual, 0.0, 1.0)
			}
		})

		Convey("Empty against non-empty scores zero", func() {
			So(similarity.Similarity("", "vendas"), ShouldEqual, 0.0)
		})

		Convey("Related areas score well above unrelated ones", func() {
			related := similarity.Similarity("Desenvolvimento", "Desenvolvedor")
			So(related, ShouldAlmostEqual, 10.0/15.0, 1e-9)
			So(similarity.Similarity("Marketing", "Desenvolvimento"), ShouldAlmostEqual, 2.0/15.0, 1e-9)
		})
	})
}
