package scoring

import (
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/model"
	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/similarity"
)

const (
	preCountryPoints = 40
	preAreaPoints    = 30
)

// BestPreference picks the preference that best fits posting using a cheap
// pre-score over country and area. Ties keep the earliest preference, and a
// list where every pre-score is zero yields the first element. ok is false
// only for an empty list.
func BestPreference(posting model.Posting, prefs []model.Preference) (best model.Preference, ok bool) {
	if len(prefs) == 0 {
		return model.Preference{}, false
	}
	best = prefs[0]
	bestScore := 0.0
	country := similarity.Normalize(posting.Country)
	for _, p := range prefs {
		s := similarity.Similarity(posting.Area, p.Area) * preAreaPoints
		if similarity.Normalize(p.Country) == country {
			s += preCountryPoints
		}
		if s > bestScore {
			best, bestScore = p, s
		}
	}
	return best, true
}
