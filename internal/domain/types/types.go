// Package types contains the JSON views shared by the service and the HTTP API.
package types

import (
	"time"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/model"
)

// MatchEntry is one ranked posting as returned to clients.
type MatchEntry struct {
	Rank         int             `json:"rank"`
	JobID        string          `json:"job_id"`
	Title        string          `json:"title"`
	Company      string          `json:"company"`
	Area         string          `json:"area"`
	Country      string          `json:"country"`
	City         string          `json:"city,omitempty"`
	ApplyURL     string          `json:"apply_url,omitempty"`
	PostedAt     time.Time       `json:"posted_at"`
	Score        int             `json:"score"`
	Breakdown    model.Breakdown `json:"breakdown"`
	PreferenceID string          `json:"preference_id,omitempty"`
}

// Quota is a user's delivery allowance for the current day.
type Quota struct {
	Limit     int  `json:"limit"`
	Used      int  `json:"used"`
	Remaining int  `json:"remaining"`
	Allowed   bool `json:"allowed"`
}

// Entries converts ranked matches into 1-based entries.
func Entries(matches []model.Match) []MatchEntry {
	out := make([]MatchEntry, len(matches))
	for i, m := range matches {
		out[i] = MatchEntry{
			Rank:         i + 1,
			JobID:        m.Posting.ID,
			Title:        m.Posting.Title,
			Company:      m.Posting.Company,
			Area:         m.Posting.Area,
			Country:      m.Posting.Country,
			City:         m.Posting.City,
			ApplyURL:     m.Posting.ApplyURL,
			PostedAt:     m.Posting.PostedAt,
			Score:        m.Total,
			Breakdown:    m.Breakdown,
			PreferenceID: m.PreferenceID,
		}
	}
	return out
}
