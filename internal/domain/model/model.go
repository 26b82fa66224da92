// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// DefaultThreshold is the minimum total a posting needs when the user's
// preference does not carry its own threshold.
const DefaultThreshold = 60

// Posting is a job opening available for matching.
type Posting struct {
	ID             string
	Title          string
	Description    string
	Company        string
	Area           string
	Country        string
	City           string
	SalaryMin      *float64
	SalaryMax      *float64
	Currency       string
	EmploymentType EmploymentType
	Remote         *bool
	Level          Level
	ApplyURL       string
	PostedAt       time.Time
	ExpiresAt      *time.Time
}

// IsOpen reports whether the posting can still be matched at now.
func (p Posting) IsOpen(now time.Time) bool {
	return p.ExpiresAt == nil || p.ExpiresAt.After(now)
}

// Preference is a stored user search profile.
type Preference struct {
	ID             string
	UserID         string
	Area           string
	Country        string
	MinSalary      *float64
	MaxSalary      *float64
	Currency       string
	Level          Level
	EmploymentType EmploymentType
	Remote         *bool
	Threshold      *int // nil means DefaultThreshold
}

// Validate rejects preferences that cannot be scored.
func (p Preference) Validate() error {
	if strings.TrimSpace(p.Area) == "" {
		return fmt.Errorf("%w: area is required", ErrInvalidPreference)
	}
	if strings.TrimSpace(p.Country) == "" {
		return fmt.Errorf("%w: country is required", ErrInvalidPreference)
	}
	if p.Threshold != nil && (*p.Threshold < 0 || *p.Threshold > 100) {
		return fmt.Errorf("%w: threshold %d outside 0..100", ErrInvalidPreference, *p.Threshold)
	}
	return nil
}

// Breakdown holds the six per-criterion sub-scores, each in 0..100.
type Breakdown struct {
	Country        int `json:"country"`
	Area           int `json:"job_area"`
	Salary         int `json:"salary"`
	Level          int `json:"level"`
	EmploymentType int `json:"employment_type"`
	Remote         int `json:"remote"`
}

// Match is a ranked posting with its score.
type Match struct {
	Posting      Posting
	PreferenceID string
	Total        int
	Breakdown    Breakdown
}

// Score is the persisted form of a match, unique per (UserID, PostingID).
type Score struct {
	UserID       string
	PostingID    string
	Total        int
	Breakdown    Breakdown
	CalculatedAt time.Time
}

// Alert records that a priority notification was issued for a posting.
// At most one exists per (UserID, PostingID).
type Alert struct {
	UserID    string
	PostingID string
	SendID    string
	Score     int
	Channel   Channel
	CreatedAt time.Time
}

// SentJob is one posting delivered to a user.
type SentJob struct {
	UserID    string
	PostingID string
	Status    SentStatus
	SentAt    time.Time
}

// Plan describes the delivery entitlements of a user.
type Plan struct {
	Name          string
	MaxDailyJobs  int
	PriorityAlert bool
}
