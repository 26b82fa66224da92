package model

import (
	"fmt"
	"strings"

	"github.com/Williammicrosaas/VagasPeloWhatsapp/internal/domain/similarity"
)

// Level is the seniority of a posting or preference. The zero value means
// unspecified.
type Level string

const (
	LevelUnspecified Level = ""
	LevelJunior      Level = "junior"
	LevelMid         Level = "mid"
	LevelSenior      Level = "senior"
	LevelSpecialist  Level = "specialist"
)

var levelAliases = map[string]Level{
	"junior":       LevelJunior,
	"jr":           LevelJunior,
	"mid":          LevelMid,
	"pleno":        LevelMid,
	"middle":       LevelMid,
	"senior":       LevelSenior,
	"sr":           LevelSenior,
	"specialist":   LevelSpecialist,
	"especialista": LevelSpecialist,
}

// ParseLevel maps free text such as "Sênior" or "Pleno" onto a Level.
func ParseLevel(s string) (Level, error) {
	key := foldValue(s)
	if key == "" {
		return LevelUnspecified, nil
	}
	if l, ok := levelAliases[key]; ok {
		return l, nil
	}
	return LevelUnspecified, fmt.Errorf("%w: level %q", ErrUnknownValue, s)
}

// EmploymentType is the contract kind. The zero value means unspecified.
type EmploymentType string

const (
	EmploymentUnspecified EmploymentType = ""
	EmploymentCLT         EmploymentType = "clt"
	EmploymentPJ          EmploymentType = "pj"
	EmploymentFreelance   EmploymentType = "freelance"
	EmploymentInternship  EmploymentType = "internship"
	EmploymentTemporary   EmploymentType = "temporary"
)

var employmentAliases = map[string]EmploymentType{
	"clt":        EmploymentCLT,
	"pj":         EmploymentPJ,
	"freelance":  EmploymentFreelance,
	"freelancer": EmploymentFreelance,
	"internship": EmploymentInternship,
	"estagio":    EmploymentInternship,
	"temporary":  EmploymentTemporary,
	"temporario": EmploymentTemporary,
}

// ParseEmploymentType maps free text such as "Estágio" onto an EmploymentType.
func ParseEmploymentType(s string) (EmploymentType, error) {
	key := foldValue(s)
	if key == "" {
		return EmploymentUnspecified, nil
	}
	if e, ok := employmentAliases[key]; ok {
		return e, nil
	}
	return EmploymentUnspecified, fmt.Errorf("%w: employment type %q", ErrUnknownValue, s)
}

// Channel is the delivery channel of a priority alert.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
	ChannelTelegram Channel = "telegram"
)

// ParseChannel parses a channel name. Empty input selects WhatsApp.
func ParseChannel(s string) (Channel, error) {
	switch c := Channel(foldValue(s)); c {
	case "":
		return ChannelWhatsApp, nil
	case ChannelWhatsApp, ChannelEmail, ChannelTelegram:
		return c, nil
	default:
		return "", fmt.Errorf("%w: channel %q", ErrUnknownValue, s)
	}
}

// SentStatus tracks what the user did with a delivered posting.
type SentStatus string

const (
	SentPending   SentStatus = "pending"
	SentViewed    SentStatus = "viewed"
	SentApplied   SentStatus = "applied"
	SentDismissed SentStatus = "dismissed"
)

// ParseSentStatus parses a delivery status.
func ParseSentStatus(s string) (SentStatus, error) {
	switch st := SentStatus(foldValue(s)); st {
	case SentPending, SentViewed, SentApplied, SentDismissed:
		return st, nil
	default:
		return "", fmt.Errorf("%w: status %q", ErrUnknownValue, s)
	}
}

// foldValue lower-cases, strips accents and collapses separators so that
// "Sênior", " senior " and "SENIOR" share one key.
func foldValue(s string) string {
	return separators.Replace(similarity.Normalize(s))
}

var separators = strings.NewReplacer("-", "", "_", "", " ", "")
