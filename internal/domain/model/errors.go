package model

import "errors"

var (
	// ErrUnknownValue is returned when a closed-set value cannot be parsed.
	ErrUnknownValue = errors.New("unknown value")
	// ErrInvalidPreference is returned by Preference.Validate.
	ErrInvalidPreference = errors.New("invalid preference")
)
