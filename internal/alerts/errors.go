package alerts

import "errors"

var (
	// ErrAlertPersist is returned when an alert could not be stored. The
	// dispatcher is not called in that case.
	ErrAlertPersist = errors.New("alerts: persist failed")
	// ErrDispatch wraps dispatcher failures.
	ErrDispatch = errors.New("alerts: dispatch failed")
)
