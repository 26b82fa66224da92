package service

import "errors"

var (
	// ErrInvalidRequest is returned for requests missing a user or posting.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotStarted is returned when background work is requested before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrQueueFull is returned when a manual refresh cannot be queued.
	ErrQueueFull = errors.New("sweep queue full")
)
