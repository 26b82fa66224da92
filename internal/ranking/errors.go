package ranking

import "errors"

var (
	// ErrStoreRead is returned when postings cannot be loaded. No partial
	// result accompanies it.
	ErrStoreRead = errors.New("ranking: store read failed")
	// ErrStorePersist marks score rows that could not be written.
	ErrStorePersist = errors.New("ranking: score persist failed")
)
