package quota

import "errors"

// ErrQuotaExceeded is returned when no deliveries remain for the day.
var ErrQuotaExceeded = errors.New("daily quota exceeded")
