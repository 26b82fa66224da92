package scoring

import "errors"

// ErrInvalidWeights is returned when a weight is negative or NaN.
var ErrInvalidWeights = errors.New("invalid weights")
