package features

import "errors"

// Sentinel kinds for feature assembly errors.
var (
	ErrNonFinite = errors.New("feature value is not finite")
)
