package sampling

import "errors"

// Sentinel kinds for label encoding errors.
var (
	ErrUnknownClass = errors.New("unknown class")
)
