package csvload

import "errors"

// Sentinel kinds for loader errors.
var (
	ErrNoFiles       = errors.New("no season files found")
	ErrMissingColumn = errors.New("missing required column")
)
