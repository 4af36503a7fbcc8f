package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrClosed     = errors.New("store closed")
	ErrCorruptRow = errors.New("corrupt stored match")
)
