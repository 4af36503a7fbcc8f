package model

import "errors"

// Sentinel kinds for domain errors.
var (
	// ErrInsufficientData is returned when training has fewer usable samples than required.
	ErrInsufficientData = errors.New("insufficient training data")
	// ErrModelNotTrained is returned by prediction before any successful training run.
	ErrModelNotTrained = errors.New("model not trained")
	// ErrMalformedRecord marks a match record that cannot contribute to features.
	ErrMalformedRecord = errors.New("malformed match record")
	// ErrUnknownResult is returned when a result code is not H, D or A.
	ErrUnknownResult = errors.New("unknown result code")
)
