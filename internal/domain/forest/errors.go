package forest

import "errors"

// Sentinel kinds for classifier errors.
var (
	ErrEmptyTrainingSet   = errors.New("empty training set")
	ErrLengthMismatch     = errors.New("features and labels differ in length")
	ErrLabelOutOfRange    = errors.New("label outside class range")
	ErrNotFitted          = errors.New("forest not fitted")
	ErrEmptyValidationSet = errors.New("empty validation set")
)
