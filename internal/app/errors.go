package service

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrNotStarted  = errors.New("pipeline not started")
	ErrNoCorpus    = errors.New("no corpus loaded")
	ErrUnknownTeam = errors.New("unknown team")
	ErrUnknownJob  = errors.New("unknown job")
	ErrShutdown    = errors.New("pipeline shut down before the job ran")
)
