package synth

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusAccepted = 202
)

// Generator defaults.
const (
	DefaultTeams       = 20
	DefaultSeasons     = 5
	DefaultFirstSeason = 2015
	DefaultSeed        = 42
	Division           = "SP1"
)

// Runner configuration constants.
const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultTopN         = 10
)
