// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Result is the full-time outcome of a match from the home side's perspective.
type Result uint8

// Known results. The zero value is not a valid result.
const (
	ResultUnknown Result = iota
	HomeWin
	Draw
	AwayWin
)

// Outcome names used in prediction output.
const (
	OutcomeHomeWin = "HomeWin"
	OutcomeDraw    = "Draw"
	OutcomeAwayWin = "AwayWin"
)

// Results lists the valid results in their result-code order (A, D, H).
var Results = [...]Result{AwayWin, Draw, HomeWin} //nolint:gochecknoglobals // fixed outcome space

// ParseResult parses a football-data result code (H, D or A).
func ParseResult(code string) (Result, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "H":
		return HomeWin, nil
	case "D":
		return Draw, nil
	case "A":
		return AwayWin, nil
	default:
		return ResultUnknown, fmt.Errorf("%w: %q", ErrUnknownResult, code)
	}
}

// ResultFromGoals derives the result implied by a scoreline.
func ResultFromGoals(home, away int) Result {
	switch {
	case home > away:
		return HomeWin
	case home < away:
		return AwayWin
	default:
		return Draw
	}
}

// Code returns the single-letter result code.
func (r Result) Code() string {
	switch r {
	case HomeWin:
		return "H"
	case Draw:
		return "D"
	case AwayWin:
		return "A"
	default:
		return "?"
	}
}

// String returns the outcome name.
func (r Result) String() string {
	switch r {
	case HomeWin:
		return OutcomeHomeWin
	case Draw:
		return OutcomeDraw
	case AwayWin:
		return OutcomeAwayWin
	default:
		return "Unknown"
	}
}

// Valid reports whether r is one of the three known results.
func (r Result) Valid() bool {
	return r == HomeWin || r == Draw || r == AwayWin
}

// MatchRecord is a single played fixture. Records are never mutated after load.
type MatchRecord struct {
	Date      time.Time
	HomeTeam  string
	AwayTeam  string
	HomeGoals int
	AwayGoals int
	Result    Result
	Season    string
	Division  string
}

// Validate reports whether the record can contribute to statistics.
func (m MatchRecord) Validate() error {
	switch {
	case m.Date.IsZero():
		return fmt.Errorf("%w: missing date", ErrMalformedRecord)
	case m.HomeTeam == "" || m.AwayTeam == "":
		return fmt.Errorf("%w: missing team name", ErrMalformedRecord)
	case m.HomeTeam == m.AwayTeam:
		return fmt.Errorf("%w: %s plays itself", ErrMalformedRecord, m.HomeTeam)
	case m.HomeGoals < 0 || m.AwayGoals < 0:
		return fmt.Errorf("%w: negative goals %d-%d", ErrMalformedRecord, m.HomeGoals, m.AwayGoals)
	case !m.Result.Valid():
		return fmt.Errorf("%w: result %d", ErrMalformedRecord, m.Result)
	case ResultFromGoals(m.HomeGoals, m.AwayGoals) != m.Result:
		return fmt.Errorf("%w: result %s does not match score %d-%d",
			ErrMalformedRecord, m.Result.Code(), m.HomeGoals, m.AwayGoals)
	}
	return nil
}

// Usable reports whether the record carries what the statistics read: a known
// result code and non-negative goals. Score and result agreement is checked at
// load time, not here.
func (m MatchRecord) Usable() bool {
	return m.Result.Valid() && m.HomeGoals >= 0 && m.AwayGoals >= 0
}

// Key identifies a fixture independently of the file it was loaded from.
func (m MatchRecord) Key() string {
	return m.Date.Format(time.DateOnly) + "|" + m.HomeTeam + "|" + m.AwayTeam
}

// Involves reports whether team played in the match.
func (m MatchRecord) Involves(team string) bool {
	return m.HomeTeam == team || m.AwayTeam == team
}

// WonBy reports whether team won the match.
func (m MatchRecord) WonBy(team string) bool {
	return (m.HomeTeam == team && m.Result == HomeWin) ||
		(m.AwayTeam == team && m.Result == AwayWin)
}
