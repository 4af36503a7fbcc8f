// Package form computes leakage-free team form snapshots.
package form

import (
	"time"

	model "github.com/okian/quiniela/internal/domain/model"
)

// Default snapshot configuration constants.
const (
	DefaultLookback     = 10
	DefaultRecentWindow = 5
	maxNormalizedScore  = 100
)

// Calculator builds TeamFormSnapshots. It holds configuration only and is safe
// for concurrent use.
type Calculator struct {
	lookback     int
	recentWindow int
}

// NewCalculator creates a Calculator with the default lookback of 10 matches.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		lookback:     DefaultLookback,
		recentWindow: DefaultRecentWindow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookback returns the configured lookback.
func (c *Calculator) Lookback() int { return c.lookback }

// Snapshot summarizes team's last matches played strictly before asOf. Teams
// without usable history, including the empty name, get the cold-start default.
func (c *Calculator) Snapshot(team string, corpus *model.Corpus, asOf time.Time,
	profiles map[string]model.TeamQualityProfile,
) model.TeamFormSnapshot {
	return c.SnapshotWithLookback(team, corpus, asOf, c.lookback, profiles)
}

// SnapshotWithLookback is Snapshot with a per-call lookback. A non-positive
// lookback falls back to the configured one.
func (c *Calculator) SnapshotWithLookback(team string, corpus *model.Corpus, asOf time.Time,
	lookback int, profiles map[string]model.TeamQualityProfile,
) model.TeamFormSnapshot {
	if team == "" {
		return model.DefaultSnapshot()
	}
	if lookback <= 0 {
		lookback = c.lookback
	}

	recent := usable(corpus.TeamMatchesBefore(team, asOf, lookback))
	if len(recent) == 0 {
		return model.DefaultSnapshot()
	}

	var home, away side
	wins := 0
	for i, m := range recent {
		if m.HomeTeam == team {
			home.add(m.HomeGoals, m.AwayGoals, m.Result == model.HomeWin)
		} else {
			away.add(m.AwayGoals, m.HomeGoals, m.Result == model.AwayWin)
		}
		if i < c.recentWindow && m.WonBy(team) {
			wins++
		}
	}

	s := model.TeamFormSnapshot{
		RecentForm:        float64(wins) / float64(min(len(recent), c.recentWindow)),
		HistoricalQuality: model.DefaultHistoricalQuality,
	}
	s.HomeGoalsScoredAvg, s.HomeGoalsConcededAvg, s.HomeWinRate = home.averages()
	s.AwayGoalsScoredAvg, s.AwayGoalsConcededAvg, s.AwayWinRate = away.averages()
	if p, ok := profiles[team]; ok {
		s.HistoricalQuality = p.NormalizedScore / maxNormalizedScore
	}
	return s
}

// usable drops records without a known result or with negative goals.
func usable(ms []model.MatchRecord) []model.MatchRecord {
	out := ms[:0:0]
	for _, m := range ms {
		if m.Usable() {
			out = append(out, m)
		}
	}
	return out
}

// side accumulates one role's matches.
type side struct {
	matches, scored, conceded, wins int
}

func (s *side) add(scored, conceded int, won bool) {
	s.matches++
	s.scored += scored
	s.conceded += conceded
	if won {
		s.wins++
	}
}

// averages returns the partial cold-start default when the side is empty.
func (s side) averages() (scored, conceded, winRate float64) {
	if s.matches == 0 {
		return model.DefaultGoalsAvg, model.DefaultGoalsAvg, model.DefaultWinRate
	}
	n := float64(s.matches)
	return float64(s.scored) / n, float64(s.conceded) / n, float64(s.wins) / n
}
