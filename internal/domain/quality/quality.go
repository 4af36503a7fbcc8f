// Package quality computes whole-corpus team quality scores.
package quality

import (
	"math"
	"sort"

	model "github.com/okian/quiniela/internal/domain/model"
	types "github.com/okian/quiniela/internal/domain/types"
)

// Default score weights.
const (
	defaultWinWeight      = 50
	defaultDrawWeight     = 25
	defaultGoalDiffWeight = 25
	defaultGoalDiffOffset = 0.5
	maxNormalizedScore    = 100
)

// Scorer computes quality profiles for every team in a corpus.
type Scorer interface {
	Compute(corpus *model.Corpus) map[string]model.TeamQualityProfile
}

// Engine is the default Scorer.
type Engine struct {
	winWeight      float64
	drawWeight     float64
	goalDiffWeight float64
	goalDiffOffset float64
}

// NewEngine creates an Engine with the standard 50/25/25 weighting.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		winWeight:      defaultWinWeight,
		drawWeight:     defaultDrawWeight,
		goalDiffWeight: defaultGoalDiffWeight,
		goalDiffOffset: defaultGoalDiffOffset,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type tally struct {
	homeMatches, awayMatches int
	homeWins, awayWins       int
	draws                    int
	scored, conceded         int
}

// Compute builds a profile for every team that played at least one home match.
// Each call returns a fresh map.
func (e *Engine) Compute(corpus *model.Corpus) map[string]model.TeamQualityProfile {
	profiles := make(map[string]model.TeamQualityProfile)
	if corpus.Len() == 0 {
		return profiles
	}

	for _, team := range corpus.HomeTeams() {
		var t tally
		for _, m := range corpus.TeamMatches(team) {
			if !m.Usable() {
				continue
			}
			if m.HomeTeam == team {
				t.homeMatches++
				t.scored += m.HomeGoals
				t.conceded += m.AwayGoals
				if m.Result == model.HomeWin {
					t.homeWins++
				}
			} else {
				t.awayMatches++
				t.scored += m.AwayGoals
				t.conceded += m.HomeGoals
				if m.Result == model.AwayWin {
					t.awayWins++
				}
			}
			if m.Result == model.Draw {
				t.draws++
			}
		}
		profiles[team] = e.profile(team, t)
	}

	normalize(profiles)
	return profiles
}

func (e *Engine) profile(team string, t tally) model.TeamQualityProfile {
	total := t.homeMatches + t.awayMatches
	p := model.TeamQualityProfile{Team: team, TotalMatches: total}
	if total == 0 {
		return p
	}

	n := float64(total)
	p.WinRate = float64(t.homeWins+t.awayWins) / n
	p.DrawRate = float64(t.draws) / n
	p.GoalDiffPerMatch = float64(t.scored-t.conceded) / n
	if t.homeMatches > 0 {
		p.HomeWinRate = float64(t.homeWins) / float64(t.homeMatches)
	}
	if t.awayMatches > 0 {
		p.AwayWinRate = float64(t.awayWins) / float64(t.awayMatches)
	}

	p.RawScore = e.winWeight*p.WinRate +
		e.drawWeight*p.DrawRate +
		e.goalDiffWeight*math.Max(0, p.GoalDiffPerMatch+e.goalDiffOffset)
	p.NormalizedScore = p.RawScore
	return p
}

// normalize min-max scales raw scores to [0,100]. When every raw score is equal the
// profiles keep their raw value.
func normalize(profiles map[string]model.TeamQualityProfile) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range profiles {
		lo = math.Min(lo, p.RawScore)
		hi = math.Max(hi, p.RawScore)
	}
	if hi == lo {
		return
	}
	for team, p := range profiles {
		p.NormalizedScore = (p.RawScore - lo) / (hi - lo) * maxNormalizedScore
		profiles[team] = p
	}
}

// Rank orders profiles by normalized score (ties by team name) and returns at
// most n rows. A non-positive n returns every team.
func Rank(profiles map[string]model.TeamQualityProfile, n int) []types.RankedTeam {
	all := make([]model.TeamQualityProfile, 0, len(profiles))
	for _, p := range profiles {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].NormalizedScore != all[j].NormalizedScore {
			return all[i].NormalizedScore > all[j].NormalizedScore
		}
		return all[i].Team < all[j].Team
	})
	if n > 0 && n < len(all) {
		all = all[:n]
	}

	out := make([]types.RankedTeam, len(all))
	for i, p := range all {
		out[i] = types.RankedTeam{
			Rank:             i + 1,
			Team:             p.Team,
			Score:            p.NormalizedScore,
			RawScore:         p.RawScore,
			WinRate:          p.WinRate,
			DrawRate:         p.DrawRate,
			GoalDiffPerMatch: p.GoalDiffPerMatch,
			Matches:          p.TotalMatches,
		}
	}
	return out
}
