package model

// TeamQualityProfile is a team's whole-corpus quality summary.
type TeamQualityProfile struct {
	Team             string
	RawScore         float64
	NormalizedScore  float64 // [0,100] unless every team scored the same raw value
	WinRate          float64
	DrawRate         float64
	GoalDiffPerMatch float64
	TotalMatches     int
	HomeWinRate      float64
	AwayWinRate      float64
}

// TeamFormSnapshot summarizes a team's form strictly before a given date.
type TeamFormSnapshot struct {
	HomeGoalsScoredAvg   float64
	HomeGoalsConcededAvg float64
	HomeWinRate          float64
	AwayGoalsScoredAvg   float64
	AwayGoalsConcededAvg float64
	AwayWinRate          float64
	RecentForm           float64
	HistoricalQuality    float64
}

// Cold-start values.
const (
	DefaultGoalsAvg          = 1.0
	DefaultWinRate           = 0.33
	DefaultRecentForm        = 0.5
	DefaultHistoricalQuality = 0.5
)

// DefaultSnapshot is the snapshot of a team with no prior matches.
func DefaultSnapshot() TeamFormSnapshot {
	return TeamFormSnapshot{
		HomeGoalsScoredAvg:   DefaultGoalsAvg,
		HomeGoalsConcededAvg: DefaultGoalsAvg,
		HomeWinRate:          DefaultWinRate,
		AwayGoalsScoredAvg:   DefaultGoalsAvg,
		AwayGoalsConcededAvg: DefaultGoalsAvg,
		AwayWinRate:          DefaultWinRate,
		RecentForm:           DefaultRecentForm,
		HistoricalQuality:    DefaultHistoricalQuality,
	}
}

// FeatureCount is the width of every feature vector.
const FeatureCount = 18

// FeatureVector is the classifier input for one fixture.
type FeatureVector [FeatureCount]float64

// FeatureNames labels each FeatureVector position.
var FeatureNames = [FeatureCount]string{ //nolint:gochecknoglobals // fixed feature layout
	"home_goals_scored_avg",
	"home_goals_conceded_avg",
	"home_win_rate",
	"home_recent_form",
	"home_quality",
	"away_goals_scored_avg",
	"away_goals_conceded_avg",
	"away_win_rate",
	"away_recent_form",
	"away_quality",
	"attack_vs_defense_home",
	"attack_vs_defense_away",
	"win_rate_diff",
	"quality_diff",
	"home_strength",
	"away_strength",
	"home_advantage",
	"form_diff",
}
