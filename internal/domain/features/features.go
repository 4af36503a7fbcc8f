// Package features turns two team snapshots into the classifier's input vector.
package features

import (
	"fmt"
	"math"

	model "github.com/okian/quiniela/internal/domain/model"
)

// Home advantage parameters. The cap has no matching floor.
const (
	baseHomeAdvantage    = 0.15
	qualityAdvantageRate = 0.1
	maxHomeAdvantage     = 0.25
)

// HomeAdvantage returns the home edge for a quality gap, capped at 0.25.
func HomeAdvantage(homeQuality, awayQuality float64) float64 {
	return math.Min(maxHomeAdvantage, baseHomeAdvantage+qualityAdvantageRate*(homeQuality-awayQuality))
}

// Assemble builds the 18-entry feature vector for a fixture. The order is fixed;
// see model.FeatureNames.
func Assemble(home, away model.TeamFormSnapshot) (model.FeatureVector, error) {
	v := model.FeatureVector{
		home.HomeGoalsScoredAvg,
		home.HomeGoalsConcededAvg,
		home.HomeWinRate,
		home.RecentForm,
		home.HistoricalQuality,
		away.AwayGoalsScoredAvg,
		away.AwayGoalsConcededAvg,
		away.AwayWinRate,
		away.RecentForm,
		away.HistoricalQuality,
		home.HomeGoalsScoredAvg - away.AwayGoalsConcededAvg,
		away.AwayGoalsScoredAvg - home.HomeGoalsConcededAvg,
		home.HomeWinRate - away.AwayWinRate,
		home.HistoricalQuality - away.HistoricalQuality,
		mean(home.HomeWinRate, home.RecentForm, home.HistoricalQuality),
		mean(away.AwayWinRate, away.RecentForm, away.HistoricalQuality),
		HomeAdvantage(home.HistoricalQuality, away.HistoricalQuality),
		home.RecentForm - away.RecentForm,
	}

	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return model.FeatureVector{}, fmt.Errorf("%w: %s=%v", ErrNonFinite, model.FeatureNames[i], x)
		}
	}
	return v, nil
}

func mean(xs ...float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
