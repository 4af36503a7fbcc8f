package synth

import (
	"fmt"

	model "github.com/okian/quiniela/internal/domain/model"
	quality "github.com/okian/quiniela/internal/domain/quality"
)

// verifyRanking checks that the service ranks teams the way a local engine does
// on the same records.
func verifyRanking(records []model.MatchRecord, remote []Entry) error {
	if len(remote) == 0 {
		return fmt.Errorf("empty ranking")
	}
	local := quality.Rank(quality.NewEngine().Compute(model.NewCorpus(records)), len(remote))

	if len(local) != len(remote) {
		return fmt.Errorf("ranking length %d does not match local %d", len(remote), len(local))
	}
	for i := range local {
		if local[i].Team != remote[i].Team {
			return fmt.Errorf("rank %d is %s, expected %s", i+1, remote[i].Team, local[i].Team)
		}
	}
	return nil
}

// verifyPrediction checks the probability mass of a prediction.
func verifyPrediction(p Prediction) error {
	if len(p.Probabilities) != len(model.Results) {
		return fmt.Errorf("expected %d outcomes, got %d", len(model.Results), len(p.Probabilities))
	}
	var sum float64
	for outcome, prob := range p.Probabilities {
		if prob < 0 || prob > 1 {
			return fmt.Errorf("probability of %s out of range: %f", outcome, prob)
		}
		sum += prob
	}
	if sum < 1-probabilityTolerance || sum > 1+probabilityTolerance {
		return fmt.Errorf("probabilities sum to %f", sum)
	}
	return nil
}

const probabilityTolerance = 1e-6
