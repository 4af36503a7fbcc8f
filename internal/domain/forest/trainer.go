package forest

import (
	"context"
	"fmt"

	model "github.com/okian/quiniela/internal/domain/model"
)

// DefaultValidationFraction is the share of each class held out for validation.
const DefaultValidationFraction = 0.2

// Outcome is the result of a training run.
type Outcome struct {
	Forest         *Forest
	Accuracy       float64
	Report         *Report // nil when validation holds a single class
	TrainSize      int
	ValidationSize int
}

// Trainer splits a labeled set, fits a forest and evaluates it.
type Trainer struct {
	validationFraction float64
	seed               int64
	opts               []Option
}

// NewTrainer creates a Trainer. The seed drives the split and, unless opts
// override it, the forest.
func NewTrainer(validationFraction float64, seed int64, opts ...Option) *Trainer {
	if validationFraction <= 0 || validationFraction >= 1 {
		validationFraction = DefaultValidationFraction
	}
	return &Trainer{
		validationFraction: validationFraction,
		seed:               seed,
		opts:               append([]Option{WithSeed(seed)}, opts...),
	}
}

// Train fits a new forest. It never modifies a previously returned Forest.
func (t *Trainer) Train(ctx context.Context, X []model.FeatureVector, y []int, classNames []string) (Outcome, error) {
	if len(X) != len(y) {
		return Outcome{}, fmt.Errorf("%w: %d features, %d labels", ErrLengthMismatch, len(X), len(y))
	}
	trainIdx, valIdx := StratifiedSplit(y, t.validationFraction, t.seed)
	if len(trainIdx) == 0 {
		return Outcome{}, ErrEmptyTrainingSet
	}
	if len(valIdx) == 0 {
		return Outcome{}, ErrEmptyValidationSet
	}

	trainX, trainY := gather(X, y, trainIdx)
	valX, valY := gather(X, y, valIdx)

	opts := append(append([]Option(nil), t.opts...), WithClasses(len(classNames)))
	f := New(opts...)
	if err := f.Fit(ctx, trainX, trainY); err != nil {
		return Outcome{}, err
	}

	pred := make([]int, len(valX))
	for i, x := range valX {
		p, err := f.Predict(x)
		if err != nil {
			return Outcome{}, err
		}
		pred[i] = p
	}

	out := Outcome{
		Forest:         f,
		Accuracy:       Accuracy(valY, pred),
		TrainSize:      len(trainIdx),
		ValidationSize: len(valIdx),
	}
	if DistinctClasses(valY) > 1 {
		r := Evaluate(valY, pred, classNames)
		out.Report = &r
	}
	return out, nil
}

func gather(X []model.FeatureVector, y []int, idx []int) ([]model.FeatureVector, []int) {
	gx := make([]model.FeatureVector, len(idx))
	gy := make([]int, len(idx))
	for i, j := range idx {
		gx[i] = X[j]
		gy[i] = y[j]
	}
	return gx, gy
}
