// Package forest implements a bagged random forest of CART classification trees.
package forest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	model "github.com/okian/quiniela/internal/domain/model"
)

// Default forest configuration constants.
const (
	DefaultEstimators      = 100
	DefaultMaxDepth        = 6
	DefaultMinSamplesSplit = 10
	DefaultMinSamplesLeaf  = 5
	DefaultClasses         = 3
	DefaultSeed            = 42
)

// Forest is a random forest classifier. A fitted Forest is immutable and safe
// for concurrent prediction.
type Forest struct {
	estimators      int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int
	classes         int
	seed            int64
	workers         int

	trees []*tree
}

// New creates an unfitted forest with 100 trees of depth at most 6.
func New(opts ...Option) *Forest {
	f := &Forest{
		estimators:      DefaultEstimators,
		maxDepth:        DefaultMaxDepth,
		minSamplesSplit: DefaultMinSamplesSplit,
		minSamplesLeaf:  DefaultMinSamplesLeaf,
		classes:         DefaultClasses,
		seed:            DefaultSeed,
		workers:         runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.maxFeatures <= 0 || f.maxFeatures > model.FeatureCount {
		f.maxFeatures = max(1, int(math.Sqrt(model.FeatureCount)))
	}
	return f
}

// Fit trains every tree on its own bootstrap sample. Tree seeds are drawn from
// the master seed before any tree starts, so the result does not depend on the
// number of workers.
func (f *Forest) Fit(ctx context.Context, X []model.FeatureVector, y []int) error {
	if len(X) == 0 {
		return ErrEmptyTrainingSet
	}
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d features, %d labels", ErrLengthMismatch, len(X), len(y))
	}
	for i, label := range y {
		if label < 0 || label >= f.classes {
			return fmt.Errorf("%w: sample %d has label %d", ErrLabelOutOfRange, i, label)
		}
	}

	master := rand.New(rand.NewSource(f.seed)) //nolint:gosec // deterministic model
	seeds := make([]int64, f.estimators)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]*tree, f.estimators)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trees[i] = f.fitTree(X, y, seeds[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("forest fit cancelled: %w", err)
	}

	f.trees = trees
	return nil
}

func (f *Forest) fitTree(X []model.FeatureVector, y []int, seed int64) *tree {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic model
	bootstrap := make([]int, len(X))
	for i := range bootstrap {
		bootstrap[i] = rng.Intn(len(X))
	}
	g := &grower{
		X:               X,
		y:               y,
		classes:         f.classes,
		maxDepth:        f.maxDepth,
		minSamplesSplit: f.minSamplesSplit,
		minSamplesLeaf:  f.minSamplesLeaf,
		maxFeatures:     f.maxFeatures,
		rng:             rng,
	}
	return g.grow(bootstrap)
}

// Fitted reports whether Fit has completed successfully.
func (f *Forest) Fitted() bool { return len(f.trees) > 0 }

// Estimators returns the number of fitted trees.
func (f *Forest) Estimators() int { return len(f.trees) }

// Classes returns the size of the label space.
func (f *Forest) Classes() int { return f.classes }

// MaxTreeDepth returns the depth of the deepest fitted tree.
func (f *Forest) MaxTreeDepth() int {
	d := 0
	for _, t := range f.trees {
		d = max(d, t.depth())
	}
	return d
}

// PredictProba averages the leaf class distributions of every tree.
func (f *Forest) PredictProba(x model.FeatureVector) ([]float64, error) {
	if !f.Fitted() {
		return nil, ErrNotFitted
	}
	proba := make([]float64, f.classes)
	for _, t := range f.trees {
		for c, p := range t.predict(x) {
			proba[c] += p
		}
	}
	n := float64(len(f.trees))
	for c := range proba {
		proba[c] /= n
	}
	return proba, nil
}

// Predict returns the most probable class. Ties go to the lower index.
func (f *Forest) Predict(x model.FeatureVector) (int, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return argmax(proba), nil
}

func argmax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}
