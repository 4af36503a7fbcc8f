package forest_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	forest "github.com/okian/quiniela/internal/domain/forest"
	model "github.com/okian/quiniela/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// separable returns n samples whose class is decided by feature 0 and 1.
func separable(n int, seed int64) ([]model.FeatureVector, []int) {
	rng := rand.New(rand.NewSource(seed))
	X := make([]model.FeatureVector, n)
	y := make([]int, n)
	for i := range X {
		for j := range X[i] {
			X[i][j] = rng.Float64()
		}
		switch {
		case X[i][0] < 0.33:
			y[i] = 0
		case X[i][1] < 0.5:
			y[i] = 1
		default:
			y[i] = 2
		}
	}
	return X, y
}

func TestForestFit(t *testing.T) {
	Convey("Given a separable training set", t, func() {
		X, y := separable(600, 1)

		Convey("When fitting the default forest", func() {
			f := forest.New()
			err := f.Fit(context.Background(), X, y)

			Convey("Then it should build 100 bounded trees", func() {
				So(err, ShouldBeNil)
				So(f.Fitted(), ShouldBeTrue)
				So(f.Estimators(), ShouldEqual, 100)
				So(f.Classes(), ShouldEqual, 3)
				So(f.MaxTreeDepth(), ShouldBeLessThanOrEqualTo, forest.DefaultMaxDepth)
				So(f.MaxTreeDepth(), ShouldBeGreaterThan, 0)
			})

			Convey("And probabilities should be a distribution", func() {
				testX, _ := separable(50, 2)
				for _, x := range testX {
					p, err := f.PredictProba(x)
					So(err, ShouldBeNil)
					So(len(p), ShouldEqual, 3)
					sum := 0.0
					for _, v := range p {
						So(v, ShouldBeGreaterThanOrEqualTo, 0)
						sum += v
					}
					So(math.Abs(sum-1), ShouldBeLessThan, 1e-9)
				}
			})

			Convey("And it should learn the rule", func() {
				testX, testY := separable(300, 3)
				pred := make([]int, len(testX))
				for i, x := range testX {
					pred[i], _ = f.Predict(x)
				}
				So(forest.Accuracy(testY, pred), ShouldBeGreaterThan, 0.75)
			})
		})

		Convey("When fitting with one worker and with many", func() {
			serial := forest.New(forest.WithEstimators(20), forest.WithWorkers(1))
			parallel := forest.New(forest.WithEstimators(20), forest.WithWorkers(8))
			So(serial.Fit(context.Background(), X, y), ShouldBeNil)
			So(parallel.Fit(context.Background(), X, y), ShouldBeNil)

			Convey("Then both forests should predict identically", func() {
				testX, _ := separable(40, 4)
				for _, x := range testX {
					a, _ := serial.PredictProba(x)
					b, _ := parallel.PredictProba(x)
					So(a, ShouldResemble, b)
				}
			})
		})

		Convey("When the seed changes", func() {
			a := forest.New(forest.WithEstimators(10), forest.WithSeed(1))
			b := forest.New(forest.WithEstimators(10), forest.WithSeed(2))
			So(a.Fit(context.Background(), X, y), ShouldBeNil)
			So(b.Fit(context.Background(), X, y), ShouldBeNil)

			Convey("Then the ensembles should differ somewhere", func() {
				testX, _ := separable(40, 5)
				differ := false
				for _, x := range testX {
					pa, _ := a.PredictProba(x)
					pb, _ := b.PredictProba(x)
					for c := range pa {
						if pa[c] != pb[c] {
							differ = true
						}
					}
				}
				So(differ, ShouldBeTrue)
			})
		})

		Convey("When depth is limited to one", func() {
			f := forest.New(forest.WithEstimators(5), forest.WithMaxDepth(1))
			So(f.Fit(context.Background(), X, y), ShouldBeNil)

			Convey("Then every tree should be a stump", func() {
				So(f.MaxTreeDepth(), ShouldEqual, 1)
			})
		})

		Convey("When the minimum leaf exceeds half the data", func() {
			f := forest.New(forest.WithEstimators(3), forest.WithMinSamplesLeaf(400))
			So(f.Fit(context.Background(), X, y), ShouldBeNil)

			Convey("Then no split should be possible", func() {
				So(f.MaxTreeDepth(), ShouldEqual, 0)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			f := forest.New()
			err := f.Fit(ctx, X, y)

			Convey("Then the fit should fail and leave the forest unfitted", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(f.Fitted(), ShouldBeFalse)
			})
		})
	})

	Convey("Given invalid input", t, func() {
		f := forest.New()

		Convey("Then Fit should reject it", func() {
			So(errors.Is(f.Fit(context.Background(), nil, nil), forest.ErrEmptyTrainingSet), ShouldBeTrue)
			So(errors.Is(f.Fit(context.Background(), make([]model.FeatureVector, 2), []int{0}), forest.ErrLengthMismatch), ShouldBeTrue)
			So(errors.Is(f.Fit(context.Background(), make([]model.FeatureVector, 1), []int{3}), forest.ErrLabelOutOfRange), ShouldBeTrue)
		})

		Convey("Then an unfitted forest should refuse to predict", func() {
			_, err := f.PredictProba(model.FeatureVector{})
			So(errors.Is(err, forest.ErrNotFitted), ShouldBeTrue)
			_, err = f.Predict(model.FeatureVector{})
			So(errors.Is(err, forest.ErrNotFitted), ShouldBeTrue)
		})
	})

	Convey("Given a single-class training set", t, func() {
		X, _ := separable(30, 6)
		y := make([]int, len(X))
		for i := range y {
			y[i] = 1
		}
		f := forest.New(forest.WithEstimators(4))
		So(f.Fit(context.Background(), X, y), ShouldBeNil)

		Convey("Then every prediction should be certain", func() {
			p, err := f.PredictProba(X[0])
			So(err, ShouldBeNil)
			So(p, ShouldResemble, []float64{0, 1, 0})
		})
	})
}
