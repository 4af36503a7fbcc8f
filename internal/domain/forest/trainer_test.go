package forest_test

import (
	"context"
	"errors"
	"testing"

	forest "github.com/okian/quiniela/internal/domain/forest"
	model "github.com/okian/quiniela/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTrainer(t *testing.T) {
	names := []string{"AwayWin", "Draw", "HomeWin"}

	Convey("Given a labeled set with all classes", t, func() {
		X, y := separable(500, 8)
		trainer := forest.NewTrainer(0.2, 42, forest.WithEstimators(25))

		Convey("When training", func() {
			out, err := trainer.Train(context.Background(), X, y, names)

			Convey("Then the outcome should carry a fitted model and a report", func() {
				So(err, ShouldBeNil)
				So(out.Forest.Fitted(), ShouldBeTrue)
				So(out.Forest.Estimators(), ShouldEqual, 25)
				So(out.TrainSize+out.ValidationSize, ShouldEqual, 500)
				So(out.ValidationSize, ShouldBeBetween, 95, 105)
				So(out.Accuracy, ShouldBeBetweenOrEqual, 0, 1)
				So(out.Report, ShouldNotBeNil)
				So(out.Report.Accuracy, ShouldEqual, out.Accuracy)
			})

			Convey("And training again should reproduce the accuracy", func() {
				again, err := trainer.Train(context.Background(), X, y, names)
				So(err, ShouldBeNil)
				So(again.Accuracy, ShouldEqual, out.Accuracy)
				So(again.Forest, ShouldNotPointTo, out.Forest)
			})
		})
	})

	Convey("Given a set whose labels are all the same", t, func() {
		X, _ := separable(60, 9)
		y := make([]int, len(X))
		for i := range y {
			y[i] = 2
		}

		Convey("When training", func() {
			out, err := forest.NewTrainer(0.2, 42, forest.WithEstimators(5)).Train(context.Background(), X, y, names)

			Convey("Then accuracy should be reported without a class report", func() {
				So(err, ShouldBeNil)
				So(out.Accuracy, ShouldEqual, 1.0)
				So(out.Report, ShouldBeNil)
			})
		})
	})

	Convey("Given mismatched or tiny inputs", t, func() {
		trainer := forest.NewTrainer(0, 42)

		Convey("Then Train should fail cleanly", func() {
			_, err := trainer.Train(context.Background(), make([]model.FeatureVector, 3), []int{0}, names)
			So(errors.Is(err, forest.ErrLengthMismatch), ShouldBeTrue)

			_, err = trainer.Train(context.Background(), make([]model.FeatureVector, 1), []int{0}, names)
			So(errors.Is(err, forest.ErrEmptyValidationSet), ShouldBeTrue)
		})
	})
}
