package config_test

import (
	"runtime"
	"testing"

	"github.com/okian/quiniela/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DataDir, convey.ShouldEqual, "historic")
			convey.So(cfg.DBPath, convey.ShouldEqual, "laliga_data.db")
			convey.So(cfg.CorpusSource, convey.ShouldEqual, config.SourceCSV)
			convey.So(cfg.SampleCap, convey.ShouldEqual, 800)
			convey.So(cfg.MinSamples, convey.ShouldEqual, 50)
			convey.So(cfg.Seed, convey.ShouldEqual, 42)
			convey.So(cfg.Estimators, convey.ShouldEqual, 100)
			convey.So(cfg.MaxDepth, convey.ShouldEqual, 6)
			convey.So(cfg.MinSamplesSplit, convey.ShouldEqual, 10)
			convey.So(cfg.MinSamplesLeaf, convey.ShouldEqual, 5)
			convey.So(cfg.ValidationFraction, convey.ShouldEqual, 0.2)
			convey.So(cfg.FitWorkers, convey.ShouldEqual, runtime.NumCPU())
		})

		convey.Convey("Then the defaults should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
