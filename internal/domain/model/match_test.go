package model_test

import (
	"errors"
	"testing"
	"time"

	model "github.com/okian/quiniela/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResult(t *testing.T) {
	convey.Convey("Given result codes", t, func() {
		convey.Convey("When parsing valid codes", func() {
			h, errH := model.ParseResult("H")
			d, errD := model.ParseResult(" d ")
			a, errA := model.ParseResult("A")

			convey.Convey("Then they should map to the three outcomes", func() {
				convey.So(errH, convey.ShouldBeNil)
				convey.So(errD, convey.ShouldBeNil)
				convey.So(errA, convey.ShouldBeNil)
				convey.So(h, convey.ShouldEqual, model.HomeWin)
				convey.So(d, convey.ShouldEqual, model.Draw)
				convey.So(a, convey.ShouldEqual, model.AwayWin)
				convey.So(h.String(), convey.ShouldEqual, model.OutcomeHomeWin)
				convey.So(a.Code(), convey.ShouldEqual, "A")
			})
		})

		convey.Convey("When parsing an unknown code", func() {
			r, err := model.ParseResult("X")

			convey.Convey("Then it should fail with ErrUnknownResult", func() {
				convey.So(errors.Is(err, model.ErrUnknownResult), convey.ShouldBeTrue)
				convey.So(r.Valid(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When deriving results from goals", func() {
			convey.So(model.ResultFromGoals(2, 1), convey.ShouldEqual, model.HomeWin)
			convey.So(model.ResultFromGoals(1, 1), convey.ShouldEqual, model.Draw)
			convey.So(model.ResultFromGoals(0, 3), convey.ShouldEqual, model.AwayWin)
		})

		convey.Convey("Then Results should follow code order", func() {
			codes := ""
			for _, r := range model.Results {
				codes += r.Code()
			}
			convey.So(codes, convey.ShouldEqual, "ADH")
		})
	})
}

func TestMatchRecordValidate(t *testing.T) {
	convey.Convey("Given match records", t, func() {
		valid := model.MatchRecord{
			Date: day(2020, 9, 12), HomeTeam: "Betis", AwayTeam: "Sevilla",
			HomeGoals: 2, AwayGoals: 1, Result: model.HomeWin, Season: "2021",
		}

		convey.Convey("When the record is well formed", func() {
			convey.Convey("Then Validate should pass", func() {
				convey.So(valid.Validate(), convey.ShouldBeNil)
				convey.So(valid.Key(), convey.ShouldEqual, "2020-09-12|Betis|Sevilla")
				convey.So(valid.WonBy("Betis"), convey.ShouldBeTrue)
				convey.So(valid.WonBy("Sevilla"), convey.ShouldBeFalse)
				convey.So(valid.Involves("Sevilla"), convey.ShouldBeTrue)
				convey.So(valid.Involves("Getafe"), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When fields are broken", func() {
			cases := []func(m *model.MatchRecord){
				func(m *model.MatchRecord) { m.Date = time.Time{} },
				func(m *model.MatchRecord) { m.HomeTeam = "" },
				func(m *model.MatchRecord) { m.AwayTeam = m.HomeTeam },
				func(m *model.MatchRecord) { m.AwayGoals = -1 },
				func(m *model.MatchRecord) { m.Result = model.ResultUnknown },
				func(m *model.MatchRecord) { m.Result = model.Draw },
			}

			convey.Convey("Then each should be reported as malformed", func() {
				for _, breakIt := range cases {
					m := valid
					breakIt(&m)
					convey.So(errors.Is(m.Validate(), model.ErrMalformedRecord), convey.ShouldBeTrue)
				}
			})
		})
	})
}
