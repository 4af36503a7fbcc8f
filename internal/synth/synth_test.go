package synth

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	model "github.com/okian/quiniela/internal/domain/model"
	quality "github.com/okian/quiniela/internal/domain/quality"
	"github.com/okian/quiniela/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLeague(t *testing.T) {
	Convey("Given the league generator", t, func() {
		Convey("When generating two seasons of six teams", func() {
			records := League(6, 2, 2020, 7)

			Convey("Then every pairing should be played home and away each season", func() {
				So(len(records), ShouldEqual, 2*6*5)
				seen := map[string]int{}
				for _, m := range records {
					So(m.Validate(), ShouldBeNil)
					seen[m.Season+m.HomeTeam+m.AwayTeam]++
				}
				So(len(seen), ShouldEqual, 60)
				So(records[0].Season, ShouldEqual, "2021")
				So(records[len(records)-1].Season, ShouldEqual, "2122")
			})
		})

		Convey("When generating twice with the same seed", func() {
			a := League(8, 1, 2018, 42)
			b := League(8, 1, 2018, 42)
			c := League(8, 1, 2018, 43)

			Convey("Then the output should be identical", func() {
				So(a, ShouldResemble, b)
				So(a, ShouldNotResemble, c)
			})
		})

		Convey("When the shape is degenerate", func() {
			So(League(1, 3, 2018, 1), ShouldBeEmpty)
			So(League(4, 0, 2018, 1), ShouldBeEmpty)
		})

		Convey("Then names should fall back past the club list", func() {
			So(TeamName(0), ShouldEqual, "Real Madrid")
			So(TeamName(24), ShouldEqual, "Club 25")
			So(SeasonLabel(1999), ShouldEqual, "9900")
		})
	})
}

func TestWriteSeasons(t *testing.T) {
	Convey("Given generated records", t, func() {
		dir := t.TempDir()
		records := League(4, 2, 2016, 3)

		Convey("When writing them", func() {
			paths, err := WriteSeasons(dir, records)

			Convey("Then one file per season should hold every match", func() {
				So(err, ShouldBeNil)
				So(paths, ShouldResemble, []string{
					filepath.Join(dir, "season-1617.csv"),
					filepath.Join(dir, "season-1718.csv"),
				})

				f, err := os.Open(paths[0])
				So(err, ShouldBeNil)
				defer f.Close()
				rows, err := csv.NewReader(f).ReadAll()
				So(err, ShouldBeNil)
				So(rows[0], ShouldResemble, Header)
				So(len(rows), ShouldEqual, 1+12)
				So(rows[1][0], ShouldEqual, Division)
				So(rows[1][1], ShouldEqual, records[0].Date.Format("02/01/2006"))
				So(rows[1][6], ShouldEqual, records[0].Result.Code())
			})
		})
	})
}

func TestVerification(t *testing.T) {
	Convey("Given a generated corpus", t, func() {
		records := League(6, 1, 2019, 11)
		local := quality.Rank(quality.NewEngine().Compute(model.NewCorpus(records)), 3)

		Convey("When the remote ranking matches", func() {
			remote := make([]Entry, len(local))
			for i, r := range local {
				remote[i] = Entry{Rank: r.Rank, Team: r.Team, Score: r.Score}
			}
			So(verifyRanking(records, remote), ShouldBeNil)

			Convey("And when it is reordered it should fail", func() {
				remote[0], remote[1] = remote[1], remote[0]
				So(verifyRanking(records, remote), ShouldNotBeNil)
			})
		})

		Convey("When the remote ranking is empty", func() {
			So(verifyRanking(records, nil), ShouldNotBeNil)
		})
	})

	Convey("Given predictions", t, func() {
		good := Prediction{Probabilities: map[string]float64{"HomeWin": 0.5, "Draw": 0.3, "AwayWin": 0.2}}
		short := Prediction{Probabilities: map[string]float64{"HomeWin": 1}}
		heavy := Prediction{Probabilities: map[string]float64{"HomeWin": 0.5, "Draw": 0.5, "AwayWin": 0.5}}

		So(verifyPrediction(good), ShouldBeNil)
		So(verifyPrediction(short), ShouldNotBeNil)
		So(verifyPrediction(heavy), ShouldNotBeNil)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a fake service", t, func() {
		So(logger.Init(logger.WithWriter(io.Discard)), ShouldBeNil)

		records := League(4, 1, 2020, 5)
		ranking := quality.Rank(quality.NewEngine().Compute(model.NewCorpus(records)), 2)
		var polls atomic.Int32

		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		mux.HandleFunc("/train", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			_ = json.NewEncoder(w).Encode(TrainAccepted{JobID: "job-1", Status: "queued"})
		})
		mux.HandleFunc("/train/job-1", func(w http.ResponseWriter, _ *http.Request) {
			state := "running"
			if polls.Add(1) > 1 {
				state = "succeeded"
			}
			_ = json.NewEncoder(w).Encode(JobStatus{ID: "job-1", State: state, Accuracy: 0.5})
		})
		mux.HandleFunc("/quality", func(w http.ResponseWriter, _ *http.Request) {
			entries := make([]Entry, len(ranking))
			for i, r := range ranking {
				entries[i] = Entry{Rank: r.Rank, Team: r.Team, Score: r.Score}
			}
			_ = json.NewEncoder(w).Encode(entries)
		})
		mux.HandleFunc("/predict", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(Prediction{
				HomeTeam: ranking[0].Team, AwayTeam: ranking[1].Team, MostLikely: "HomeWin",
				Probabilities: map[string]float64{"HomeWin": 0.6, "Draw": 0.25, "AwayWin": 0.15},
			})
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When running against it", func() {
			cfg := &Config{
				Dir: t.TempDir(), Teams: 4, Seasons: 1, FirstSeason: 2020, Seed: 5,
				BaseURL: srv.URL, Timeout: time.Second, PollEvery: time.Millisecond, TopN: 2,
			}
			err := Run(context.Background(), cfg)

			Convey("Then it should write the files and finish the remote steps", func() {
				So(err, ShouldBeNil)
				So(polls.Load(), ShouldEqual, 2)
				_, statErr := os.Stat(filepath.Join(cfg.Dir, "season-2021.csv"))
				So(statErr, ShouldBeNil)
			})
		})

		Convey("When no URL is configured", func() {
			cfg := &Config{Dir: t.TempDir(), Teams: 4, Seasons: 1, FirstSeason: 2020, Seed: 5}

			Convey("Then only the files should be written", func() {
				So(Run(context.Background(), cfg), ShouldBeNil)
				So(polls.Load(), ShouldEqual, 0)
			})
		})
	})
}
