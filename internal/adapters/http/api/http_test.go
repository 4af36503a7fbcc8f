package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/quiniela/internal/adapters/http/api"
	"github.com/okian/quiniela/internal/adapters/mq/queue"
	service "github.com/okian/quiniela/internal/app"
	"github.com/okian/quiniela/internal/domain/model"
	"github.com/okian/quiniela/internal/domain/types"
	"github.com/okian/quiniela/pkg/logger"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

type mockDependencies struct {
	status     types.Status
	ranked     []types.RankedTeam
	profiles   map[string]model.TeamQualityProfile
	snapshot   model.TeamFormSnapshot
	snapErr    error
	prediction types.Prediction
	predictErr error
	enqueueErr error
	jobs       map[string]types.JobStatus

	lastLimit    int
	lastAsOf     time.Time
	lastLookback int
	lastHome     string
	lastAway     string
}

func (m *mockDependencies) Status() types.Status { return m.status }

func (m *mockDependencies) TopTeams(n int) []types.RankedTeam {
	m.lastLimit = n
	if n > len(m.ranked) {
		return m.ranked
	}
	return m.ranked[:n]
}

func (m *mockDependencies) Profile(team string) (model.TeamQualityProfile, error) {
	p, ok := m.profiles[team]
	if !ok {
		return model.TeamQualityProfile{}, fmt.Errorf("%w: %s", service.ErrUnknownTeam, team)
	}
	return p, nil
}

func (m *mockDependencies) Snapshot(_ context.Context, _ string, asOf time.Time, lookback int) (model.TeamFormSnapshot, error) {
	m.lastAsOf, m.lastLookback = asOf, lookback
	return m.snapshot, m.snapErr
}

func (m *mockDependencies) Predict(_ context.Context, home, away string) (types.Prediction, error) {
	m.lastHome, m.lastAway = home, away
	if m.predictErr != nil {
		return types.Prediction{}, m.predictErr
	}
	p := m.prediction
	p.HomeTeam, p.AwayTeam = home, away
	return p, nil
}

func (m *mockDependencies) EnqueueTraining(_ context.Context) (types.JobStatus, error) {
	if m.enqueueErr != nil {
		return types.JobStatus{}, m.enqueueErr
	}
	return types.JobStatus{ID: "job-1", State: types.JobQueued, RequestedAt: time.Now()}, nil
}

func (m *mockDependencies) Job(id string) (types.JobStatus, error) {
	st, ok := m.jobs[id]
	if !ok {
		return types.JobStatus{}, fmt.Errorf("%w: %s", service.ErrUnknownJob, id)
	}
	return st, nil
}

func newMock() *mockDependencies {
	return &mockDependencies{
		status: types.Status{Trained: true, CorpusMatches: 380, Teams: 20, Horizon: "2024-05-26"},
		ranked: []types.RankedTeam{
			{Rank: 1, Team: "Real Madrid", Score: 100},
			{Rank: 2, Team: "Barcelona", Score: 91.5},
			{Rank: 3, Team: "Girona", Score: 80},
		},
		profiles: map[string]model.TeamQualityProfile{
			"Girona": {Team: "Girona", NormalizedScore: 80, WinRate: 0.6, TotalMatches: 38},
		},
		snapshot: model.DefaultSnapshot(),
		prediction: types.Prediction{
			Probabilities: map[string]float64{"HomeWin": 0.5, "Draw": 0.3, "AwayWin": 0.2},
			MostLikely:    "HomeWin",
		},
		jobs: map[string]types.JobStatus{
			"job-1": {ID: "job-1", State: types.JobSucceeded, Accuracy: 0.52, Samples: 800},
		},
	}
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var out map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func TestHealthAndStatus(t *testing.T) {
	Convey("Given an API router", t, func() {
		deps := newMock()
		h := api.NewServer(deps).Router()

		Convey("Then /healthz reports ok", func() {
			w := do(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			So(w.Body.String(), ShouldContainSubstring, `"trained":true`)
		})

		Convey("Then /metrics serves the Prometheus registry", func() {
			_ = do(h, http.MethodGet, "/status", "")
			w := do(h, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "http_requests_total")
		})

		Convey("Then /status returns the pipeline overview", func() {
			w := do(h, http.MethodGet, "/status", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var st types.Status
			So(json.Unmarshal(w.Body.Bytes(), &st), ShouldBeNil)
			So(st.CorpusMatches, ShouldEqual, 380)
			So(st.Horizon, ShouldEqual, "2024-05-26")
		})

		Convey("Then unknown routes are 404", func() {
			w := do(h, http.MethodGet, "/leaderboard", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestQualityRoutes(t *testing.T) {
	Convey("Given an API router with a max limit of 5", t, func() {
		deps := newMock()
		h := api.NewServer(deps, api.WithTopN(2), api.WithMaxLimit(5)).Router()

		Convey("When no limit is given", func() {
			w := do(h, http.MethodGet, "/quality", "")

			Convey("Then the default top N is used", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rows []types.RankedTeam
				So(json.Unmarshal(w.Body.Bytes(), &rows), ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Team, ShouldEqual, "Real Madrid")
				So(deps.lastLimit, ShouldEqual, 2)
			})
		})

		Convey("When a valid limit is given", func() {
			w := do(h, http.MethodGet, "/quality?limit=3", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastLimit, ShouldEqual, 3)
		})

		Convey("When the limit is invalid", func() {
			for _, q := range []string{"0", "-1", "ten"} {
				w := do(h, http.MethodGet, "/quality?limit="+q, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			}
		})

		Convey("When the limit exceeds the max", func() {
			w := do(h, http.MethodGet, "/quality?limit=6", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "limit_exceeded")
		})

		Convey("When a known team is requested", func() {
			w := do(h, http.MethodGet, "/quality/Girona", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"score":80`)
			So(w.Body.String(), ShouldContainSubstring, `"matches":38`)
		})

		Convey("When an unknown team is requested", func() {
			w := do(h, http.MethodGet, "/quality/Nowhere%20FC", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w)["code"], ShouldEqual, "not_found")
		})
	})
}

func TestSnapshotRoute(t *testing.T) {
	Convey("Given an API router", t, func() {
		deps := newMock()
		h := api.NewServer(deps).Router()

		Convey("When no as_of is given", func() {
			w := do(h, http.MethodGet, "/snapshot/Girona", "")

			Convey("Then the horizon is used and cold-start values come back", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastAsOf.IsZero(), ShouldBeTrue)
				So(deps.lastLookback, ShouldEqual, 0)
				So(w.Body.String(), ShouldContainSubstring, `"recent_form":0.5`)
			})
		})

		Convey("When as_of and lookback are given", func() {
			w := do(h, http.MethodGet, "/snapshot/Girona?as_of=2023-01-15&lookback=5", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastAsOf.Format("2006-01-02"), ShouldEqual, "2023-01-15")
			So(deps.lastLookback, ShouldEqual, 5)
			So(w.Body.String(), ShouldContainSubstring, `"as_of":"2023-01-15"`)
		})

		Convey("When as_of is malformed", func() {
			w := do(h, http.MethodGet, "/snapshot/Girona?as_of=15/01/2023", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When lookback is not positive", func() {
			w := do(h, http.MethodGet, "/snapshot/Girona?lookback=0", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When no corpus is loaded", func() {
			deps.snapErr = service.ErrNoCorpus
			w := do(h, http.MethodGet, "/snapshot/Girona", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decodeError(w)["code"], ShouldEqual, "no_corpus")
		})
	})
}

func TestPredictRoute(t *testing.T) {
	Convey("Given an API router", t, func() {
		deps := newMock()
		h := api.NewServer(deps).Router()

		Convey("When a valid fixture is posted", func() {
			w := do(h, http.MethodPost, "/predict", `{"home_team":" Girona ","away_team":"Barcelona"}`)

			Convey("Then the prediction is returned with trimmed names", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var p types.Prediction
				So(json.Unmarshal(w.Body.Bytes(), &p), ShouldBeNil)
				So(p.HomeTeam, ShouldEqual, "Girona")
				So(p.MostLikely, ShouldEqual, "HomeWin")
				So(p.Probabilities, ShouldContainKey, "Draw")
				So(deps.lastAway, ShouldEqual, "Barcelona")
			})
		})

		Convey("When the request is invalid", func() {
			cases := map[string]string{
				"malformed json": `{"home_team":`,
				"missing home":   `{"away_team":"Barcelona"}`,
				"missing away":   `{"home_team":"Girona"}`,
				"same team":      `{"home_team":"Girona","away_team":"girona"}`,
				"unknown field":  `{"home_team":"Girona","away_team":"Barcelona","venue":"x"}`,
			}
			for name, body := range cases {
				w := do(h, http.MethodPost, "/predict", body)
				So(fmt.Sprintf("%s: %d", name, w.Code), ShouldEqual, fmt.Sprintf("%s: %d", name, http.StatusBadRequest))
			}
		})

		Convey("When the model is not trained", func() {
			deps.predictErr = model.ErrModelNotTrained
			w := do(h, http.MethodPost, "/predict", `{"home_team":"Girona","away_team":"Barcelona"}`)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decodeError(w)["code"], ShouldEqual, "model_not_trained")
		})

		Convey("When prediction fails unexpectedly", func() {
			deps.predictErr = errors.New("boom")
			w := do(h, http.MethodPost, "/predict", `{"home_team":"Girona","away_team":"Barcelona"}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When GET is used", func() {
			w := do(h, http.MethodGet, "/predict", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestTrainRoutes(t *testing.T) {
	Convey("Given an API router", t, func() {
		deps := newMock()
		h := api.NewServer(deps).Router()

		Convey("When a retrain is requested", func() {
			w := do(h, http.MethodPost, "/train", "")

			Convey("Then it is accepted with a job id", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(w.Header().Get("Location"), ShouldEqual, "/train/job-1")
				var acc types.TrainAccepted
				So(json.Unmarshal(w.Body.Bytes(), &acc), ShouldBeNil)
				So(acc.JobID, ShouldEqual, "job-1")
				So(acc.Status, ShouldEqual, types.JobQueued)
			})
		})

		Convey("When the queue is full", func() {
			deps.enqueueErr = fmt.Errorf("enqueue retrain: %w", queue.ErrFull)
			w := do(h, http.MethodPost, "/train", "")
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(decodeError(w)["code"], ShouldEqual, "backpressure")
		})

		Convey("When the pipeline is not started", func() {
			deps.enqueueErr = service.ErrNotStarted
			w := do(h, http.MethodPost, "/train", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When a known job is polled", func() {
			w := do(h, http.MethodGet, "/train/job-1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var st types.JobStatus
			So(json.Unmarshal(w.Body.Bytes(), &st), ShouldBeNil)
			So(st.State, ShouldEqual, types.JobSucceeded)
			So(st.Samples, ShouldEqual, 800)
		})

		Convey("When an unknown job is polled", func() {
			w := do(h, http.MethodGet, "/train/nope", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestCORS(t *testing.T) {
	Convey("Given a router restricted to one origin", t, func() {
		h := api.NewServer(newMock(), api.WithCORSOrigins([]string{"https://quiniela.example"})).Router()

		Convey("When a preflight comes from that origin", func() {
			req := httptest.NewRequest(http.MethodOptions, "/predict", http.NoBody)
			req.Header.Set("Origin", "https://quiniela.example")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then the origin is allowed", func() {
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://quiniela.example")
			})
		})

		Convey("When a request comes from another origin", func() {
			req := httptest.NewRequest(http.MethodGet, "/status", http.NoBody)
			req.Header.Set("Origin", "https://elsewhere.example")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then no allow header is set", func() {
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
			})
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		Convey("Then kinds and causes are both visible to errors.Is", func() {
			cause := errors.New("eof")
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: eof")
		})

		Convey("Then Wrap of nil is nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})

		Convey("Then NewKind reports op and kind", func() {
			So(api.NewKind("api.op", api.ErrLimitExceeded).Error(), ShouldEqual, "api.op: limit exceeded")
		})
	})
}
