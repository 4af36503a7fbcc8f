package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/quiniela/internal/domain/model"
)

const asOfLayout = "2006-01-02"

type profileResponse struct {
	Team             string  `json:"team"`
	Score            float64 `json:"score"`
	RawScore         float64 `json:"raw_score"`
	WinRate          float64 `json:"win_rate"`
	DrawRate         float64 `json:"draw_rate"`
	GoalDiffPerMatch float64 `json:"goal_diff_per_match"`
	Matches          int     `json:"matches"`
	HomeWinRate      float64 `json:"home_win_rate"`
	AwayWinRate      float64 `json:"away_win_rate"`
}

func newProfileResponse(p model.TeamQualityProfile) profileResponse {
	return profileResponse{
		Team:             p.Team,
		Score:            p.NormalizedScore,
		RawScore:         p.RawScore,
		WinRate:          p.WinRate,
		DrawRate:         p.DrawRate,
		GoalDiffPerMatch: p.GoalDiffPerMatch,
		Matches:          p.TotalMatches,
		HomeWinRate:      p.HomeWinRate,
		AwayWinRate:      p.AwayWinRate,
	}
}

type snapshotResponse struct {
	Team                 string  `json:"team"`
	AsOf                 string  `json:"as_of,omitempty"`
	HomeGoalsScoredAvg   float64 `json:"home_goals_scored_avg"`
	HomeGoalsConcededAvg float64 `json:"home_goals_conceded_avg"`
	HomeWinRate          float64 `json:"home_win_rate"`
	AwayGoalsScoredAvg   float64 `json:"away_goals_scored_avg"`
	AwayGoalsConcededAvg float64 `json:"away_goals_conceded_avg"`
	AwayWinRate          float64 `json:"away_win_rate"`
	RecentForm           float64 `json:"recent_form"`
	HistoricalQuality    float64 `json:"historical_quality"`
}

// HandleQuality handles GET /quality?limit=N.
func (s *Server) HandleQuality(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_quality"
	n := s.topN
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			s.fail(w, r, NewKind(op, ErrBadRequest))
			return
		}
		if v > s.maxLimit {
			s.fail(w, r, NewKind(op, ErrLimitExceeded))
			return
		}
		n = v
	}
	writeJSON(w, http.StatusOK, s.deps.TopTeams(n))
}

// HandleTeamQuality handles GET /quality/{team}.
func (s *Server) HandleTeamQuality(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team_quality"
	team := strings.TrimSpace(chi.URLParam(r, "team"))
	if team == "" {
		s.fail(w, r, NewKind(op, ErrBadRequest))
		return
	}
	p, err := s.deps.Profile(team)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, newProfileResponse(p))
}

// HandleSnapshot handles GET /snapshot/{team}?as_of=YYYY-MM-DD&lookback=N.
// Without as_of the snapshot is taken at the corpus horizon.
func (s *Server) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_snapshot"
	team := strings.TrimSpace(chi.URLParam(r, "team"))
	if team == "" {
		s.fail(w, r, NewKind(op, ErrBadRequest))
		return
	}

	q := r.URL.Query()
	var asOf time.Time
	if raw := q.Get("as_of"); raw != "" {
		t, err := time.Parse(asOfLayout, raw)
		if err != nil {
			s.fail(w, r, WrapKind(op, ErrBadRequest, err))
			return
		}
		asOf = t
	}
	lookback := 0
	if raw := q.Get("lookback"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			s.fail(w, r, NewKind(op, ErrBadRequest))
			return
		}
		lookback = v
	}

	snap, err := s.deps.Snapshot(r.Context(), team, asOf, lookback)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	resp := snapshotResponse{
		Team:                 team,
		HomeGoalsScoredAvg:   snap.HomeGoalsScoredAvg,
		HomeGoalsConcededAvg: snap.HomeGoalsConcededAvg,
		HomeWinRate:          snap.HomeWinRate,
		AwayGoalsScoredAvg:   snap.AwayGoalsScoredAvg,
		AwayGoalsConcededAvg: snap.AwayGoalsConcededAvg,
		AwayWinRate:          snap.AwayWinRate,
		RecentForm:           snap.RecentForm,
		HistoricalQuality:    snap.HistoricalQuality,
	}
	if !asOf.IsZero() {
		resp.AsOf = asOf.Format(asOfLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}
