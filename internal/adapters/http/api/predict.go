package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/quiniela/internal/domain/types"
)

const maxBodyBytes = 1 << 16

// predictRequest mirrors the OpenAPI schema for POST /predict.
type predictRequest struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
}

func (p predictRequest) validate() error {
	switch {
	case strings.TrimSpace(p.HomeTeam) == "":
		return errors.New("missing home_team")
	case strings.TrimSpace(p.AwayTeam) == "":
		return errors.New("missing away_team")
	case strings.EqualFold(strings.TrimSpace(p.HomeTeam), strings.TrimSpace(p.AwayTeam)):
		return errors.New("home_team and away_team must differ")
	}
	return nil
}

// HandlePredict handles POST /predict.
func (s *Server) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_predict"
	var req predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		s.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}

	pred, err := s.deps.Predict(r.Context(), strings.TrimSpace(req.HomeTeam), strings.TrimSpace(req.AwayTeam))
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

// HandleTrain handles POST /train by queueing a retrain on the loaded corpus.
func (s *Server) HandleTrain(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_train"
	st, err := s.deps.EnqueueTraining(r.Context())
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/train/"+st.ID)
	writeJSON(w, http.StatusAccepted, types.TrainAccepted{JobID: st.ID, Status: st.State})
}

// HandleJob handles GET /train/{id}.
func (s *Server) HandleJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		s.fail(w, r, NewKind(op, ErrBadRequest))
		return
	}
	st, err := s.deps.Job(id)
	if err != nil {
		s.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, st)
}
