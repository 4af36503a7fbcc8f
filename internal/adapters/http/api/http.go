// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/quiniela/internal/domain/model"
	"github.com/okian/quiniela/internal/domain/types"
	"github.com/okian/quiniela/pkg/logger"
)

const (
	defaultTopN     = 10
	defaultMaxLimit = 100
	corsMaxAge      = 300
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Status() types.Status
	TopTeams(n int) []types.RankedTeam
	Profile(team string) (model.TeamQualityProfile, error)
	Snapshot(ctx context.Context, team string, asOf time.Time, lookback int) (model.TeamFormSnapshot, error)
	Predict(ctx context.Context, home, away string) (types.Prediction, error)

	// EnqueueTraining queues a retrain. It fails when the queue is full.
	EnqueueTraining(ctx context.Context) (types.JobStatus, error)
	Job(id string) (types.JobStatus, error)
}

// Server wires HTTP routes for the predictor API.
type Server struct {
	deps        Dependencies
	logger      logger.Logger
	topN        int
	maxLimit    int
	corsOrigins []string
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:        deps,
		topN:        defaultTopN,
		maxLimit:    defaultMaxLimit,
		corsOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	if s.topN > s.maxLimit {
		s.topN = s.maxLimit
	}
	return s
}

// Router builds a chi router with every route and the shared middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         corsMaxAge,
	}))
	s.Register(r)
	return r
}

// Register attaches all API routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.HandleHealth)
	r.Handle("/metrics", MetricsHandler())

	r.Group(func(r chi.Router) {
		r.Use(MetricsMiddleware)
		r.Get("/status", s.HandleStatus)
		r.Get("/quality", s.HandleQuality)
		r.Get("/quality/{team}", s.HandleTeamQuality)
		r.Get("/snapshot/{team}", s.HandleSnapshot)
		r.Post("/predict", s.HandlePredict)
		r.Post("/train", s.HandleTrain)
		r.Get("/train/{id}", s.HandleJob)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail classifies err, logs server side failures and writes the response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}
