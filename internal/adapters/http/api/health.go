package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/quiniela/pkg/metrics"
)

type healthResponse struct {
	Status  string `json:"status"`
	Trained bool   `json:"trained"`
}

// HandleHealth handles GET /healthz. The process is healthy once it serves;
// trained tells callers whether /predict will answer.
func (s *Server) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Trained: s.deps.Status().Trained})
}

// MetricsHandler serves the custom Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}

// HandleStatus handles GET /status.
func (s *Server) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Status())
}
