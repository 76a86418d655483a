// Package httpapi exposes the risk scoring API plus health, readiness,
// and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marrowdrift/road-risk-service/internal/domain"
	"github.com/marrowdrift/road-risk-service/internal/serving"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Scorer is the serving surface the API depends on.
type Scorer interface {
	ScorePoint(ctx context.Context, loc domain.Location, at time.Time) domain.RiskPrediction
	ScoreRoute(ctx context.Context, points []domain.Location, at time.Time) ([]domain.RiskPrediction, domain.RouteSummary)
}

// Server exposes the scoring and operational HTTP endpoints.
type Server struct {
	httpServer *http.Server
	scorer     Scorer
	logger     *slog.Logger
}

// NewServer creates the HTTP server and wires all routes.
func NewServer(addr string, scorer Scorer, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		scorer: scorer,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/risk/point", s.handlePoint)
	mux.HandleFunc("POST /api/risk/route", s.handleRoute)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type pointRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type routeRequest struct {
	Points []pointRequest `json:"points"`
}

type routeResponse struct {
	Predictions []domain.RiskPrediction `json:"predictions"`
	Summary     domain.RouteSummary     `json:"summary"`
}

func (s *Server) handlePoint(w http.ResponseWriter, r *http.Request) {
	var req pointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	loc, ok := validateLocation(req)
	if !ok {
		writeError(w, http.StatusBadRequest, "lat must be in [-90,90] and lon in [-180,180]")
		return
	}

	pred := s.scorer.ScorePoint(r.Context(), loc, time.Now().UTC())
	writeJSON(w, http.StatusOK, pred)
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Points) == 0 {
		writeError(w, http.StatusBadRequest, "route must contain at least one point")
		return
	}
	if len(req.Points) > serving.MaxRoutePoints {
		writeError(w, http.StatusBadRequest, "route exceeds maximum point count")
		return
	}

	points := make([]domain.Location, len(req.Points))
	for i, p := range req.Points {
		loc, ok := validateLocation(p)
		if !ok {
			writeError(w, http.StatusBadRequest, "lat must be in [-90,90] and lon in [-180,180]")
			return
		}
		points[i] = loc
	}

	preds, summary := s.scorer.ScoreRoute(r.Context(), points, time.Now().UTC())
	writeJSON(w, http.StatusOK, routeResponse{Predictions: preds, Summary: summary})
}

func validateLocation(p pointRequest) (domain.Location, bool) {
	if p.Lat == nil || p.Lon == nil {
		return domain.Location{}, false
	}
	if *p.Lat < -90 || *p.Lat > 90 || *p.Lon < -180 || *p.Lon > 180 {
		return domain.Location{}, false
	}
	return domain.Location{Lat: *p.Lat, Lon: *p.Lon}, true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
