// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/momentum/internal/domain/model"
	"github.com/okian/momentum/internal/domain/momentum"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	MatchDependencies
	EventDependencies
	AnalysisDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	matchesHandler  *MatchesHandler
	eventsHandler   *EventsHandler
	analysisHandler *AnalysisHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		matchesHandler:  NewMatchesHandler(deps),
		eventsHandler:   NewEventsHandler(deps),
		analysisHandler: NewAnalysisHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /matches", MetricsMiddleware(s.matchesHandler.HandleCreate, "create_match"))
	mux.HandleFunc("GET /matches", MetricsMiddleware(s.matchesHandler.HandleList, "list_matches"))
	mux.HandleFunc("DELETE /matches/{id}", MetricsMiddleware(s.matchesHandler.HandleDelete, "delete_match"))

	mux.HandleFunc("POST /matches/{id}/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("POST /matches/{id}/events:sync", MetricsMiddleware(s.eventsHandler.HandleProcessEvent, "events_sync"))

	mux.HandleFunc("GET /matches/{id}/analysis", MetricsMiddleware(s.analysisHandler.HandleAnalysis, "analysis"))
	mux.HandleFunc("GET /matches/{id}/forecast", MetricsMiddleware(s.analysisHandler.HandleForecast, "forecast"))
	mux.HandleFunc("GET /matches/{id}/triggers", MetricsMiddleware(s.analysisHandler.HandleTriggers, "triggers"))
	mux.HandleFunc("GET /matches/{id}/critical-moments", MetricsMiddleware(s.analysisHandler.HandleCriticalMoments, "critical_moments"))
	mux.HandleFunc("GET /matches/{id}/report", MetricsMiddleware(s.analysisHandler.HandleReport, "report"))
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

// writeFailure maps an upstream error onto its HTTP status.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	writeError(w, status, code, Wrap(op, err))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, momentum.ErrInvalidConfig),
		errors.Is(err, momentum.ErrInvalidSide),
		errors.Is(err, momentum.ErrInvalidMinute),
		errors.Is(err, momentum.ErrInvalidHorizon):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, momentum.ErrMinuteNotRecorded):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, model.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, model.ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
