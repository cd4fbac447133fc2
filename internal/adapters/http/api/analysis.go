package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/momentum/internal/domain/momentum"
)

// defaultForecastHorizon applies when the horizon query is omitted.
const defaultForecastHorizon = 10

// AnalysisDependencies defines the read-side match queries.
type AnalysisDependencies interface {
	Analyze(ctx context.Context, id string, minute *int) (momentum.Analysis, error)
	Forecast(ctx context.Context, id string, horizon int) (momentum.Forecast, error)
	Triggers(ctx context.Context, id string, side momentum.Side) (momentum.TriggerReport, error)
	CriticalMoments(ctx context.Context, id string) (momentum.CriticalMoments, error)
	Report(ctx context.Context, id string) (momentum.Report, error)
}

// AnalysisHandler serves the analysis endpoints.
type AnalysisHandler struct {
	deps AnalysisDependencies
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps AnalysisDependencies) *AnalysisHandler {
	return &AnalysisHandler{deps: deps}
}

// intQuery parses an optional integer query parameter.
func intQuery(r *http.Request, name string) (int, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, name)
	}
	return v, true, nil
}

// HandleAnalysis handles GET /matches/{id}/analysis requests.
func (h *AnalysisHandler) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	const op = "api.analysis"
	v, ok, err := intQuery(r, "minute")
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	var minute *int
	if ok {
		minute = &v
	}
	a, err := h.deps.Analyze(r.Context(), r.PathValue("id"), minute)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleForecast handles GET /matches/{id}/forecast requests.
func (h *AnalysisHandler) HandleForecast(w http.ResponseWriter, r *http.Request) {
	const op = "api.forecast"
	horizon, ok, err := intQuery(r, "horizon")
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	if !ok {
		horizon = defaultForecastHorizon
	}
	f, err := h.deps.Forecast(r.Context(), r.PathValue("id"), horizon)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// HandleTriggers handles GET /matches/{id}/triggers requests.
func (h *AnalysisHandler) HandleTriggers(w http.ResponseWriter, r *http.Request) {
	const op = "api.triggers"
	side := momentum.Both
	if raw := r.URL.Query().Get("side"); raw != "" && !strings.EqualFold(raw, string(momentum.Both)) {
		s, err := momentum.ParseSide(raw)
		if err != nil {
			writeFailure(w, op, err)
			return
		}
		side = s
	}
	rep, err := h.deps.Triggers(r.Context(), r.PathValue("id"), side)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleCriticalMoments handles GET /matches/{id}/critical-moments requests.
func (h *AnalysisHandler) HandleCriticalMoments(w http.ResponseWriter, r *http.Request) {
	const op = "api.critical_moments"
	cm, err := h.deps.CriticalMoments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, cm)
}

// HandleReport handles GET /matches/{id}/report requests.
func (h *AnalysisHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.report"
	rep, err := h.deps.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
