package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/momentum/internal/domain/model"
	"github.com/okian/momentum/internal/domain/momentum"
)

// MatchDependencies defines the match lifecycle operations.
type MatchDependencies interface {
	CreateMatch(ctx context.Context, id string, cfg momentum.InitConfig) (string, momentum.InitResult, error)
	DeleteMatch(ctx context.Context, id string) error
	ListMatches(ctx context.Context) ([]model.MatchSummary, error)
}

// MatchesHandler handles match lifecycle requests.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// createMatchRequest is an InitConfig with an optional caller-chosen id.
// Omitted factors keep their defaults.
type createMatchRequest struct {
	MatchID string `json:"match_id"`
	momentum.InitConfig
}

type createMatchResponse struct {
	MatchID string `json:"match_id"`
	momentum.InitResult
}

type listMatchesResponse struct {
	Matches []model.MatchSummary `json:"matches"`
}

// HandleCreate handles POST /matches requests.
func (h *MatchesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_match"
	req := createMatchRequest{InitConfig: momentum.DefaultInitConfig()}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
	}
	id, res, err := h.deps.CreateMatch(r.Context(), req.MatchID, req.InitConfig)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, createMatchResponse{MatchID: id, InitResult: res})
}

// HandleDelete handles DELETE /matches/{id} requests.
func (h *MatchesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_match"
	if err := h.deps.DeleteMatch(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleList handles GET /matches requests.
func (h *MatchesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_matches"
	list, err := h.deps.ListMatches(r.Context())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	if list == nil {
		list = []model.MatchSummary{}
	}
	writeJSON(w, http.StatusOK, listMatchesResponse{Matches: list})
}
