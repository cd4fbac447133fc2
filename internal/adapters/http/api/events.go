package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/momentum/internal/domain/model"
	"github.com/okian/momentum/internal/domain/momentum"
)

// EventDependencies defines the interface for event processing dependencies.
type EventDependencies interface {
	// Submit deduplicates and queues an event. duplicate reports a replay.
	Submit(ctx context.Context, e model.MatchEvent) (duplicate bool, err error)

	// ProcessEvent applies an event before returning.
	ProcessEvent(ctx context.Context, e model.MatchEvent) (momentum.ProcessResult, bool, error)
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest mirrors the OpenAPI schema for match events.
type eventRequest struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Side    string `json:"side"`
	Minute  *int   `json:"minute"`
}

func (e eventRequest) validate(requireID bool) error {
	switch {
	case requireID && strings.TrimSpace(e.EventID) == "":
		return errors.New("missing event_id")
	case strings.TrimSpace(e.Type) == "":
		return errors.New("missing type")
	case strings.TrimSpace(e.Side) == "":
		return errors.New("missing side")
	case e.Minute == nil:
		return errors.New("missing minute")
	}
	return nil
}

func (e eventRequest) toModel(matchID string) model.MatchEvent {
	return model.MatchEvent{
		EventID:    e.EventID,
		MatchID:    matchID,
		Type:       e.Type,
		Side:       e.Side,
		Minute:     *e.Minute,
		ReceivedAt: time.Now(),
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

func (h *EventsHandler) decode(r *http.Request, op string, requireID bool) (eventRequest, error) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, WrapKind(op, ErrBadRequest, err)
	}
	if err := req.validate(requireID); err != nil {
		return req, WrapKind(op, ErrBadRequest, err)
	}
	return req, nil
}

// HandlePostEvent handles POST /matches/{id}/events requests.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	req, err := h.decode(r, op, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	duplicate, err := h.deps.Submit(r.Context(), req.toModel(r.PathValue("id")))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}

// HandleProcessEvent handles POST /matches/{id}/events:sync requests.
func (h *EventsHandler) HandleProcessEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.process_event"
	req, err := h.decode(r, op, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	res, duplicate, err := h.deps.ProcessEvent(r.Context(), req.toModel(r.PathValue("id")))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusOK, res)
}
