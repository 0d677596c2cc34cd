// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chimera-hq/guardian/internal/adapters/mq/queue"
	"github.com/chimera-hq/guardian/internal/app"
)

// RecomputeHandler handles competency recomputation requests.
type RecomputeHandler struct {
	svc Service
}

// NewRecomputeHandler creates a new recompute handler.
func NewRecomputeHandler(svc Service) *RecomputeHandler {
	return &RecomputeHandler{svc: svc}
}

// HandleRecompute handles POST /api/recompute requests. Accepted pairs run
// asynchronously; the response only acknowledges queueing.
func (h *RecomputeHandler) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.recompute"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req recomputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	tasks := make([]queue.Task, 0, len(req.Pairs))
	for _, p := range req.Pairs {
		tasks = append(tasks, queue.Task{PersonID: p.PersonID, Skill: p.Skill})
	}

	result, err := h.svc.Recompute(r.Context(), tasks)
	if err != nil {
		if errors.Is(err, app.ErrValidation) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	if result.Accepted == 0 && result.Rejected > 0 {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}

	writeJSON(w, http.StatusAccepted, recomputeResponse{
		Status:   "accepted",
		Accepted: result.Accepted,
		Rejected: result.Rejected,
	})
}
