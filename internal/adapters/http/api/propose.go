// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chimera-hq/guardian/internal/app"
	"github.com/chimera-hq/guardian/internal/domain/model"
	"github.com/chimera-hq/guardian/internal/domain/profile"
)

// ProposeHandler handles team-formation requests.
type ProposeHandler struct {
	svc Service
}

// NewProposeHandler creates a new propose handler.
func NewProposeHandler(svc Service) *ProposeHandler {
	return &ProposeHandler{svc: svc}
}

// HandlePropose handles POST /api/propose requests.
func (h *ProposeHandler) HandlePropose(w http.ResponseWriter, r *http.Request) {
	const op = "api.propose"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req proposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result, err := h.svc.Propose(r.Context(), app.ProposeRequest{
		Requirements: model.Requirements(req.Requirements),
		ProfileTag:   req.Profile,
		K:            req.TeamSize,
		Preferences:  req.Preferences,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrValidation):
			writeError(w, http.StatusBadRequest, "bad_request", err)
		case errors.Is(err, profile.ErrUnknownProfile):
			writeError(w, http.StatusBadRequest, "unknown_profile", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}

	writeJSON(w, http.StatusOK, proposeResponse{
		Dossiers: result.Dossiers,
		PoolSize: result.PoolSize,
		TimedOut: result.TimedOut,
	})
}
