// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// ProfilesHandler serves the mission profile catalog.
type ProfilesHandler struct {
	svc Service
}

// NewProfilesHandler creates a new profiles handler.
func NewProfilesHandler(svc Service) *ProfilesHandler {
	return &ProfilesHandler{svc: svc}
}

// HandleProfiles handles GET /api/profiles requests.
func (h *ProfilesHandler) HandleProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Profiles())
}

// LinchpinsHandler serves organization-wide sole-holder analysis.
type LinchpinsHandler struct {
	svc Service
}

// NewLinchpinsHandler creates a new linchpins handler.
func NewLinchpinsHandler(svc Service) *LinchpinsHandler {
	return &LinchpinsHandler{svc: svc}
}

// HandleLinchpins handles GET /api/linchpins requests.
func (h *LinchpinsHandler) HandleLinchpins(w http.ResponseWriter, r *http.Request) {
	const op = "api.linchpins"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	linchpins, err := h.svc.Linchpins(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, linchpins)
}
