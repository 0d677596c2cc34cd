// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/chimera-hq/guardian/internal/adapters/mq/queue"
	"github.com/chimera-hq/guardian/internal/app"
	"github.com/chimera-hq/guardian/internal/domain/model"
	"github.com/chimera-hq/guardian/internal/domain/profile"
	"github.com/chimera-hq/guardian/internal/domain/risk"
)

// Service bundles the application operations the HTTP layer serves. Using
// an interface keeps the handler layer loosely coupled to the app package.
type Service interface {
	Propose(ctx context.Context, req app.ProposeRequest) (app.ProposeResult, error)
	Recompute(ctx context.Context, tasks []queue.Task) (app.RecomputeResult, error)
	Profiles() []profile.Profile
	Linchpins(ctx context.Context) ([]risk.Linchpin, error)
	GetStats() app.Stats
	Healthy(ctx context.Context) error
}

// Server wires HTTP routes for the engine API.
type Server struct {
	proposeHandler   *ProposeHandler
	recomputeHandler *RecomputeHandler
	profilesHandler  *ProfilesHandler
	linchpinsHandler *LinchpinsHandler
	statsHandler     *StatsHandler
	healthHandler    *HealthHandler
}

// NewServer creates an API server with all handlers.
func NewServer(svc Service) *Server {
	return &Server{
		proposeHandler:   NewProposeHandler(svc),
		recomputeHandler: NewRecomputeHandler(svc),
		profilesHandler:  NewProfilesHandler(svc),
		linchpinsHandler: NewLinchpinsHandler(svc),
		statsHandler:     NewStatsHandler(svc),
		healthHandler:    NewHealthHandler(svc),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/propose", MetricsMiddleware(s.proposeHandler.HandlePropose, "propose"))
	mux.HandleFunc("/api/recompute", MetricsMiddleware(s.recomputeHandler.HandleRecompute, "recompute"))
	mux.HandleFunc("/api/profiles", MetricsMiddleware(s.profilesHandler.HandleProfiles, "profiles"))
	mux.HandleFunc("/api/linchpins", MetricsMiddleware(s.linchpinsHandler.HandleLinchpins, "linchpins"))
}

// proposeRequest mirrors the JSON schema for POST /api/propose.
type proposeRequest struct {
	Requirements map[string]float64 `json:"requirements"`
	Profile      string             `json:"profile"`
	TeamSize     int                `json:"team_size"`
	Preferences  model.Preferences  `json:"preferences"`
}

func (p proposeRequest) validate() error {
	switch {
	case len(p.Requirements) == 0:
		return errors.New("missing requirements")
	case strings.TrimSpace(p.Profile) == "":
		return errors.New("missing profile")
	case p.TeamSize < 1:
		return errors.New("team_size must be at least 1")
	}
	for skill, level := range p.Requirements {
		if strings.TrimSpace(skill) == "" {
			return errors.New("empty skill name in requirements")
		}
		if level <= 0 || level > 1 {
			return errors.New("requirement levels must be in (0,1]")
		}
	}
	return nil
}

// proposeResponse carries the ranked dossiers for one query.
type proposeResponse struct {
	Dossiers []model.Dossier `json:"dossiers"`
	PoolSize int             `json:"pool_size"`
	TimedOut bool            `json:"timed_out"`
}

// recomputeRequest mirrors the JSON schema for POST /api/recompute.
type recomputeRequest struct {
	Pairs []recomputePair `json:"pairs"`
}

type recomputePair struct {
	PersonID string `json:"person_id"`
	Skill    string `json:"skill"`
}

func (r recomputeRequest) validate() error {
	if len(r.Pairs) == 0 {
		return errors.New("missing pairs")
	}
	for _, p := range r.Pairs {
		if strings.TrimSpace(p.PersonID) == "" || strings.TrimSpace(p.Skill) == "" {
			return errors.New("each pair needs person_id and skill")
		}
	}
	return nil
}

type recomputeResponse struct {
	Status   string `json:"status"`
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
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
