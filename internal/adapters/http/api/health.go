// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chimera-hq/guardian/pkg/metrics"
)

// HealthHandler handles health and metrics requests.
type HealthHandler struct {
	svc Service
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(svc Service) *HealthHandler {
	return &HealthHandler{svc: svc}
}

type healthResponse struct {
	Status string `json:"status"`
}

// HandleHealth handles GET /healthz requests. Health means the graph
// backend answers; a degraded backend returns 503 so orchestration can
// route around the instance.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	const op = "api.healthz"
	if err := h.svc.Healthy(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "unhealthy", WrapKind(op, ErrUnhealthy, err))
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// HandleMetrics serves Prometheus metrics off the engine's registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
