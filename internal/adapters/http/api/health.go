// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/viva/pkg/metrics"
)

// HealthHandler handles liveness and oracle health requests.
type HealthHandler struct {
	svc Service
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(svc Service) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleMetrics serves the Prometheus registry on GET /metrics.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}

// HandleOracleHealth handles GET /api/oracle/health requests with an
// end-to-end generation probe.
func (h *HealthHandler) HandleOracleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if err := h.svc.OracleHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "oracle_unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
