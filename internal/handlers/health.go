package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/status"
)

// Healthz answers liveness probes. With ?deep=1 it also checks the backend and content and
// returns 503 when any of them is degraded.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	summary := status.Summary{State: status.StateOperational, UpdatedAt: h.now().UTC()}
	if r.URL.Query().Get("deep") == "1" && h.deps.Health != nil {
		summary = h.deps.Health.Check(r.Context())
	}
	code := http.StatusOK
	if !summary.Operational() {
		code = http.StatusServiceUnavailable
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(summary)
}
