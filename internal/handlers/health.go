package handlers

import (
	"context"
	"net/http"
	"time"
)

const probeTimeout = 3 * time.Second

// Pinger is a dependency the health endpoints can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type check struct {
	name     string
	p        Pinger
	critical bool
}

// AddCheck registers a dependency. Critical checks gate readiness as well
// as health.
func (h *APIHandlers) AddCheck(name string, p Pinger, critical bool) {
	h.checks = append(h.checks, check{name: name, p: p, critical: critical})
}

func (h *APIHandlers) runChecks(ctx context.Context, criticalOnly bool) (map[string]interface{}, bool) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	results := make(map[string]interface{})
	healthy := true
	all := append([]check{{name: "snapshot_store", p: h.svc, critical: true}}, h.checks...)
	for _, c := range all {
		if criticalOnly && !c.critical {
			continue
		}
		if err := c.p.Ping(ctx); err != nil {
			healthy = false
			results[c.name] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			continue
		}
		results[c.name] = map[string]interface{}{"status": "healthy"}
	}
	return results, healthy
}

// Health reports every dependency plus a summary of the draft.
func (h *APIHandlers) Health(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.runChecks(r.Context(), false)
	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	st := h.svc.State()
	writeJSON(w, code, map[string]interface{}{
		"status":         status,
		"timestamp":      time.Now().Unix(),
		"checks":         checks,
		"players":        h.svc.PlayerCount(),
		"picks":          len(st.Picks),
		"draft_active":   st.IsActive,
		"inflation_rate": st.CurrentInflationRate,
	})
}

// Liveness never touches dependencies.
func (h *APIHandlers) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

func (h *APIHandlers) Readiness(w http.ResponseWriter, r *http.Request) {
	checks, ok := h.runChecks(r.Context(), true)
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "not_ready",
			"checks":    checks,
			"timestamp": time.Now().Unix(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}
