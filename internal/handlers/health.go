package handlers

import (
	"context"
	"net/http"
	"time"
)

// Probe checks one dependency.
type Probe func(ctx context.Context) error

// Health reports readiness of the service's dependencies.
type Health struct {
	probes map[string]Probe
}

// NewHealth creates the health handler over named dependency probes.
func NewHealth(probes map[string]Probe) *Health {
	return &Health{probes: probes}
}

// ServeHTTP runs every probe with a short deadline. Any failure flips
// the response to 503 with per-dependency statuses.
func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	overall := "ok"
	results := make(map[string]string, len(h.probes))
	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			overall = "degraded"
			continue
		}
		results[name] = "ok"
	}

	respondJSON(w, status, map[string]any{
		"status": overall,
		"checks": results,
	})
}
