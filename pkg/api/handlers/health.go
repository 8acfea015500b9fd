package handlers

import (
	"net/http"
	"time"

	"github.com/marmos91/ramfs/pkg/vfs"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	registry  *vfs.Registry
	startedAt time.Time
}

// NewHealthHandler creates a health handler backed by the given
// registry. The registry may be nil for basic liveness only.
func NewHealthHandler(registry *vfs.Registry) *HealthHandler {
	return &HealthHandler{
		registry:  registry,
		startedAt: time.Now(),
	}
}

// healthData is the liveness probe payload.
type healthData struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	Filesystems   int     `json:"filesystems"`
	Mounts        int     `json:"mounts"`
}

// Liveness handles GET /health.
//
// Always returns 200 while the process is running.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	data := healthData{
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
	}
	if h.registry != nil {
		data.Filesystems = len(h.registry.ListFilesystems())
		data.Mounts = h.registry.CountMounts()
	}
	writeJSON(w, http.StatusOK, healthyResponse(data))
}

// Readiness handles GET /health/ready.
//
// Ready means at least one filesystem type is registered, so mount
// requests can be served.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil || len(h.registry.ListFilesystems()) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse("no filesystem types registered"))
		return
	}
	writeJSON(w, http.StatusOK, healthyResponse(nil))
}
