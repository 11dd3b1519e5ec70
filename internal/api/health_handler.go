package api

import (
	"net/http"

	"github.com/phrazzld/lazyreader/internal/api/shared"
	"github.com/phrazzld/lazyreader/internal/task"
)

// StatsSource reports job counters
type StatsSource interface {
	Snapshot() task.JobStatsSnapshot
}

// WorkerGauge reports worker pool occupancy
type WorkerGauge interface {
	Running() int
	Waiting() int
}

// WorkerStats is the worker pool section of the health response
type WorkerStats struct {
	Running int `json:"running"`
	Waiting int `json:"waiting"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string                 `json:"status"`
	Jobs    *task.JobStatsSnapshot `json:"jobs,omitempty"`
	Workers *WorkerStats           `json:"workers,omitempty"`
}

// HealthHandler reports liveness together with optional job and worker numbers
type HealthHandler struct {
	stats   StatsSource
	workers WorkerGauge
}

// NewHealthHandler creates a HealthHandler. Either source may be nil.
func NewHealthHandler(stats StatsSource, workers WorkerGauge) *HealthHandler {
	return &HealthHandler{stats: stats, workers: workers}
}

// Health handles GET /health requests
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if h.stats != nil {
		snapshot := h.stats.Snapshot()
		resp.Jobs = &snapshot
	}
	if h.workers != nil {
		resp.Workers = &WorkerStats{
			Running: h.workers.Running(),
			Waiting: h.workers.Waiting(),
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
