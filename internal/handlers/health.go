package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"media-slideshow/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Session string `json:"session"`

	State      string `json:"state"`
	Presented  int64  `json:"presented"`
	QueueDepth int    `json:"queueDepth"`

	HistoryEnabled bool   `json:"historyEnabled"`
	HistoryError   string `json:"historyError,omitempty"`

	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
}

// ready is true once anything has reached the screen.
func ready(presented int64, state string) bool {
	return presented > 0 || state == "playing"
}

// HealthCheck returns the health status of the slideshow
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	s := h.status.Status()

	response := HealthResponse{
		Ready:          ready(s.Presented, s.State),
		Version:        startup.Version,
		Uptime:         h.uptime(),
		Session:        h.session,
		State:          s.State,
		Presented:      s.Presented,
		QueueDepth:     s.QueueDepth,
		HistoryEnabled: h.history != nil,
		GoVersion:      runtime.Version(),
		NumGoroutine:   runtime.NumGoroutine(),
	}

	if response.Ready {
		response.Status = statusHealthy
	} else {
		response.Status = statusStarting
	}

	if h.history != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.history.Ping(ctx); err != nil {
			response.HistoryError = err.Error()
			response.Status = statusDegraded
		}
	}

	// The display keeps running without history, so degraded is still 200.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 once the slideshow has shown something
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	s := h.status.Status()
	if ready(s.Presented, s.State) {
		writeJSONStatus(w, http.StatusOK, "ready")
		return
	}
	writeJSONStatus(w, http.StatusServiceUnavailable, "not_ready")
}
