package handlers

import (
	"net/http"
	"strconv"

	"media-slideshow/internal/database"
	"media-slideshow/internal/logging"
	"media-slideshow/internal/pipeline"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// StatusResponse is the now-playing snapshot
type StatusResponse struct {
	pipeline.Status
	Session string `json:"session"`
	Uptime  string `json:"uptime"`
}

// GetStatus returns what is on screen and the queue depth
func (h *Handlers) GetStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, StatusResponse{
		Status:  h.status.Status(),
		Session: h.session,
		Uptime:  h.uptime(),
	})
}

// PlayResponse is one play history entry
type PlayResponse struct {
	database.Play
	DurationMs int64 `json:"durationMs"`
}

// HistoryResponse lists recent plays, newest first
type HistoryResponse struct {
	Plays []PlayResponse `json:"plays"`
	Count int            `json:"count"`
}

// GetHistory returns recent plays. ?limit= caps the result size.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSONError(w, "play history is disabled", http.StatusNotFound)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	plays, err := h.history.RecentPlays(r.Context(), limit)
	if err != nil {
		logging.Error("Failed to load play history: %v", err)
		writeJSONError(w, "failed to load play history", http.StatusInternalServerError)
		return
	}

	response := HistoryResponse{Plays: make([]PlayResponse, 0, len(plays))}
	for _, p := range plays {
		response.Plays = append(response.Plays, PlayResponse{
			Play:       p,
			DurationMs: p.Duration.Milliseconds(),
		})
	}
	response.Count = len(response.Plays)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}
