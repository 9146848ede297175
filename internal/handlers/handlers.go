package handlers

import (
	"context"
	"time"

	"media-slideshow/internal/database"
	"media-slideshow/internal/pipeline"
)

// StatusProvider reports what is on screen.
type StatusProvider interface {
	Status() pipeline.Status
}

// HistoryStore is the play history read by /api/history.
type HistoryStore interface {
	RecentPlays(ctx context.Context, limit int) ([]database.Play, error)
	Ping(ctx context.Context) error
}

// Handlers serves the status API.
type Handlers struct {
	status  StatusProvider
	history HistoryStore
	session string
	started time.Time
}

// New creates Handlers. history may be nil when play history is disabled.
func New(status StatusProvider, history HistoryStore, session string) *Handlers {
	return &Handlers{
		status:  status,
		history: history,
		session: session,
		started: time.Now(),
	}
}

func (h *Handlers) uptime() string {
	return time.Since(h.started).Round(time.Second).String()
}
