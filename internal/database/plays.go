package database

import (
	"context"
	"fmt"
	"time"

	"media-slideshow/internal/logging"
	"media-slideshow/internal/metrics"
)

// Play is one presented item.
type Play struct {
	ID           int64         `json:"id"`
	Session      string        `json:"session"`
	Path         string        `json:"path"`
	Kind         string        `json:"kind"`
	Announcement bool          `json:"announcement"`
	StartedAt    time.Time     `json:"startedAt"`
	Duration     time.Duration `json:"-"`
	Outcome      string        `json:"outcome"`
}

// RecordPlay appends a play.
func (d *Database) RecordPlay(ctx context.Context, play Play) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	announcement := 0
	if play.Announcement {
		announcement = 1
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO plays (session, path, kind, announcement, started_at, duration_ms, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		play.Session, play.Path, play.Kind, announcement,
		play.StartedAt.UnixMilli(), play.Duration.Milliseconds(), play.Outcome,
	)
	recordQuery("record_play", start, err)
	if err != nil {
		return fmt.Errorf("failed to record play: %w", err)
	}
	return nil
}

// RecentPlays returns up to limit plays, newest first.
func (d *Database) RecentPlays(ctx context.Context, limit int) ([]Play, error) {
	if limit <= 0 {
		limit = 50
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, session, path, kind, announcement, started_at, duration_ms, outcome
		FROM plays
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		recordQuery("recent_plays", start, err)
		return nil, fmt.Errorf("failed to query plays: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Warn("failed to close rows: %v", err)
		}
	}()

	plays := make([]Play, 0, limit)
	for rows.Next() {
		var p Play
		var announcement int
		var startedAt, durationMs int64
		if err := rows.Scan(&p.ID, &p.Session, &p.Path, &p.Kind, &announcement, &startedAt, &durationMs, &p.Outcome); err != nil {
			recordQuery("recent_plays", start, err)
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		p.Announcement = announcement != 0
		p.StartedAt = time.UnixMilli(startedAt)
		p.Duration = time.Duration(durationMs) * time.Millisecond
		plays = append(plays, p)
	}
	err = rows.Err()
	recordQuery("recent_plays", start, err)
	return plays, err
}

// GetStats returns play totals for the metrics collector. Errors are logged
// and reported as zero.
func (d *Database) GetStats() metrics.Stats {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var stats metrics.Stats
	err := d.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(kind = 'image'), 0),
			COALESCE(SUM(kind = 'video'), 0),
			COALESCE(SUM(announcement), 0),
			COALESCE(SUM(outcome = 'aborted'), 0)
		FROM plays`).Scan(
		&stats.TotalPlays, &stats.ImagePlays, &stats.VideoPlays,
		&stats.AnnouncementPlays, &stats.AbortedPlays,
	)
	recordQuery("play_stats", start, err)
	if err != nil {
		logging.Warn("Failed to read play stats: %v", err)
		return metrics.Stats{}
	}
	return stats
}
