package metrics

import (
	"time"

	"media-slideshow/internal/logging"
)

// StatsProvider interface for collecting play history stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the play history totals exported as gauges
type Stats struct {
	TotalPlays        int
	ImagePlays        int
	VideoPlays        int
	AnnouncementPlays int
	AbortedPlays      int
}

// Collector periodically copies play history totals into metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	PlaysRecorded.WithLabelValues("image").Set(float64(stats.ImagePlays))
	PlaysRecorded.WithLabelValues("video").Set(float64(stats.VideoPlays))
	PlaysRecorded.WithLabelValues("announcement").Set(float64(stats.AnnouncementPlays))
	PlaysRecorded.WithLabelValues("aborted").Set(float64(stats.AbortedPlays))

	logging.Debug("Metrics collected: %d plays (%d announcements, %d aborted)",
		stats.TotalPlays, stats.AnnouncementPlays, stats.AbortedPlays)
}
