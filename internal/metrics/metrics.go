package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scanner metrics
var (
	ScanRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_slideshow_scan_runs_total",
			Help: "Total number of directory scans",
		},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_slideshow_scan_duration_seconds",
			Help:    "Duration of a full two-root directory scan in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	ScanFilesFound = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_slideshow_scan_files_found",
			Help: "Files listed by the most recent scan, per root",
		},
		[]string{"root"}, // "announcement", "media"
	)

	ScanErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_slideshow_scan_errors_total",
			Help: "Total number of unreadable roots or subdirectories",
		},
		[]string{"root"},
	)
)

// Decoder metrics
var (
	DecodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_slideshow_decode_total",
			Help: "Total number of decode attempts",
		},
		[]string{"kind", "status"}, // status: success, too_small, unsupported, error
	)

	DecodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_slideshow_decode_duration_seconds",
			Help:    "Time spent preparing a media item in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	DecodeFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_slideshow_decode_fallback_total",
			Help: "Total number of images decoded through the fallback path",
		},
		[]string{"backend", "status"}, // backend: vips, ffmpeg
	)
)

// Queue metrics
var (
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_slideshow_queue_depth",
			Help: "Number of prepared items waiting in the media queue",
		},
	)

	QueueCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_slideshow_queue_capacity",
			Help: "Configured capacity of the media queue",
		},
	)

	QueueFullWaitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_slideshow_queue_full_waits_total",
			Help: "Total number of times the producer waited on a full queue",
		},
	)

	QueueFullWaitSeconds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_slideshow_queue_full_wait_seconds_total",
			Help: "Total time the producer spent waiting on a full queue",
		},
	)
)

// Presenter metrics
var (
	ItemsPresentedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_slideshow_items_presented_total",
			Help: "Total number of items presented",
		},
		[]string{"kind", "announcement", "outcome"}, // outcome: completed, aborted, failed
	)

	FramesRenderedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_slideshow_frames_rendered_total",
			Help: "Total number of frames pushed to the display",
		},
		[]string{"kind"},
	)

	PresenterIdleSeconds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_slideshow_presenter_idle_seconds_total",
			Help: "Total time the presenter waited on an empty queue",
		},
	)

	NowPlayingAnnouncement = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_slideshow_now_playing_announcement",
			Help: "Whether an announcement is currently on screen (1 = yes)",
		},
	)
)

// Play history metrics
var (
	PlaysRecorded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_slideshow_plays_recorded",
			Help: "Plays stored in the history database",
		},
		[]string{"kind"}, // image, video, announcement, aborted
	)

	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_slideshow_db_query_total",
			Help: "Total number of history database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_slideshow_db_query_duration_seconds",
			Help:    "History database query duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"operation"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_slideshow_memory_usage_ratio",
			Help: "Heap allocation as a ratio of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_slideshow_memory_paused",
			Help: "Whether decoding is paused due to memory pressure (1 = paused)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_slideshow_memory_gc_pauses_total",
			Help: "Total number of forced GC runs triggered by memory pressure",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_slideshow_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_slideshow_filesystem_operation_errors_total",
			Help: "Total number of failed filesystem operations",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_slideshow_filesystem_retry_attempts_total",
			Help: "Total number of retries after stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_slideshow_filesystem_retry_success_total",
			Help: "Total number of operations that succeeded after a retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_slideshow_filesystem_retry_failures_total",
			Help: "Total number of operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_slideshow_filesystem_stale_errors_total",
			Help: "Total number of stale file handle errors seen",
		},
		[]string{"operation", "volume"},
	)
)

// Status server metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_slideshow_http_requests_total",
			Help: "Total number of status server requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_slideshow_http_request_duration_seconds",
			Help:    "Status server request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_slideshow_http_requests_in_flight",
			Help: "Number of status server requests being served",
		},
	)
)
