package metrics

// Label values shared with the packages that record metrics.
var (
	kinds        = []string{"image", "video"}
	roots        = []string{"announcement", "media"}
	volumes      = []string{"announcement", "media", "unknown"}
	fsOperations = []string{"open", "stat", "readdir"}
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, root := range roots {
		ScanFilesFound.WithLabelValues(root)
		ScanErrorsTotal.WithLabelValues(root)
	}

	for _, kind := range kinds {
		for _, status := range []string{"success", "too_small", "error"} {
			DecodeTotal.WithLabelValues(kind, status)
		}
		DecodeDuration.WithLabelValues(kind)
		FramesRenderedTotal.WithLabelValues(kind)

		for _, announcement := range []string{"true", "false"} {
			for _, outcome := range []string{"completed", "aborted", "failed"} {
				ItemsPresentedTotal.WithLabelValues(kind, announcement, outcome)
			}
		}
	}
	DecodeTotal.WithLabelValues("unsupported", "unsupported")

	for _, backend := range []string{"vips", "ffmpeg"} {
		DecodeFallbackTotal.WithLabelValues(backend, "success")
		DecodeFallbackTotal.WithLabelValues(backend, "error")
	}

	for _, kind := range []string{"image", "video", "announcement", "aborted"} {
		PlaysRecorded.WithLabelValues(kind)
	}
	for _, op := range []string{"record_play", "recent_plays", "play_stats"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, vol := range volumes {
		for _, op := range fsOperations {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
		}
	}
}
