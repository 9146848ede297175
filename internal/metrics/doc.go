// Package metrics provides Prometheus instrumentation for the slideshow.
//
// All metrics are prefixed with "media_slideshow_" and registered with the
// default registry through promauto, so the status server can expose them
// with promhttp.Handler().
//
// # Metric Categories
//
// ## Scanner
//   - ScanRunsTotal, ScanDuration: one observation per producer cycle
//   - ScanFilesFound: files listed per root ("announcement", "media")
//   - ScanErrorsTotal: unreadable roots or subdirectories
//
// ## Decoder
//   - DecodeTotal: decode attempts by kind and status
//   - DecodeDuration: time spent preparing an item, by kind
//   - DecodeFallbackTotal: images that needed the permissive fallback path
//
// ## Queue
//   - QueueDepth, QueueCapacity: current fill level of the bounded queue
//   - QueueFullWaitsTotal, QueueFullWaitSeconds: producer backpressure
//
// ## Presenter
//   - ItemsPresentedTotal: items shown, by kind and announcement flag
//   - FramesRenderedTotal: frames pushed to the display
//   - PresenterIdleSeconds: time spent waiting on an empty queue
//   - NowPlayingAnnouncement: 1 while an announcement is on screen
//
// ## Play history
//   - PlaysRecorded: totals pulled from the history database by Collector
//
// ## Memory and filesystem
//   - MemoryUsageRatio, MemoryPaused, MemoryGCPauses
//   - Filesystem* retry counters, recorded through the filesystem.Observer
//     implementation returned by NewFilesystemObserver
//
// ## Status server
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//
// Call InitializeMetrics once at startup so every label combination is
// exported from the first scrape.
package metrics
