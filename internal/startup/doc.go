// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is read from a JSON file, or YAML when the file name ends
// in .yaml or .yml, by [LoadConfig]. The path comes from the -config flag,
// then SLIDESHOW_CONFIG, then config.json in the working directory.
//
// Required keys:
//
//   - local_media_directory: root of the regular rotation
//   - announcement_directory: root of the announcement rotation
//   - slide_duration: seconds a still image is held
//   - announcement_duration: seconds an announcement image is held
//
// Optional keys: log_directory, database_directory, fade_duration,
// video_fade_in, video_fade_out, queue_capacity, min_image_width,
// min_image_height, idle_rescan_interval, status_port, terminal_input and
// window_title. A missing required key or an invalid value is reported as
// [ErrFatalConfig].
//
// The following environment variables override the file:
//
//   - MEDIA_DIR, ANNOUNCEMENT_DIR: scan roots
//   - LOG_DIR: directory for slideshow.log
//   - DATABASE_DIR: directory for the play history database
//   - STATUS_PORT: port of the status server
//   - TERMINAL_INPUT: read quit keys from the controlling terminal
//
// LOG_LEVEL, MEMORY_LIMIT, MEMORY_RATIO and GOMEMLIMIT are read by the
// logging and memory packages.
//
// # Directory Setup
//
// Scan roots are checked but never created: a missing root is scanned as
// empty and logged each cycle. Log and database directories are created if
// needed and disabled with a warning when they are not writable.
//
// # Lifecycle Logging
//
// Section logs keep startup output consistent: [LogMemoryConfig],
// [LogDecoderInit], [LogDatabaseInit], [LogDisplayInit], [LogHTTPRoutes],
// [LogSlideshowStarted] and the shutdown helpers.
package startup
