// Package logging provides leveled, line-per-event logging for the slideshow.
//
// Every line is written through the standard library logger, so it carries a
// timestamp, followed by a severity tag and the message:
//
//	2024/05/01 09:30:12 [WARN] Skipping /media/broken.jpg: decode failed
//
// Levels, lowest to highest:
//   - DEBUG: per-frame and per-file diagnostics
//   - INFO: scan results, queue transitions, item start/finish
//   - WARN: skipped files and recoverable problems
//   - ERROR: failures that abandon an item
//   - FATAL: configuration or display errors that abort startup
//
// The level comes from LOG_LEVEL (or DEBUG=true). SetDirectory additionally
// tees output into a file; if the directory cannot be used, logging keeps
// going to stderr.
package logging
