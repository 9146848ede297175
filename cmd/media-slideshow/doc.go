// Package main is the entry point of the media slideshow.
//
// The slideshow shows images and videos from a media directory full screen,
// interleaving the contents of an announcement directory at the head of
// every rotation, with fades between items.
//
// # Application Lifecycle
//
//  1. Memory configuration: GOMEMLIMIT from MEMORY_LIMIT or GOMEMLIMIT
//  2. Configuration loading: JSON or YAML file plus environment overrides
//  3. Component initialization:
//     - Memory monitor: pauses decoding under memory pressure
//     - Decoder: Go image decoders, libvips fallback, FFmpeg for video
//     - Play history: SQLite database and metrics collector (optional)
//     - Display: SDL2 full-screen window
//     - Input: window events, terminal keys and OS signals
//  4. Producer goroutine: scans both roots and fills a bounded queue
//  5. Presenter on the main OS thread: pops, fades, holds and plays
//  6. Status server (optional): health, status, history and metrics
//  7. Shutdown: on the first quit request the root context is cancelled,
//     the display is closed, queued items are released and the process
//     exits without waiting for an in-flight decode
//
// # Exit Codes
//
//   - 0: Esc, q, Ctrl+C in the window or terminal, or window closed
//   - 1: configuration or display failure
//   - 130: SIGINT
//   - 143: SIGTERM
//
// # Build Requirements
//
// CGO is required for SDL2, SQLite and libvips. FFmpeg and ffprobe must be
// on PATH for video playback.
//
//	go build -o media-slideshow ./cmd/media-slideshow
//
// # Related Packages
//
//   - [media-slideshow/internal/pipeline]: producer and presenter loops
//   - [media-slideshow/internal/media]: decoding and video streams
//   - [media-slideshow/internal/scanner]: directory scanning
//   - [media-slideshow/internal/queue]: bounded media queue
//   - [media-slideshow/internal/input]: quit requests and exit codes
//   - [media-slideshow/internal/display]: SDL2 surface
//   - [media-slideshow/internal/startup]: configuration and startup logs
package main
