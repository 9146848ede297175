// Package handlers provides the read-only HTTP status API of the slideshow.
//
// It includes handlers for:
//   - Health, liveness and readiness probes
//   - Build version
//   - The now-playing snapshot and queue depth
//   - Recent play history, when the history database is enabled
//   - Prometheus metrics
//
// There is no authentication; the server is meant for the local network.
package handlers
