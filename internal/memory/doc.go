// Package memory keeps the slideshow inside its container memory limit.
//
// Decoded bitmaps are large (a 4K frame is ~33 MB in RGBA) and ffmpeg and
// libvips allocate outside the Go heap, so the heap limit must leave room for
// them. [ConfigureFromEnv] derives GOMEMLIMIT from the container limit:
//
//   - GOMEMLIMIT: standard Go variable, used as-is when set
//   - MEMORY_LIMIT: container limit in bytes (Kubernetes Downward API)
//   - MEMORY_RATIO: share of MEMORY_LIMIT given to the heap (default 0.85)
//
// A [Monitor] samples heap usage and pauses the producer while usage is above
// the critical water mark. The producer calls [Monitor.WaitIfPaused] before
// each decode; the presenter keeps draining the queue, which frees memory.
package memory
