package workers

import (
	"os"
	"runtime"
	"strconv"
)

// DefaultVipsWorkers caps the libvips thread pool. The producer decodes one
// file at a time, so more threads mostly add memory pressure.
const DefaultVipsWorkers = 4

// EnvOverride is the environment variable that overrides Count.
const EnvOverride = "VIPS_CONCURRENCY"

// Count returns multiplier workers per available CPU, at least one and at
// most limit (0 means no limit).
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(EnvOverride); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	workers := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}

// ForCPU returns one worker per CPU, capped at limit.
func ForCPU(limit int) int {
	return Count(1.0, limit)
}
