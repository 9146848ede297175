/*
Package workers sizes the thread pools the slideshow hands to native
libraries.

libvips runs its own worker threads inside each operation. Sizing that pool
from runtime.NumCPU() over-subscribes a container that has a CPU limit, so
the helpers here derive the count from GOMAXPROCS, which Go sets from the
cgroup quota.

	// One libvips thread per available CPU, at most four.
	n := workers.ForCPU(workers.DefaultVipsWorkers)

The VIPS_CONCURRENCY environment variable overrides the computed value,
still capped by the limit argument:

	env:
	- name: VIPS_CONCURRENCY
	  value: "2"

All functions are safe for concurrent use.
*/
package workers
