// Package scheduler runs a batch of build jobs to completion (C6, §4.6).
//
// Concurrency is bounded per image: the first job to need image X builds
// and populates the dependency-install cache; concurrent jobs for the
// same image wait on that build rather than racing it. Different images
// proceed in parallel, up to the configured worker count. This mirrors
// cruxd's internal/server accept-and-dispatch shape (one goroutine per
// unit of work, a shared done channel for shutdown) but replaces its
// unbounded per-connection goroutine fan-out with golang.org/x/sync's
// errgroup/semaphore pair, since here the unit of work is CPU/IO-heavy
// container builds rather than short-lived command exchanges and needs
// an actual concurrency ceiling.
//
// Per-image coalescing uses golang.org/x/sync/singleflight: concurrent
// jobs sharing an image key collapse into one imagecache.Prepare call,
// with every waiter receiving the same resulting tag.
package scheduler
