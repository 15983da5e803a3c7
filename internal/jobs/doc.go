package jobs

// Package jobs implements the background job-execution substrate: each
// download runs as an independent cancellable task addressed by its job
// key, with configurable submission policy, bounded linear-backoff retry,
// and a write-through sqlite store so finished and in-flight jobs remain
// observable across process restarts.
