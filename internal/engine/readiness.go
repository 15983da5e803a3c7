package engine

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/lrstanley/go-ytdlp"
)

// Readiness is the process-wide engine readiness gate. The flag is
// monotonic: false at process start, true exactly once after the first
// initialization attempt, whether or not that attempt succeeded. A failed
// init is logged and recorded but never blocks usage; downloads then run
// best-effort against whatever engine version is already installed.
type Readiness struct {
	once       sync.Once
	ready      atomic.Bool
	autoUpdate bool

	mu      sync.Mutex
	initErr error
}

// NewReadiness creates the gate. When autoUpdate is true the first Ensure
// also checks upstream for a newer engine build and installs it.
func NewReadiness(autoUpdate bool) *Readiness {
	return &Readiness{autoUpdate: autoUpdate}
}

// Ensure performs the one-time engine initialization. Subsequent calls are
// no-ops. Safe to call from any goroutine.
func (r *Readiness) Ensure(ctx context.Context) {
	r.once.Do(func() {
		if r.autoUpdate {
			if _, err := ytdlp.Install(ctx, nil); err != nil {
				log.Printf("engine install/update failed, continuing with installed version: %v", err)
				r.mu.Lock()
				r.initErr = &InitError{Err: err}
				r.mu.Unlock()
			}
		}
		r.ready.Store(true)
	})
}

// Ready reports whether the one-time initialization has been attempted
func (r *Readiness) Ready() bool {
	return r.ready.Load()
}

// InitErr returns the recorded initialization error, nil if init succeeded
// or has not run yet
func (r *Readiness) InitErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initErr
}
