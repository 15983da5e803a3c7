package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zenload/zenload/internal/engine"
	"github.com/zenload/zenload/internal/model"
)

var (
	// ErrJobNotFound is returned when no job is registered under a key
	ErrJobNotFound = errors.New("job not found")

	// ErrJobFinished is returned when cancelling a job that already
	// reached a terminal state
	ErrJobFinished = errors.New("job already finished")
)

// SubmitPolicy decides what happens when a job is enqueued under a key
// that already has a non-terminal job.
type SubmitPolicy int

const (
	// PolicyReplace supersedes the existing job, abandoning its progress.
	// The default: it lets a user restart a stalled download without an
	// explicit cancel step first.
	PolicyReplace SubmitPolicy = iota

	// PolicyKeep ignores the new submission while the existing job is
	// still non-terminal
	PolicyKeep
)

func (p SubmitPolicy) String() string {
	if p == PolicyKeep {
		return "keep"
	}
	return "replace"
}

// RetryPolicy bounds transfer retries. Backoff is linear with a fixed
// step: the delay before attempt n+1 is Step × n.
type RetryPolicy struct {
	MaxAttempts int
	Step        time.Duration
}

// DefaultRetryPolicy mirrors the scheduler defaults: three attempts with a
// ten second backoff step
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Step: 10 * time.Second}
}

// Payload is everything a runner needs to perform one transfer
type Payload struct {
	SourceURL      string
	FormatID       string
	Title          string
	Selector       string
	MergeContainer string
	ExtractAudio   bool
	OutputTemplate string
}

// Runner executes one transfer attempt for a job. Progress callbacks
// arrive from the engine's execution context; the substrate marshals them
// into the job state.
type Runner interface {
	Run(ctx context.Context, payload Payload, onProgress engine.ProgressFunc) (outputPath string, err error)
}

// jobEntry pairs a job with the handles needed to drive and cancel it.
// Entry identity guards against stale writes: a goroutine whose entry was
// replaced in the map may still mutate its own job object, but it can no
// longer reach the store or the key's current state.
type jobEntry struct {
	job    *model.DownloadJob
	runID  string
	cancel context.CancelFunc
}

// Substrate runs download jobs with bounded parallelism
type Substrate struct {
	mu       sync.RWMutex
	entries  map[string]*jobEntry
	runner   Runner
	store    *Store
	sem      chan struct{}
	onUpdate func(*model.DownloadJob)
}

// NewSubstrate creates a substrate executing at most maxParallel transfers
// at a time. store may be nil to run without persistence.
func NewSubstrate(runner Runner, maxParallel int, store *Store) *Substrate {
	if maxParallel <= 0 {
		maxParallel = 2
	}
	return &Substrate{
		entries: make(map[string]*jobEntry),
		runner:  runner,
		store:   store,
		sem:     make(chan struct{}, maxParallel),
	}
}

// SetUpdateCallback sets the callback invoked with a job snapshot after
// every state or progress change
func (s *Substrate) SetUpdateCallback(callback func(*model.DownloadJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = callback
}

// Enqueue registers a job under key and starts it in the background.
// Returns a snapshot of the job occupying the key afterwards: under
// PolicyKeep that may be a previously submitted, still-active job.
func (s *Substrate) Enqueue(key string, payload Payload, policy SubmitPolicy, retry RetryPolicy) (*model.DownloadJob, error) {
	s.mu.Lock()

	if existing, ok := s.entries[key]; ok && existing.job.State.IsActive() {
		if policy == PolicyKeep {
			snapshot := existing.job.Clone()
			s.mu.Unlock()
			return snapshot, nil
		}
		// REPLACE: abandon the in-flight job; its goroutine observes the
		// cancelled context and exits without touching the new entry
		existing.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	entry := &jobEntry{
		job: &model.DownloadJob{
			JobKey:     key,
			SourceURL:  payload.SourceURL,
			FormatID:   payload.FormatID,
			Title:      payload.Title,
			State:      model.JobStateEnqueued,
			ETASec:     -1,
			EnqueuedAt: time.Now(),
		},
		runID:  uuid.NewString(),
		cancel: cancel,
	}
	s.entries[key] = entry
	s.persistLocked(entry)
	snapshot := entry.job.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
	go s.run(ctx, entry, payload, retry)

	return snapshot, nil
}

// CancelByKey requests best-effort termination of the job under key. The
// job transitions to Cancelled once its goroutine acknowledges, which may
// race a final success or failure report: last writer wins, and a terminal
// job is never reopened.
func (s *Substrate) CancelByKey(key string) error {
	s.mu.Lock()
	entry, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return ErrJobNotFound
	}
	if entry.job.State.IsTerminal() {
		s.mu.Unlock()
		return ErrJobFinished
	}
	entry.cancel()
	s.mu.Unlock()
	return nil
}

// Snapshot returns an independent copy of the job under key
func (s *Substrate) Snapshot(key string) (*model.DownloadJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return entry.job.Clone(), true
}

// List returns snapshots of all known jobs, most recently enqueued first
func (s *Substrate) List() []*model.DownloadJob {
	s.mu.RLock()
	out := make([]*model.DownloadJob, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry.job.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].EnqueuedAt.After(out[j].EnqueuedAt)
	})
	return out
}

// run drives a job to a terminal state, retrying retriable failures per
// the retry policy
func (s *Substrate) run(ctx context.Context, entry *jobEntry, payload Payload, retry RetryPolicy) {
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		s.finish(entry, model.JobStateCancelled, "", ctx.Err())
		return
	}

	if !s.setRunning(entry) {
		return
	}

	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			// Linear backoff: step × number of failures so far
			delay := retry.Step * time.Duration(attempt-1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				s.finish(entry, model.JobStateCancelled, "", ctx.Err())
				return
			}
			log.Printf("retrying job %s, attempt %d/%d", entry.job.JobKey, attempt, retry.MaxAttempts)
		}

		s.setAttempt(entry, attempt)

		outputPath, err := s.runner.Run(ctx, payload, func(percent float64, etaSec int, title string) {
			s.updateProgress(entry, percent, etaSec, title)
		})
		if err == nil {
			s.finish(entry, model.JobStateSucceeded, outputPath, nil)
			return
		}

		if ctx.Err() != nil {
			s.finish(entry, model.JobStateCancelled, "", ctx.Err())
			return
		}

		lastErr = err
		log.Printf("job %s attempt %d failed: %v", entry.job.JobKey, attempt, err)

		if !engine.IsRetriable(err) {
			s.finish(entry, model.JobStateFailed, "", err)
			return
		}
	}

	s.finish(entry, model.JobStateFailed, "", fmt.Errorf("retries exhausted: %w", lastErr))
}

func (s *Substrate) setRunning(entry *jobEntry) bool {
	s.mu.Lock()
	if entry.job.State.IsTerminal() {
		s.mu.Unlock()
		return false
	}
	entry.job.State = model.JobStateRunning
	s.persistLocked(entry)
	snapshot := entry.job.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return true
}

func (s *Substrate) setAttempt(entry *jobEntry, attempt int) {
	s.mu.Lock()
	entry.job.Attempt = attempt
	s.mu.Unlock()
}

// updateProgress clamps the engine-reported percentage to [0,100] and
// updates progress and title as one snapshot, so observers never see a
// progress value paired with a stale title. Clamping is the only
// correction applied: an engine that regresses is reported as-is.
func (s *Substrate) updateProgress(entry *jobEntry, percent float64, etaSec int, title string) {
	clamped := int(percent)
	if clamped < 0 {
		clamped = 0
	}
	if clamped > 100 {
		clamped = 100
	}

	s.mu.Lock()
	if entry.job.State != model.JobStateRunning {
		s.mu.Unlock()
		return
	}
	entry.job.ProgressPercent = clamped
	entry.job.ETASec = etaSec
	if title != "" {
		entry.job.Title = title
	}
	snapshot := entry.job.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// finish moves the job to a terminal state. Terminal states may overwrite
// each other (a cancel racing an already-completing transfer) but a
// terminal job never goes back to a non-terminal state.
func (s *Substrate) finish(entry *jobEntry, state model.JobState, outputPath string, err error) {
	s.mu.Lock()
	entry.job.State = state
	entry.job.FinishedAt = time.Now()
	if state == model.JobStateSucceeded {
		entry.job.ProgressPercent = 100
		entry.job.OutputPath = outputPath
		entry.job.LastError = ""
	} else if err != nil {
		entry.job.LastError = err.Error()
	}
	s.persistLocked(entry)
	snapshot := entry.job.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// persistLocked writes the entry through to the store. Callers hold s.mu.
// Superseded entries are skipped so a stale goroutine cannot clobber the
// key's current row.
func (s *Substrate) persistLocked(entry *jobEntry) {
	if s.store == nil {
		return
	}
	if current, ok := s.entries[entry.job.JobKey]; !ok || current != entry {
		return
	}
	if err := s.store.Upsert(entry.runID, entry.job); err != nil {
		log.Printf("persisting job %s: %v", entry.job.JobKey, err)
	}
}

func (s *Substrate) notify(job *model.DownloadJob) {
	s.mu.RLock()
	callback := s.onUpdate
	s.mu.RUnlock()

	if callback != nil {
		callback(job)
	}
}
