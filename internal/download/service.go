package download

import (
	"context"
	"errors"

	"github.com/zenload/zenload/internal/engine"
	"github.com/zenload/zenload/internal/format"
	"github.com/zenload/zenload/internal/jobs"
	"github.com/zenload/zenload/internal/model"
	"github.com/zenload/zenload/internal/platform"
)

// ErrMissingFormatID is returned when a submission carries no engine
// format identifier
var ErrMissingFormatID = errors.New("format id is required")

// Service handles fetch and download operations
type Service struct {
	resolver    engine.Resolver
	gate        engine.Gate
	substrate   Substrate
	downloadDir string
	policy      jobs.SubmitPolicy
	retry       jobs.RetryPolicy
}

// NewService creates the orchestration service. policy decides what a
// repeated submission of the same URL does to the in-flight job; retry
// bounds per-job transfer attempts.
func NewService(resolver engine.Resolver, gate engine.Gate, substrate Substrate, downloadDir string, policy jobs.SubmitPolicy, retry jobs.RetryPolicy) *Service {
	return &Service{
		resolver:    resolver,
		gate:        gate,
		substrate:   substrate,
		downloadDir: downloadDir,
		policy:      policy,
		retry:       retry,
	}
}

// SetUpdateCallback sets the callback invoked on every job update
func (s *Service) SetUpdateCallback(callback func(*model.DownloadJob)) {
	s.substrate.SetUpdateCallback(callback)
}

// Fetch resolves a URL into its ranked quality options. A URL the engine
// can reach but that yields no downloadable formats returns a summary
// with an empty option list, not an error.
func (s *Service) Fetch(ctx context.Context, url string) (*model.VideoSummary, error) {
	s.gate.Ensure(ctx)

	info, err := s.resolver.FetchInfo(ctx, url)
	if err != nil {
		return nil, err
	}
	return format.BuildSummary(info), nil
}

// Submit enqueues a download of the chosen option and returns the job
// key. The key is derived from the source URL alone, so submitting the
// same URL again addresses the same job slot.
func (s *Service) Submit(sourceURL string, choice model.MediaOption, title string) (string, error) {
	if choice.FormatID == "" {
		return "", ErrMissingFormatID
	}

	selector, merge, extract := buildSelector(choice)
	key := JobKey(sourceURL)

	_, err := s.substrate.Enqueue(key, jobs.Payload{
		SourceURL:      sourceURL,
		FormatID:       choice.FormatID,
		Title:          title,
		Selector:       selector,
		MergeContainer: merge,
		ExtractAudio:   extract,
		OutputTemplate: platform.OutputTemplate(s.downloadDir, title),
	}, s.policy, s.retry)
	if err != nil {
		return "", err
	}
	return key, nil
}

// Pause requests termination of the job's transfer. The engine may keep a
// recoverable partial file, enabling a future resume via re-Submit of the
// same URL; no resume bookkeeping happens at this layer.
func (s *Service) Pause(jobKey string) error {
	return s.substrate.CancelByKey(jobKey)
}

// Cancel requests termination of the job's transfer
func (s *Service) Cancel(jobKey string) error {
	return s.substrate.CancelByKey(jobKey)
}

// Job returns a snapshot of the job under key
func (s *Service) Job(jobKey string) (*model.DownloadJob, bool) {
	return s.substrate.Snapshot(jobKey)
}

// Jobs returns snapshots of all known jobs, newest first
func (s *Service) Jobs() []*model.DownloadJob {
	return s.substrate.List()
}

// buildSelector maps the chosen option onto an engine transfer shape: an
// audio option is extracted; a video option without its own audio track is
// paired with the best available audio and merged into the preferred video
// container; everything else downloads as-is.
func buildSelector(choice model.MediaOption) (selector, mergeContainer string, extractAudio bool) {
	switch {
	case choice.Kind == model.KindAudio:
		return choice.FormatID, "", true
	case !choice.HasAudioTrack:
		return choice.FormatID + "+bestaudio", format.PreferredVideoContainer, false
	default:
		return choice.FormatID, "", false
	}
}
