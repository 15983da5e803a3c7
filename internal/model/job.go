package model

import (
	"fmt"
	"strings"
	"time"
)

// DownloadJob represents a single download job addressed by its JobKey.
// The key is derived deterministically from the source URL, so repeated
// submissions of the same URL map onto the same job slot.
type DownloadJob struct {
	JobKey          string    // deterministic key derived from SourceURL
	SourceURL       string    // original media page URL
	FormatID        string    // engine format selector chosen by the user
	Title           string    // video title, may be refined by the engine mid-transfer
	State           JobState  // current lifecycle state
	ProgressPercent int       // 0 to 100, clamped
	ETASec          int       // ETA in seconds, -1 if unknown
	LastError       string    // last error message if any
	OutputPath      string    // path to the downloaded file once known
	Attempt         int       // 1-based transfer attempt counter
	EnqueuedAt      time.Time // when the job was submitted
	FinishedAt      time.Time // when the job reached a terminal state
}

// GetETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (j *DownloadJob) GetETAString() string {
	if j.ETASec <= 0 {
		return "—"
	}

	hours := j.ETASec / 3600
	minutes := (j.ETASec % 3600) / 60
	seconds := j.ETASec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// GetDisplayTitle returns title, filename, or URL in order of preference
func (j *DownloadJob) GetDisplayTitle() string {
	if j.Title != "" && !strings.HasPrefix(j.Title, "http") {
		return j.Title
	}

	if j.OutputPath != "" {
		parts := strings.FieldsFunc(j.OutputPath, func(r rune) bool {
			return r == '/' || r == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return j.SourceURL
}

// Clone returns an independent copy of the job, used to hand consistent
// snapshots to observers while the runtime keeps mutating the original.
func (j *DownloadJob) Clone() *DownloadJob {
	c := *j
	return &c
}
