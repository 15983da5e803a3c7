package model

// OptionKind distinguishes video quality tiers from audio bitrate tiers
type OptionKind string

const (
	// KindVideo is a resolution-bucketed video option
	KindVideo OptionKind = "video"

	// KindAudio is a bitrate-bucketed audio-only option
	KindAudio OptionKind = "audio"
)

// MediaOption represents a single downloadable quality choice, e.g. a 1080p
// video or a 128kbps audio track. Immutable once constructed; at most one
// option exists per (Kind, DisplayLabel) pair in any VideoSummary.
type MediaOption struct {
	// FormatID is the engine-assigned identifier required to re-select this
	// exact stream for download
	FormatID string `json:"format_id"`

	// DisplayLabel is the bucket label shown to the user, e.g. "1080p" or
	// "128kbps"
	DisplayLabel string `json:"display_label"`

	// Kind is video or audio
	Kind OptionKind `json:"kind"`

	// Container is the file container, e.g. "mp4", "webm", "m4a"
	Container string `json:"container"`

	// SizeLabel is a human readable size like "45.20 MB", or "Unknown"
	SizeLabel string `json:"size_label"`

	// HasAudioTrack reports whether the stream carries its own sound
	HasAudioTrack bool `json:"has_audio_track"`
}

// VideoSummary represents the complete details of a fetched media link.
// Created fresh per fetch and never mutated; Options lists all video bucket
// entries first, then all audio bucket entries, each group in bucket
// discovery order.
type VideoSummary struct {
	Title        string        `json:"title"`
	ThumbnailURL string        `json:"thumbnail_url"`
	DurationSec  int64         `json:"duration_sec"`
	Options      []MediaOption `json:"options"`
}

// VideoOptions returns only the video bucket entries
func (v *VideoSummary) VideoOptions() []MediaOption {
	return v.optionsOfKind(KindVideo)
}

// AudioOptions returns only the audio bucket entries
func (v *VideoSummary) AudioOptions() []MediaOption {
	return v.optionsOfKind(KindAudio)
}

func (v *VideoSummary) optionsOfKind(kind OptionKind) []MediaOption {
	var out []MediaOption
	for _, opt := range v.Options {
		if opt.Kind == kind {
			out = append(out, opt)
		}
	}
	return out
}
