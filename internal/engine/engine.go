package engine

import (
	"context"
)

// RawVariant is a read-only snapshot of one stream variant as reported by
// the resolution engine. Optional fields are pointers: nil means the engine
// did not report a usable value. Sentinel strings like "none" are resolved
// to nil at the ingestion boundary and never escape this package.
type RawVariant struct {
	// FormatID is the opaque engine-assigned identifier. Required to
	// re-select the stream for download; variants without one are unusable.
	FormatID string

	// VideoCodec and AudioCodec are nil when the variant has no such track
	VideoCodec *string
	AudioCodec *string

	// Height in pixels, nil if not a video or unreported
	Height *int

	// AvgBitrateKbps is the variant's total average bitrate, used for size
	// estimation when no exact byte size is known
	AvgBitrateKbps *float64

	// AudioBitrateKbps is the audio-track bitrate, used for audio bucketing
	AudioBitrateKbps *float64

	// ExactByteSize is the known file size in bytes, nil if unreported
	ExactByteSize *int64

	// Container is the file extension/container, e.g. "mp4", "webm", "mhtml"
	Container string

	// FormatLabel is the engine's free-form note for the variant, e.g.
	// "1080p" or "storyboard"
	FormatLabel string
}

// HasVideo reports whether the variant carries a video track
func (v *RawVariant) HasVideo() bool {
	return v.VideoCodec != nil
}

// HasAudio reports whether the variant carries an audio track
func (v *RawVariant) HasAudio() bool {
	return v.AudioCodec != nil
}

// MediaInfo is the raw metadata for one URL as returned by a fetch
type MediaInfo struct {
	Title        string
	ThumbnailURL string
	DurationSec  int64
	Variants     []RawVariant
}

// ProgressFunc receives transfer progress callbacks from the engine's own
// execution context. Percent may be transiently negative or above 100 and
// must be clamped by the caller; etaSec is -1 when unknown; title is the
// engine-refined media title, empty when unchanged.
type ProgressFunc func(percent float64, etaSec int, title string)

// TransferRequest selects exactly one stream and describes where its bytes go
type TransferRequest struct {
	// URL is the source media page
	URL string

	// FormatSelector is the engine format expression, e.g. "137" or
	// "137+bestaudio"
	FormatSelector string

	// OutputTemplate is the engine output path template, e.g.
	// "/downloads/ZenLoad/Title.%(ext)s"
	OutputTemplate string

	// MergeContainer, when non-empty, asks the engine to merge separate
	// video and audio streams into this container
	MergeContainer string

	// ExtractAudio asks the engine to extract the audio track from the
	// selected stream
	ExtractAudio bool
}

// TransferResult reports the terminal outcome of a successful transfer
type TransferResult struct {
	// OutputPath is the produced file, empty if the engine did not report it
	OutputPath string
}

// Resolver turns a URL into raw stream metadata
type Resolver interface {
	FetchInfo(ctx context.Context, url string) (*MediaInfo, error)
}

// Transferor moves the selected stream's bytes to the destination while
// streaming progress
type Transferor interface {
	Transfer(ctx context.Context, req TransferRequest, onProgress ProgressFunc) (*TransferResult, error)
}

// Gate is the constructor-supplied readiness-check capability. Ensure is
// called before the first fetch or transfer of the process lifetime; it
// blocks until the one-time engine initialization has been attempted.
type Gate interface {
	Ensure(ctx context.Context)
	Ready() bool
}
