// Package format implements format normalization: it collapses the raw,
// unordered stream-variant list reported by the resolution engine into a
// clean, deduplicated, user-presentable set of video and audio quality
// options. Pure functions, no I/O, safe to run concurrently.
package format

import (
	"fmt"
	"strings"

	"github.com/zenload/zenload/internal/engine"
	"github.com/zenload/zenload/internal/model"
)

// Preferred containers per kind. When several variants land in the same
// bucket, a candidate in the preferred container replaces a representative
// that is not.
const (
	PreferredVideoContainer = "mp4"
	PreferredAudioContainer = "m4a"
)

// UnknownSizeLabel is used when neither an exact size nor a bitrate-based
// estimate is available
const UnknownSizeLabel = "Unknown"

// Thumbnail/storyboard artifacts are never downloadable media
const (
	storyboardContainer = "mhtml"
	storyboardMarker    = "storyboard"
)

// Audio bitrate bucket thresholds in kbps
const (
	lowAudioCeilingKbps = 70
	midAudioCeilingKbps = 140
)

// Audio bucket labels
const (
	lowAudioLabel  = "64kbps"
	midAudioLabel  = "128kbps"
	highAudioLabel = "256kbps"
)

const bytesPerMegabyte = 1024 * 1024

// standardHeights is the fixed set of resolutions surfaced to users. The
// engine may offer non-standard heights; those are dropped.
var standardHeights = map[int]bool{
	144:  true,
	240:  true,
	360:  true,
	480:  true,
	720:  true,
	1080: true,
	1440: true,
	2160: true,
}

// Normalize converts raw stream variants into ranked media options: all
// video bucket representatives first, then all audio bucket
// representatives, each group in bucket discovery order. Unusable variants
// are dropped silently; an input with zero accepted variants yields an
// empty slice, which callers must treat as a valid "no downloadable
// formats" result rather than an error.
func Normalize(variants []engine.RawVariant, durationSec int64) []model.MediaOption {
	videos := newBucketSet(PreferredVideoContainer)
	audios := newBucketSet(PreferredAudioContainer)

	for i := range variants {
		v := &variants[i]
		if !usable(v) {
			continue
		}

		sizeLabel := sizeLabelFor(v, durationSec)

		switch {
		case !v.HasVideo() && v.HasAudio():
			label, ok := audioBucket(v.AudioBitrateKbps)
			if !ok {
				continue
			}
			audios.add(model.MediaOption{
				FormatID:      v.FormatID,
				DisplayLabel:  label,
				Kind:          model.KindAudio,
				Container:     v.Container,
				SizeLabel:     sizeLabel,
				HasAudioTrack: true,
			})

		case v.HasVideo():
			if v.Height == nil || !standardHeights[*v.Height] {
				continue
			}
			videos.add(model.MediaOption{
				FormatID:      v.FormatID,
				DisplayLabel:  fmt.Sprintf("%dp", *v.Height),
				Kind:          model.KindVideo,
				Container:     v.Container,
				SizeLabel:     sizeLabel,
				HasAudioTrack: v.HasAudio(),
			})
		}
	}

	return append(videos.options(), audios.options()...)
}

// BuildSummary assembles the immutable per-fetch summary from raw engine
// metadata
func BuildSummary(info *engine.MediaInfo) *model.VideoSummary {
	duration := info.DurationSec
	if duration < 0 {
		duration = 0
	}

	return &model.VideoSummary{
		Title:        info.Title,
		ThumbnailURL: info.ThumbnailURL,
		DurationSec:  duration,
		Options:      Normalize(info.Variants, duration),
	}
}

// usable filters out variants that can never become an option: storyboard
// artifacts, variants with no codec signal at all, and variants missing the
// formatId required to drive a later download.
func usable(v *engine.RawVariant) bool {
	if v.FormatID == "" {
		return false
	}
	if v.Container == storyboardContainer || strings.Contains(v.FormatLabel, storyboardMarker) {
		return false
	}
	return v.HasVideo() || v.HasAudio()
}

// estimateBytes returns the known or estimated size in bytes, 0 when
// unknown. An exact byte size always wins over bitrate estimation.
func estimateBytes(v *engine.RawVariant, durationSec int64) int64 {
	if v.ExactByteSize != nil && *v.ExactByteSize > 0 {
		return *v.ExactByteSize
	}
	if v.AvgBitrateKbps != nil && *v.AvgBitrateKbps > 0 && durationSec > 0 {
		return int64(*v.AvgBitrateKbps*1024/8) * durationSec
	}
	return 0
}

func sizeLabelFor(v *engine.RawVariant, durationSec int64) string {
	size := estimateBytes(v, durationSec)
	if size <= 0 {
		return UnknownSizeLabel
	}
	return fmt.Sprintf("%.2f MB", float64(size)/bytesPerMegabyte)
}

// audioBucket maps an audio bitrate onto one of the three fixed labels.
// Variants without a usable bitrate signal cannot be bucketed and are
// excluded from audio classification.
func audioBucket(kbps *float64) (string, bool) {
	if kbps == nil {
		return "", false
	}
	rate := int(*kbps)
	if rate <= 0 {
		return "", false
	}

	switch {
	case rate <= lowAudioCeilingKbps:
		return lowAudioLabel, true
	case rate <= midAudioCeilingKbps:
		return midAudioLabel, true
	default:
		return highAudioLabel, true
	}
}

// bucketSet keeps exactly one representative per bucket label, in first
// discovery order. A later candidate replaces the representative only when
// the candidate is in the preferred container and the incumbent is not.
type bucketSet struct {
	preferred string
	order     []string
	byLabel   map[string]model.MediaOption
}

func newBucketSet(preferred string) *bucketSet {
	return &bucketSet{
		preferred: preferred,
		byLabel:   make(map[string]model.MediaOption),
	}
}

func (b *bucketSet) add(opt model.MediaOption) {
	current, exists := b.byLabel[opt.DisplayLabel]
	if !exists {
		b.order = append(b.order, opt.DisplayLabel)
		b.byLabel[opt.DisplayLabel] = opt
		return
	}
	if opt.Container == b.preferred && current.Container != b.preferred {
		b.byLabel[opt.DisplayLabel] = opt
	}
}

func (b *bucketSet) options() []model.MediaOption {
	out := make([]model.MediaOption, 0, len(b.order))
	for _, label := range b.order {
		out = append(out, b.byLabel[label])
	}
	return out
}
