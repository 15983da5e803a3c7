package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// Timeout constants
const (
	DefaultFetchTimeout = 60 * time.Second
	DefaultProgressFreq = 500 * time.Millisecond
)

// noneSentinel is how yt-dlp marks an absent codec in its JSON dump
const noneSentinel = "none"

// YTDLP is the production engine backed by yt-dlp. Implements Resolver and
// Transferor. Safe for concurrent use: each call builds its own command.
type YTDLP struct {
	fetchTimeout time.Duration
}

// NewYTDLP creates the yt-dlp backed engine
func NewYTDLP() *YTDLP {
	return &YTDLP{fetchTimeout: DefaultFetchTimeout}
}

// SetFetchTimeout sets the timeout for metadata fetches
func (e *YTDLP) SetFetchTimeout(timeout time.Duration) {
	e.fetchTimeout = timeout
}

// rawInfo mirrors the subset of yt-dlp's JSON dump the normalizer consumes
type rawInfo struct {
	Title     string      `json:"title"`
	Thumbnail string      `json:"thumbnail"`
	Duration  float64     `json:"duration"`
	Formats   []rawFormat `json:"formats"`
}

type rawFormat struct {
	FormatID   string   `json:"format_id"`
	Ext        string   `json:"ext"`
	FormatNote string   `json:"format_note"`
	VCodec     string   `json:"vcodec"`
	ACodec     string   `json:"acodec"`
	Height     *float64 `json:"height"`
	TBR        *float64 `json:"tbr"`
	ABR        *float64 `json:"abr"`
	Filesize   *int64   `json:"filesize"`
}

// FetchInfo resolves a URL into raw stream metadata via a single blocking
// yt-dlp invocation
func (e *YTDLP) FetchInfo(ctx context.Context, url string) (*MediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	dl := ytdlp.New().
		SkipDownload().
		NoPlaylist().
		DumpSingleJSON()

	result, err := dl.Run(ctx, url)
	if err != nil {
		return nil, &ResolutionError{URL: url, Err: err}
	}

	var info rawInfo
	if err := json.Unmarshal([]byte(result.Stdout), &info); err != nil {
		return nil, &ResolutionError{URL: url, Err: fmt.Errorf("parsing engine metadata: %w", err)}
	}

	variants := make([]RawVariant, 0, len(info.Formats))
	for _, f := range info.Formats {
		variants = append(variants, RawVariant{
			FormatID:         f.FormatID,
			VideoCodec:       codecOrNil(f.VCodec),
			AudioCodec:       codecOrNil(f.ACodec),
			Height:           heightOrNil(f.Height),
			AvgBitrateKbps:   f.TBR,
			AudioBitrateKbps: f.ABR,
			ExactByteSize:    f.Filesize,
			Container:        f.Ext,
			FormatLabel:      f.FormatNote,
		})
	}

	return &MediaInfo{
		Title:        info.Title,
		ThumbnailURL: info.Thumbnail,
		DurationSec:  int64(info.Duration),
		Variants:     variants,
	}, nil
}

// Transfer downloads the selected stream, streaming progress until the
// engine reports a terminal outcome
func (e *YTDLP) Transfer(ctx context.Context, req TransferRequest, onProgress ProgressFunc) (*TransferResult, error) {
	dl := ytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		Format(req.FormatSelector).
		Output(req.OutputTemplate)

	if req.MergeContainer != "" {
		dl = dl.MergeOutputFormat(req.MergeContainer)
	}
	if req.ExtractAudio {
		dl = dl.ExtractAudio()
	}

	if onProgress != nil {
		dl.ProgressFunc(DefaultProgressFreq, func(update ytdlp.ProgressUpdate) {
			percent := -1.0
			if update.TotalBytes > 0 {
				percent = float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
			}

			etaSec := -1
			if eta := update.ETA(); eta > 0 {
				etaSec = int(eta.Seconds())
			}

			title := ""
			if update.Info != nil && update.Info.Title != nil {
				title = *update.Info.Title
			}

			onProgress(percent, etaSec, title)
		})
	}

	result, err := dl.Run(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	out := &TransferResult{}
	if result != nil {
		if infos, ierr := result.GetExtractedInfo(); ierr == nil && len(infos) > 0 && infos[0].Filename != nil {
			out.OutputPath = *infos[0].Filename
		}
	}
	return out, nil
}

// codecOrNil resolves the engine's "none"/empty sentinel to an absent codec
func codecOrNil(codec string) *string {
	if codec == "" || codec == noneSentinel {
		return nil
	}
	return &codec
}

func heightOrNil(height *float64) *int {
	if height == nil {
		return nil
	}
	h := int(*height)
	return &h
}
