package engine

// Package engine wraps the external media resolution/transfer engine behind
// capability interfaces. The production implementation drives yt-dlp via
// github.com/lrstanley/go-ytdlp; everything above this package sees only
// RawVariant snapshots with explicit optional fields, never the engine's
// "none" sentinel strings.
