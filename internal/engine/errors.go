package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

// ResolutionError reports a failed metadata fetch: bad or unsupported URL,
// or a network failure while talking to the engine. Surfaced directly to the
// caller, never retried automatically.
type ResolutionError struct {
	URL string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %s: %v", e.URL, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// TransferErrorKind splits transfer failures into the two classes the retry
// policy distinguishes.
type TransferErrorKind int

const (
	// TransferRetriable is a network-class hiccup worth retrying with backoff
	TransferRetriable TransferErrorKind = iota

	// TransferFatal is a storage or engine failure that retrying cannot fix:
	// disk full, permission denied, unsupported merge
	TransferFatal
)

// TransferError wraps a failed transfer with its retry classification
type TransferError struct {
	Kind TransferErrorKind
	Err  error
}

func (e *TransferError) Error() string {
	if e.Kind == TransferFatal {
		return fmt.Sprintf("transfer failed permanently: %v", e.Err)
	}
	return fmt.Sprintf("transfer failed: %v", e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// InitError reports a failed engine initialization. Non-fatal by design:
// the readiness flag advances regardless and downloads proceed best-effort
// with whatever engine version is already installed.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("engine init: %v", e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Substrings the engine reports for failures retrying cannot fix
var fatalMarkers = []string{
	"no space left",
	"disk full",
	"permission denied",
	"read-only file system",
	"requested format is not available",
	"unsupported",
	"ffmpeg not found",
	"postprocessing",
}

// ClassifyTransfer wraps err as a TransferError. Storage and engine-reported
// non-retriable failures are fatal; network-class failures, including
// anything unrecognized, are retriable and left to the backoff policy's
// bounded attempt count.
func ClassifyTransfer(err error) *TransferError {
	var te *TransferError
	if errors.As(err, &te) {
		return te
	}

	if errors.Is(err, os.ErrPermission) || errors.Is(err, context.Canceled) {
		return &TransferError{Kind: TransferFatal, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &TransferError{Kind: TransferRetriable, Err: err}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range fatalMarkers {
		if strings.Contains(msg, marker) {
			return &TransferError{Kind: TransferFatal, Err: err}
		}
	}

	return &TransferError{Kind: TransferRetriable, Err: err}
}

// IsRetriable reports whether err should be handed back to the retry policy
func IsRetriable(err error) bool {
	var te *TransferError
	if errors.As(err, &te) {
		return te.Kind == TransferRetriable
	}
	return ClassifyTransfer(err).Kind == TransferRetriable
}
