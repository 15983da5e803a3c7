package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTransfer(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind TransferErrorKind
	}{
		{"disk full", errors.New("ERROR: unable to write data: no space left on device"), TransferFatal},
		{"permission", errors.New("opening destination: permission denied"), TransferFatal},
		{"missing format", errors.New("ERROR: requested format is not available"), TransferFatal},
		{"merge tool", errors.New("ffmpeg not found, cannot merge"), TransferFatal},
		{"network reset", errors.New("read tcp: connection reset by peer"), TransferRetriable},
		{"http 5xx", errors.New("HTTP Error 503: Service Unavailable"), TransferRetriable},
		{"unknown", errors.New("something else entirely"), TransferRetriable},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			te := ClassifyTransfer(test.err)
			assert.Equal(t, test.kind, te.Kind)
			assert.ErrorIs(t, te, test.err)
		})
	}
}

func TestClassifyTransfer_PreservesExistingClassification(t *testing.T) {
	orig := &TransferError{Kind: TransferFatal, Err: errors.New("boom")}
	wrapped := fmt.Errorf("attempt 2: %w", orig)

	assert.Same(t, orig, ClassifyTransfer(wrapped))
	assert.False(t, IsRetriable(wrapped))
}

func TestIsRetriable(t *testing.T) {
	assert.True(t, IsRetriable(errors.New("connection timed out")))
	assert.False(t, IsRetriable(&TransferError{Kind: TransferFatal, Err: errors.New("disk full")}))
}

func TestResolutionError_Unwrap(t *testing.T) {
	inner := errors.New("unsupported URL")
	err := &ResolutionError{URL: "https://example.com/x", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "https://example.com/x")
}
