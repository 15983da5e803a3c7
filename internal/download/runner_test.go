package download

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenload/zenload/internal/engine"
	"github.com/zenload/zenload/internal/jobs"
)

type fakeTransferor struct {
	req    engine.TransferRequest
	result *engine.TransferResult
	err    error
}

func (f *fakeTransferor) Transfer(_ context.Context, req engine.TransferRequest, onProgress engine.ProgressFunc) (*engine.TransferResult, error) {
	f.req = req
	if onProgress != nil {
		onProgress(50, 10, "")
	}
	return f.result, f.err
}

func TestRunner_MapsPayloadToTransferRequest(t *testing.T) {
	transferor := &fakeTransferor{result: &engine.TransferResult{OutputPath: "/out/Clip.mp4"}}
	runner := NewRunner(transferor, &fakeGate{})

	path, err := runner.Run(context.Background(), jobs.Payload{
		SourceURL:      "https://example.com/v",
		Selector:       "137+bestaudio",
		MergeContainer: "mp4",
		OutputTemplate: "/out/Clip.%(ext)s",
	}, func(float64, int, string) {})

	require.NoError(t, err)
	assert.Equal(t, "/out/Clip.mp4", path)
	assert.Equal(t, "https://example.com/v", transferor.req.URL)
	assert.Equal(t, "137+bestaudio", transferor.req.FormatSelector)
	assert.Equal(t, "mp4", transferor.req.MergeContainer)
	assert.False(t, transferor.req.ExtractAudio)
}

func TestRunner_ClassifiesTransferErrors(t *testing.T) {
	transferor := &fakeTransferor{err: errors.New("no space left on device")}
	runner := NewRunner(transferor, &fakeGate{})

	_, err := runner.Run(context.Background(), jobs.Payload{}, nil)
	require.Error(t, err)

	var te *engine.TransferError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, engine.TransferFatal, te.Kind)
}

func TestRunner_EnsuresEngineReadiness(t *testing.T) {
	gate := &fakeGate{}
	runner := NewRunner(&fakeTransferor{result: &engine.TransferResult{}}, gate)

	_, err := runner.Run(context.Background(), jobs.Payload{}, nil)
	require.NoError(t, err)
	assert.True(t, gate.Ready())
}
