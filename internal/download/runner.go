package download

import (
	"context"

	"github.com/zenload/zenload/internal/engine"
	"github.com/zenload/zenload/internal/jobs"
	"github.com/zenload/zenload/internal/platform"
)

// transferRunner executes one transfer attempt against the engine. It is
// the piece the substrate invokes from its worker goroutines.
type transferRunner struct {
	transferor engine.Transferor
	gate       engine.Gate
}

// NewRunner wires the engine into the job substrate
func NewRunner(transferor engine.Transferor, gate engine.Gate) jobs.Runner {
	return &transferRunner{transferor: transferor, gate: gate}
}

func (r *transferRunner) Run(ctx context.Context, payload jobs.Payload, onProgress engine.ProgressFunc) (string, error) {
	r.gate.Ensure(ctx)

	result, err := r.transferor.Transfer(ctx, engine.TransferRequest{
		URL:            payload.SourceURL,
		FormatSelector: payload.Selector,
		OutputTemplate: payload.OutputTemplate,
		MergeContainer: payload.MergeContainer,
		ExtractAudio:   payload.ExtractAudio,
	}, onProgress)
	if err != nil {
		return "", engine.ClassifyTransfer(err)
	}

	platform.NotifyMediaIndexer(result.OutputPath)
	return result.OutputPath, nil
}
