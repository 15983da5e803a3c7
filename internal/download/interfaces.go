package download

import (
	"github.com/zenload/zenload/internal/jobs"
	"github.com/zenload/zenload/internal/model"
)

// Substrate is the slice of the job-execution substrate the orchestrator
// depends on
type Substrate interface {
	Enqueue(key string, payload jobs.Payload, policy jobs.SubmitPolicy, retry jobs.RetryPolicy) (*model.DownloadJob, error)
	CancelByKey(key string) error
	Snapshot(key string) (*model.DownloadJob, bool)
	List() []*model.DownloadJob
	SetUpdateCallback(func(*model.DownloadJob))
}
