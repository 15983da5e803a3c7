package jobs

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenload/zenload/internal/model"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.db")
	store, err := OpenStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestStore_UpsertAndGet(t *testing.T) {
	store, _ := openTestStore(t)

	job := &model.DownloadJob{
		JobKey:          "12345",
		SourceURL:       "https://example.com/watch?v=abc",
		FormatID:        "137",
		Title:           "Some Clip",
		State:           model.JobStateRunning,
		ProgressPercent: 42,
		EnqueuedAt:      time.Now(),
	}
	require.NoError(t, store.Upsert("run-1", job))

	loaded, ok, err := store.Get("12345")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, job.SourceURL, loaded.SourceURL)
	assert.Equal(t, model.JobStateRunning, loaded.State)
	assert.Equal(t, 42, loaded.ProgressPercent)

	// Upsert under the same key overwrites
	job.State = model.JobStateSucceeded
	job.ProgressPercent = 100
	job.OutputPath = "/downloads/ZenLoad/Some_Clip.mp4"
	job.FinishedAt = time.Now()
	require.NoError(t, store.Upsert("run-1", job))

	loaded, ok, err = store.Get("12345")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.JobStateSucceeded, loaded.State)
	assert.Equal(t, "/downloads/ZenLoad/Some_Clip.mp4", loaded.OutputPath)
	assert.False(t, loaded.FinishedAt.IsZero())
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := openTestStore(t)

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ListNewestFirst(t *testing.T) {
	store, _ := openTestStore(t)

	older := &model.DownloadJob{JobKey: "a", SourceURL: "u1", FormatID: "f",
		State: model.JobStateSucceeded, EnqueuedAt: time.Now().Add(-time.Hour)}
	newer := &model.DownloadJob{JobKey: "b", SourceURL: "u2", FormatID: "f",
		State: model.JobStateFailed, EnqueuedAt: time.Now()}
	require.NoError(t, store.Upsert("r1", older))
	require.NoError(t, store.Upsert("r2", newer))

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].JobKey)
	assert.Equal(t, "a", list[1].JobKey)
}

func TestStore_SettlesInterruptedJobsOnOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.db")

	store, err := OpenStore(path)
	require.NoError(t, err)

	running := &model.DownloadJob{JobKey: "r", SourceURL: "u", FormatID: "f",
		State: model.JobStateRunning, ProgressPercent: 50, EnqueuedAt: time.Now()}
	finished := &model.DownloadJob{JobKey: "s", SourceURL: "u", FormatID: "f",
		State: model.JobStateSucceeded, ProgressPercent: 100, EnqueuedAt: time.Now()}
	require.NoError(t, store.Upsert("r1", running))
	require.NoError(t, store.Upsert("r2", finished))
	require.NoError(t, store.Close())

	// Reopening simulates a process restart
	store, err = OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	loaded, ok, err := store.Get("r")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.JobStateFailed, loaded.State)
	assert.Equal(t, interruptedMessage, loaded.LastError)

	loaded, ok, err = store.Get("s")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.JobStateSucceeded, loaded.State, "terminal rows are untouched")
}
