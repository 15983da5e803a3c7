package jobs

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zenload/zenload/internal/model"
)

// interruptedMessage marks jobs that were non-terminal when the process
// died; the transfer itself is not resumed, only the record is settled
const interruptedMessage = "interrupted by restart"

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	job_key     TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	source_url  TEXT NOT NULL,
	format_id   TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	state       TEXT NOT NULL,
	progress    INTEGER NOT NULL DEFAULT 0,
	last_error  TEXT NOT NULL DEFAULT '',
	output_path TEXT NOT NULL DEFAULT '',
	enqueued_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL DEFAULT 0
);`

// Store persists job records in sqlite. It is the durability half of the
// substrate: job identity and terminal outcomes survive process restarts.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the job database at path and
// settles any rows left non-terminal by a previous process.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening job store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating jobs table: %w", err)
	}

	store := &Store{db: db}
	if _, err := store.markInterrupted(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert writes the current job snapshot under its key
func (s *Store) Upsert(runID string, job *model.DownloadJob) error {
	_, err := s.db.Exec(`
		INSERT INTO jobs (job_key, run_id, source_url, format_id, title, state,
			progress, last_error, output_path, enqueued_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_key) DO UPDATE SET
			run_id = excluded.run_id,
			source_url = excluded.source_url,
			format_id = excluded.format_id,
			title = excluded.title,
			state = excluded.state,
			progress = excluded.progress,
			last_error = excluded.last_error,
			output_path = excluded.output_path,
			enqueued_at = excluded.enqueued_at,
			finished_at = excluded.finished_at`,
		job.JobKey, runID, job.SourceURL, job.FormatID, job.Title, string(job.State),
		job.ProgressPercent, job.LastError, job.OutputPath,
		job.EnqueuedAt.Unix(), unixOrZero(job.FinishedAt))
	if err != nil {
		return fmt.Errorf("upserting job %s: %w", job.JobKey, err)
	}
	return nil
}

// Get loads the job stored under key
func (s *Store) Get(key string) (*model.DownloadJob, bool, error) {
	row := s.db.QueryRow(`
		SELECT job_key, source_url, format_id, title, state, progress,
			last_error, output_path, enqueued_at, finished_at
		FROM jobs WHERE job_key = ?`, key)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading job %s: %w", key, err)
	}
	return job, true, nil
}

// List returns all stored jobs, most recently enqueued first
func (s *Store) List() ([]*model.DownloadJob, error) {
	rows, err := s.db.Query(`
		SELECT job_key, source_url, format_id, title, state, progress,
			last_error, output_path, enqueued_at, finished_at
		FROM jobs ORDER BY enqueued_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var out []*model.DownloadJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// markInterrupted fails every row a previous process left non-terminal
func (s *Store) markInterrupted() (int64, error) {
	result, err := s.db.Exec(`
		UPDATE jobs SET state = ?, last_error = ?, finished_at = ?
		WHERE state IN (?, ?)`,
		string(model.JobStateFailed), interruptedMessage, time.Now().Unix(),
		string(model.JobStateEnqueued), string(model.JobStateRunning))
	if err != nil {
		return 0, fmt.Errorf("settling interrupted jobs: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*model.DownloadJob, error) {
	var job model.DownloadJob
	var state string
	var enqueuedAt, finishedAt int64

	err := row.Scan(&job.JobKey, &job.SourceURL, &job.FormatID, &job.Title,
		&state, &job.ProgressPercent, &job.LastError, &job.OutputPath,
		&enqueuedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	job.State = model.JobState(state)
	job.EnqueuedAt = time.Unix(enqueuedAt, 0)
	if finishedAt > 0 {
		job.FinishedAt = time.Unix(finishedAt, 0)
	}
	job.ETASec = -1
	return &job, nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
