package model

// JobState represents the lifecycle state of a download job
type JobState string

const (
	// JobStateEnqueued means the job is registered but not yet running
	JobStateEnqueued JobState = "Enqueued"

	// JobStateRunning means the transfer is in progress
	JobStateRunning JobState = "Running"

	// JobStateSucceeded means the transfer finished successfully
	JobStateSucceeded JobState = "Succeeded"

	// JobStateFailed means the transfer failed terminally
	JobStateFailed JobState = "Failed"

	// JobStateCancelled means the job was cancelled by the user
	JobStateCancelled JobState = "Cancelled"
)

// String returns the string representation of JobState
func (s JobState) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are possible from this
// state. Terminal states may overwrite each other when a cancel races an
// already-completing transfer, but a terminal job never reopens.
func (s JobState) IsTerminal() bool {
	return s == JobStateSucceeded || s == JobStateFailed || s == JobStateCancelled
}

// IsActive returns true if the job still occupies its key in the substrate
func (s JobState) IsActive() bool {
	return s == JobStateEnqueued || s == JobStateRunning
}
