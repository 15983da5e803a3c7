package download

// Package download implements the download orchestration layer on top of
// the resolution/transfer engine and the job substrate. It owns job
// identity (deterministic per-URL keys), format selection for the chosen
// quality option, submission policy, and pause/cancel addressing.
