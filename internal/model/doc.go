package model

// Package model defines domain data structures used across the app: media
// quality options produced by format normalization, fetched video summaries,
// download jobs, and job state enums. Options and summaries are immutable
// snapshots; jobs are mutated only by the job runtime.
