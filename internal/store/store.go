// Package store persists finished jobs for history and audit. The live
// registry is in-memory; this store only sees completed runs.
package store

import (
	"context"
	"time"

	"github.com/sells-group/toolspec-cli/internal/model"
)

// JobSummary is one row of job history.
type JobSummary struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at"`
	Total      int       `json:"total"`
	Success    int       `json:"success"`
	Fail       int       `json:"fail"`
}

// Store is the job-history backend.
type Store interface {
	// SaveJob persists a completed job with its final progress totals.
	SaveJob(ctx context.Context, j *model.Job) error

	// ListJobs returns the most recent jobs, newest first.
	ListJobs(ctx context.Context, limit int) ([]JobSummary, error)

	// GetRecords returns the stored record set of a job.
	GetRecords(ctx context.Context, id string) ([]model.Record, error)

	Close() error
}
