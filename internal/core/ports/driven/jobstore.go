package driven

import (
	"context"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// JobStore persists jobs, their progress snapshots, and their results.
// Backed by SQLite so jobs survive process restarts and can be polled
// from another process.
type JobStore interface {
	// CreateJob stores a new job. Returns domain.ErrAlreadyExists if
	// the ID is taken.
	CreateJob(ctx context.Context, job *domain.Job) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, id string) (*domain.Job, error)

	// ListJobs returns all jobs, newest first.
	ListJobs(ctx context.Context) ([]domain.Job, error)

	// UpdateJob stores the job's current state.
	UpdateJob(ctx context.Context, job *domain.Job) error

	// DeleteJob removes a job with its progress and result rows.
	DeleteJob(ctx context.Context, id string) error

	// SaveProgress stores the latest progress snapshot for polling.
	SaveProgress(ctx context.Context, p domain.Progress) error

	// GetProgress retrieves the latest progress snapshot.
	GetProgress(ctx context.Context, jobID string) (*domain.Progress, error)

	// SaveResult stores the terminal outcome of a job.
	SaveResult(ctx context.Context, res *domain.JobResult) error

	// GetResult retrieves the terminal outcome of a job.
	GetResult(ctx context.Context, jobID string) (*domain.JobResult, error)

	// Close releases the underlying storage.
	Close() error
}
