package driving

import (
	"context"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// JobService manages OCR jobs end to end: creation, background
// processing, progress polling, cancellation, and result retrieval.
//
// Progress is poll-only. There is no subscription surface; callers
// poll Status at their own interval.
type JobService interface {
	// Start validates the input, creates a job, and begins processing
	// it in the background. Returns the created job immediately.
	// Invalid or unsupported inputs fail here, before a job exists.
	Start(ctx context.Context, inputPath string, opts domain.JobOptions) (*domain.Job, error)

	// Status returns a progress snapshot. Works for running and
	// terminal jobs alike; terminal jobs report their final counts.
	Status(ctx context.Context, jobID string) (*domain.Progress, error)

	// Cancel requests cancellation of a running job. Processing stops
	// at the next page boundary; pages already completed keep their
	// results and the merged document is still written. Cancelling a
	// terminal job returns domain.ErrJobFinished.
	Cancel(ctx context.Context, jobID string) error

	// Result returns the outcome of a terminal job. Returns
	// domain.ErrJobNotTerminal while the job is still running.
	Result(ctx context.Context, jobID string) (*domain.JobResult, error)

	// List returns all known jobs, newest first.
	List(ctx context.Context) ([]domain.Job, error)

	// Delete removes a terminal job from the store. Returns
	// domain.ErrJobRunning for jobs still in flight. Workspace files
	// on disk are left alone.
	Delete(ctx context.Context, jobID string) error
}
