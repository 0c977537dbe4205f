package driven

import (
	"context"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// OCREngine runs text recognition on a single page image.
// Implementations shell out to an external recogniser and parse its
// artifacts; they never retry internally.
type OCREngine interface {
	// Name identifies the engine in logs and page results.
	Name() string

	// Available verifies the engine can run (binary on PATH, models
	// reachable). Called once before processing starts.
	Available(ctx context.Context) error

	// Recognise runs OCR on one page image and returns the structured
	// result. A nil error with empty text is a valid outcome for a
	// blank page. Engine crashes and timeouts surface as errors
	// wrapping domain.ErrEngineFailed.
	Recognise(ctx context.Context, in PageInput) (*domain.PageResult, error)
}

// PageInput carries everything an engine needs to process one page.
type PageInput struct {
	// Page is the 1-based page number in the source document.
	Page int

	// ImagePath is the rasterised page image.
	ImagePath string

	// Workspace locates the artifact outputs for this job.
	Workspace domain.Workspace

	// Options is the job's processing configuration.
	Options domain.JobOptions
}
