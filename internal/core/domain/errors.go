package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates a missing or unreadable source file.
	// This aborts the whole job.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedInput indicates a file type the pipeline cannot
	// process directly (HEIC/SVG conversion happens upstream).
	ErrUnsupportedInput = errors.New("unsupported input type")

	// ErrJobRunning indicates a job is already active.
	// The pipeline processes one job at a time.
	ErrJobRunning = errors.New("job already running")

	// ErrJobFinished indicates an operation that requires a live job
	// was attempted on a terminal one.
	ErrJobFinished = errors.New("job already finished")

	// ErrJobNotTerminal indicates deletion was attempted on a job that
	// has not reached a terminal state.
	ErrJobNotTerminal = errors.New("job not in a terminal state")

	// ErrEngineUnavailable indicates the OCR engine binary or binding
	// is not present on this host.
	ErrEngineUnavailable = errors.New("ocr engine unavailable")

	// ErrEngineFailed indicates a single page's OCR invocation failed.
	// Never fatal to the job; the page is marked failed instead.
	ErrEngineFailed = errors.New("ocr invocation failed")

	// ErrEmptyResult indicates an engine returned no usable content
	// for a page. Triggers the fallback chain when enabled.
	ErrEmptyResult = errors.New("empty ocr result")

	// ErrExportFailed indicates a serializer rejected the document
	// model. Fatal only for that output format.
	ErrExportFailed = errors.New("export failed")

	// ErrCanceled indicates the job was stopped by a cancellation
	// request at a page boundary.
	ErrCanceled = errors.New("job canceled")
)
