package domain

import "time"

// JobStatus tracks a job through its lifecycle.
type JobStatus string

// Job lifecycle states.
const (
	// JobPending means the job is created but not yet processing.
	JobPending JobStatus = "pending"

	// JobRunning means pages are being processed.
	JobRunning JobStatus = "running"

	// JobDone means all pages were processed and exports written.
	JobDone JobStatus = "done"

	// JobFailed means an unrecoverable error aborted the job.
	JobFailed JobStatus = "failed"

	// JobCanceled means a cancellation request stopped the job at a
	// page boundary.
	JobCanceled JobStatus = "canceled"
)

// IsValid returns true if the status is recognised.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobPending, JobRunning, JobDone, JobFailed, JobCanceled:
		return true
	default:
		return false
	}
}

// Terminal returns true once the job can no longer change state.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobDone, JobFailed, JobCanceled:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s JobStatus) String() string {
	return string(s)
}

// JobOptions configures one OCR run.
type JobOptions struct {
	// Mode selects the engine speed/accuracy trade-off.
	Mode OCRMode

	// Device is the compute device passed to the engine.
	Device Device

	// TableMode selects layout-preserving or regrouping table export.
	TableMode TableMode

	// Formats are the requested export serializers.
	Formats []ExportFormat

	// ChunkSize bounds how many pages are processed per chunk.
	ChunkSize int

	// RestEnabled inserts a rest interval between chunks.
	RestEnabled bool

	// RestInterval is the pause between chunks when rest is enabled.
	RestInterval time.Duration

	// DPI is the raster resolution for page images.
	DPI int

	// FallbackEnabled allows the secondary engine to append output
	// when the primary fails or returns too little content.
	FallbackEnabled bool

	// PageStart and PageEnd bound processing to a 1-based inclusive
	// page range. Zero values mean the full document.
	PageStart int
	PageEnd   int

	// Label suffixes the workspace directory name.
	Label string

	// Crop restricts OCR to a normalized region of each page.
	Crop *CropRect

	// Figures asks the primary engine to extract figure images.
	Figures bool

	// IconPolicy controls decorative-figure filtering.
	IconPolicy IconPolicy

	// OutputDir overrides the result directory root.
	OutputDir string
}

// Default processing parameters.
const (
	DefaultChunkSize    = 10
	DefaultRestInterval = 10 * time.Second
	DefaultDPI          = 150
)

// DefaultJobOptions returns the options used when the caller specifies
// nothing: fast mode on CPU, markdown export, chunked processing with
// rest disabled.
func DefaultJobOptions() JobOptions {
	return JobOptions{
		Mode:            OCRModeFast,
		Device:          DeviceCPU,
		TableMode:       TableModeLayout,
		Formats:         []ExportFormat{FormatMarkdown},
		ChunkSize:       DefaultChunkSize,
		RestEnabled:     false,
		RestInterval:    DefaultRestInterval,
		DPI:             DefaultDPI,
		FallbackEnabled: true,
		IconPolicy:      IconPolicyAuto,
	}
}

// Normalize fills zero-valued fields with defaults and clamps
// out-of-range values. Returns the adjusted copy.
func (o JobOptions) Normalize() JobOptions {
	if !o.Mode.IsValid() {
		o.Mode = OCRModeFast
	}
	if !o.Device.IsValid() {
		o.Device = DeviceCPU
	}
	if !o.TableMode.IsValid() {
		o.TableMode = TableModeLayout
	}
	if len(o.Formats) == 0 {
		o.Formats = []ExportFormat{FormatMarkdown}
	}
	if o.ChunkSize < 1 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.RestInterval <= 0 {
		o.RestInterval = DefaultRestInterval
	}
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	if !o.IconPolicy.IsValid() {
		o.IconPolicy = IconPolicyAuto
	}
	return o
}

// Job is one OCR run over a multi-page input.
type Job struct {
	// ID is the unique identifier for the job.
	ID string

	// InputPath is the source file (PDF or image).
	InputPath string

	// Label is an optional suffix for the workspace directory.
	Label string

	// Options holds the processing configuration.
	Options JobOptions

	// Status is the lifecycle state.
	Status JobStatus

	// Error holds the failure cause for failed jobs.
	Error string

	// OutputDir is the resolved workspace directory.
	OutputDir string

	// Outputs maps each completed export format to its file path.
	Outputs map[ExportFormat]string

	// CreatedAt is when the job was created.
	CreatedAt time.Time

	// StartedAt is when processing began.
	StartedAt time.Time

	// FinishedAt is when the job reached a terminal state.
	FinishedAt time.Time
}

// Progress is the poll surface for a running job. It is written only
// by the scheduler; callers always receive copies.
type Progress struct {
	// JobID identifies the job.
	JobID string

	// Status is the lifecycle state at snapshot time.
	Status JobStatus

	// PageCurrent is the number of pages completed so far.
	// Monotonically non-decreasing across polls.
	PageCurrent int

	// PageTotal is the number of pages the job will process.
	PageTotal int

	// Elapsed is the processing time so far.
	Elapsed time.Duration

	// ETA estimates the remaining time from a rolling average of
	// recent per-page durations. Zero until one page has completed.
	ETA time.Duration

	// LogTail holds the most recent log lines, oldest first.
	LogTail []string

	// Error holds the failure cause once Status is failed.
	Error string
}

// JobResult is returned once a job reaches a terminal state.
type JobResult struct {
	// JobID identifies the job.
	JobID string

	// Status is the terminal state.
	Status JobStatus

	// Outputs maps each completed export format to its file path.
	Outputs map[ExportFormat]string

	// Preview is a short excerpt of the merged document.
	Preview string

	// PagesFailed counts pages that produced no output.
	PagesFailed int

	// PagesRecovered counts pages rescued by the fallback engine.
	PagesRecovered int
}
