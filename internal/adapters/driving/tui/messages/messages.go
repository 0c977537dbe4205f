// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewJobs is the job list view.
	ViewJobs ViewType = iota
	// ViewProgress is the live progress view for one job.
	ViewProgress
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewJobs:
		return "jobs"
	case ViewProgress:
		return "progress"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// JobsLoaded carries the job list from the service.
type JobsLoaded struct {
	Jobs []domain.Job
	Err  error
}

// JobSelected signals a job was chosen for the progress view.
type JobSelected struct {
	Job domain.Job
}

// ProgressLoaded carries a progress snapshot for the watched job.
type ProgressLoaded struct {
	JobID    string
	Progress *domain.Progress
	Err      error
}

// ResultLoaded carries the outputs of a finished job.
type ResultLoaded struct {
	JobID  string
	Result *domain.JobResult
	Err    error
}

// JobCancelled signals a cancel request was delivered.
type JobCancelled struct {
	JobID string
	Err   error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
