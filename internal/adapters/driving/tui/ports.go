// Package tui provides an interactive terminal user interface for
// watching OCR jobs. It implements a driving adapter following
// hexagonal architecture principles.
package tui

import (
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Jobs drives the OCR pipeline and reports progress.
	Jobs driving.JobService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(jobs driving.JobService) *Ports {
	return &Ports{Jobs: jobs}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Jobs == nil {
		return ErrMissingJobService
	}
	return nil
}
