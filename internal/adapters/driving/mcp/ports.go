package mcp

import (
	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driving"
)

// Ports aggregates everything the MCP server needs. This is the single
// injection point for dependency wiring.
type Ports struct {
	// Jobs drives the OCR pipeline.
	Jobs driving.JobService

	// Defaults seeds the job options of the start tool; tool arguments
	// override individual fields. The zero value falls back to the
	// built-in defaults.
	Defaults domain.JobOptions
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Jobs == nil {
		return ErrMissingJobService
	}
	return nil
}
