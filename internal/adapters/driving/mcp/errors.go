// Package mcp provides a Model Context Protocol server adapter. It
// lets AI assistants drive the OCR pipeline: start jobs, poll
// progress, and read finished documents as resources.
package mcp

import "errors"

// ErrMissingJobService is returned when the job service is not provided.
var ErrMissingJobService = errors.New("mcp: job service is required")
