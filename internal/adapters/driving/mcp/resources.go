package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// uriScheme is the custom URI scheme for job resources.
const uriScheme = "ocr2doc://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the job list.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "jobs",
		Name:        "jobs",
		Description: "All OCR jobs, newest first",
		MIMEType:    "application/json",
	}, s.handleJobsResource)

	// Template for a finished job's merged markdown.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "jobs/{jobId}/document",
		Name:        "job-document",
		Description: "Merged markdown document of a finished job",
		MIMEType:    "text/markdown",
	}, s.handleDocumentResource)

	// Template for a finished job's plain text rendition.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "jobs/{jobId}/text",
		Name:        "job-text",
		Description: "Plain text rendition of a finished job",
		MIMEType:    "text/plain",
	}, s.handleTextResource)
}

// handleJobsResource returns the job list as JSON.
func (s *Server) handleJobsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	jobs, err := s.ports.Jobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}

	infos := make([]JobSummary, len(jobs))
	for i := range jobs {
		infos[i] = JobSummary{
			JobID:     jobs[i].ID,
			Input:     jobs[i].InputPath,
			Label:     jobs[i].Label,
			Status:    jobs[i].Status.String(),
			OutputDir: jobs[i].OutputDir,
			CreatedAt: jobs[i].CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling jobs: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentResource returns the merged markdown of a job.
func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return s.readOutput(ctx, req, "/document", domain.FormatMarkdown, "text/markdown")
}

// handleTextResource returns the plain text rendition of a job.
func (s *Server) handleTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return s.readOutput(ctx, req, "/text", domain.FormatText, "text/plain")
}

// readOutput resolves the job named in the URI and reads one of its
// export files.
func (s *Server) readOutput(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
	suffix string,
	format domain.ExportFormat,
	mimeType string,
) (*mcp.ReadResourceResult, error) {
	jobID := jobIDFromURI(req.Params.URI, suffix)
	if jobID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	job, err := s.findJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	path, ok := job.Outputs[format]
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s output: %w", format, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: mimeType,
			Text:     string(content),
		}},
	}, nil
}

// findJob returns the job with the given ID, or nil when unknown.
func (s *Server) findJob(ctx context.Context, jobID string) (*domain.Job, error) {
	jobs, err := s.ports.Jobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	for i := range jobs {
		if jobs[i].ID == jobID {
			return &jobs[i], nil
		}
	}
	return nil, nil
}

// jobIDFromURI extracts the job ID from a URI like
// ocr2doc://jobs/{jobId}/document.
func jobIDFromURI(uri, suffix string) string {
	const prefix = uriScheme + "jobs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}
	return strings.TrimSuffix(uri, suffix)
}
