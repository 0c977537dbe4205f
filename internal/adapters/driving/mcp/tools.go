package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// StartInput is the input schema for the ocr_start tool.
type StartInput struct {
	Path      string   `json:"path" jsonschema:"path of the PDF or image file to process"`
	Mode      string   `json:"mode,omitempty" jsonschema:"engine mode: fast or accurate"`
	Device    string   `json:"device,omitempty" jsonschema:"compute device: cpu, cuda or mps"`
	Formats   []string `json:"formats,omitempty" jsonschema:"export formats: md, csv, txt, html (default md)"`
	Pages     string   `json:"pages,omitempty" jsonschema:"page range like 3-7 (default: all pages)"`
	Label     string   `json:"label,omitempty" jsonschema:"label suffix for the output directory"`
	TableMode string   `json:"table_mode,omitempty" jsonschema:"table export mode: layout or table"`
}

// StartOutput is the output schema for the ocr_start tool.
type StartOutput struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	OutputDir string `json:"output_dir"`
}

// StatusInput is the input schema for the ocr_status tool.
type StatusInput struct {
	JobID string `json:"job_id" jsonschema:"the job to inspect"`
}

// StatusOutput is the output schema for the ocr_status tool.
type StatusOutput struct {
	JobID          string   `json:"job_id"`
	Status         string   `json:"status"`
	PageCurrent    int      `json:"page_current"`
	PageTotal      int      `json:"page_total"`
	ElapsedSeconds int      `json:"elapsed_seconds"`
	ETASeconds     int      `json:"eta_seconds"`
	LogTail        []string `json:"log_tail,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// CancelInput is the input schema for the ocr_cancel tool.
type CancelInput struct {
	JobID string `json:"job_id" jsonschema:"the job to cancel"`
}

// CancelOutput is the output schema for the ocr_cancel tool.
type CancelOutput struct {
	JobID     string `json:"job_id"`
	Cancelled bool   `json:"cancelled"`
}

// ResultInput is the input schema for the ocr_result tool.
type ResultInput struct {
	JobID string `json:"job_id" jsonschema:"the finished job to read"`
}

// ResultOutput is the output schema for the ocr_result tool.
type ResultOutput struct {
	JobID          string            `json:"job_id"`
	Status         string            `json:"status"`
	Outputs        map[string]string `json:"outputs"`
	Preview        string            `json:"preview,omitempty"`
	PagesFailed    int               `json:"pages_failed,omitempty"`
	PagesRecovered int               `json:"pages_recovered,omitempty"`
}

// JobsInput is the input schema for the ocr_jobs tool.
type JobsInput struct{}

// JobsOutput is the output schema for the ocr_jobs tool.
type JobsOutput struct {
	Jobs  []JobSummary `json:"jobs"`
	Count int          `json:"count"`
}

// JobSummary is one job in the ocr_jobs listing.
type JobSummary struct {
	JobID     string `json:"job_id"`
	Input     string `json:"input"`
	Label     string `json:"label,omitempty"`
	Status    string `json:"status"`
	OutputDir string `json:"output_dir,omitempty"`
	CreatedAt string `json:"created_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ocr_start",
		Description: "Start an OCR job for a PDF or image file",
	}, s.handleStart)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ocr_status",
		Description: "Report the progress of an OCR job",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ocr_cancel",
		Description: "Cancel a running OCR job at the next page boundary",
	}, s.handleCancel)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ocr_result",
		Description: "Read the outputs and preview of a finished OCR job",
	}, s.handleResult)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ocr_jobs",
		Description: "List all OCR jobs, newest first",
	}, s.handleJobs)
}

// handleStart handles the ocr_start tool invocation.
func (s *Server) handleStart(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StartInput,
) (*mcp.CallToolResult, StartOutput, error) {
	opts, err := s.buildOptions(input)
	if err != nil {
		return nil, StartOutput{}, err
	}

	job, err := s.ports.Jobs.Start(ctx, input.Path, opts)
	if err != nil {
		return nil, StartOutput{}, err
	}

	return nil, StartOutput{
		JobID:     job.ID,
		Status:    job.Status.String(),
		OutputDir: job.OutputDir,
	}, nil
}

// buildOptions overlays the tool arguments onto the configured
// defaults. Unrecognised enum values are rejected rather than silently
// replaced; the caller is a program and should learn about its typo.
func (s *Server) buildOptions(input StartInput) (domain.JobOptions, error) {
	opts := s.ports.Defaults

	if input.Mode != "" {
		mode, ok := domain.ParseOCRMode(input.Mode)
		if !ok {
			return opts, fmt.Errorf("unknown mode %q", input.Mode)
		}
		opts.Mode = mode
	}
	if input.Device != "" {
		device, ok := domain.ParseDevice(input.Device)
		if !ok {
			return opts, fmt.Errorf("unknown device %q", input.Device)
		}
		opts.Device = device
	}
	if input.TableMode != "" {
		tableMode, ok := domain.ParseTableMode(input.TableMode)
		if !ok {
			return opts, fmt.Errorf("unknown table mode %q", input.TableMode)
		}
		opts.TableMode = tableMode
	}
	if len(input.Formats) > 0 {
		formats := make([]domain.ExportFormat, 0, len(input.Formats))
		for _, f := range input.Formats {
			format, ok := domain.ParseExportFormat(f)
			if !ok {
				return opts, fmt.Errorf("unknown export format %q", f)
			}
			formats = append(formats, format)
		}
		opts.Formats = formats
	}
	if input.Pages != "" {
		start, end, err := domain.ParsePageRange(input.Pages)
		if err != nil {
			return opts, err
		}
		opts.PageStart, opts.PageEnd = start, end
	}
	if input.Label != "" {
		opts.Label = input.Label
	}

	return opts.Normalize(), nil
}

// handleStatus handles the ocr_status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	progress, err := s.ports.Jobs.Status(ctx, input.JobID)
	if err != nil {
		return nil, StatusOutput{}, err
	}

	return nil, StatusOutput{
		JobID:          progress.JobID,
		Status:         progress.Status.String(),
		PageCurrent:    progress.PageCurrent,
		PageTotal:      progress.PageTotal,
		ElapsedSeconds: int(progress.Elapsed.Seconds()),
		ETASeconds:     int(progress.ETA.Seconds()),
		LogTail:        progress.LogTail,
		Error:          progress.Error,
	}, nil
}

// handleCancel handles the ocr_cancel tool invocation.
func (s *Server) handleCancel(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CancelInput,
) (*mcp.CallToolResult, CancelOutput, error) {
	if err := s.ports.Jobs.Cancel(ctx, input.JobID); err != nil {
		return nil, CancelOutput{}, err
	}
	return nil, CancelOutput{JobID: input.JobID, Cancelled: true}, nil
}

// handleResult handles the ocr_result tool invocation.
func (s *Server) handleResult(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResultInput,
) (*mcp.CallToolResult, ResultOutput, error) {
	result, err := s.ports.Jobs.Result(ctx, input.JobID)
	if err != nil {
		return nil, ResultOutput{}, err
	}

	outputs := make(map[string]string, len(result.Outputs))
	for format, path := range result.Outputs {
		outputs[format.String()] = path
	}

	return nil, ResultOutput{
		JobID:          result.JobID,
		Status:         result.Status.String(),
		Outputs:        outputs,
		Preview:        result.Preview,
		PagesFailed:    result.PagesFailed,
		PagesRecovered: result.PagesRecovered,
	}, nil
}

// handleJobs handles the ocr_jobs tool invocation.
func (s *Server) handleJobs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ JobsInput,
) (*mcp.CallToolResult, JobsOutput, error) {
	jobs, err := s.ports.Jobs.List(ctx)
	if err != nil {
		return nil, JobsOutput{}, err
	}

	output := JobsOutput{
		Jobs:  make([]JobSummary, len(jobs)),
		Count: len(jobs),
	}
	for i := range jobs {
		output.Jobs[i] = JobSummary{
			JobID:     jobs[i].ID,
			Input:     jobs[i].InputPath,
			Label:     jobs[i].Label,
			Status:    jobs[i].Status.String(),
			OutputDir: jobs[i].OutputDir,
			CreatedAt: jobs[i].CreatedAt.Format(time.RFC3339),
		}
	}

	return nil, output, nil
}
