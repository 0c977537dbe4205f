package mcp

import (
	"context"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// mockJobService is a mock implementation of driving.JobService.
type mockJobService struct {
	job      *domain.Job
	progress *domain.Progress
	result   *domain.JobResult
	jobs     []domain.Job
	err      error

	startedPath string
	startedOpts domain.JobOptions
	cancelledID string
}

func (m *mockJobService) Start(
	_ context.Context,
	inputPath string,
	opts domain.JobOptions,
) (*domain.Job, error) {
	m.startedPath = inputPath
	m.startedOpts = opts
	return m.job, m.err
}

func (m *mockJobService) Status(_ context.Context, _ string) (*domain.Progress, error) {
	return m.progress, m.err
}

func (m *mockJobService) Cancel(_ context.Context, jobID string) error {
	m.cancelledID = jobID
	return m.err
}

func (m *mockJobService) Result(_ context.Context, _ string) (*domain.JobResult, error) {
	return m.result, m.err
}

func (m *mockJobService) List(_ context.Context) ([]domain.Job, error) {
	return m.jobs, m.err
}

func (m *mockJobService) Delete(_ context.Context, _ string) error {
	return m.err
}
