package cli

import (
	"context"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driving"
)

// mockJobService implements driving.JobService for command tests.
// Unset functions return empty values.
type mockJobService struct {
	StartFunc  func(ctx context.Context, inputPath string, opts domain.JobOptions) (*domain.Job, error)
	StatusFunc func(ctx context.Context, jobID string) (*domain.Progress, error)
	CancelFunc func(ctx context.Context, jobID string) error
	ResultFunc func(ctx context.Context, jobID string) (*domain.JobResult, error)
	ListFunc   func(ctx context.Context) ([]domain.Job, error)
	DeleteFunc func(ctx context.Context, jobID string) error
}

func (m *mockJobService) Start(ctx context.Context, inputPath string, opts domain.JobOptions) (*domain.Job, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, inputPath, opts)
	}
	return &domain.Job{ID: "job-1", InputPath: inputPath, Options: opts}, nil
}

func (m *mockJobService) Status(ctx context.Context, jobID string) (*domain.Progress, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, jobID)
	}
	return &domain.Progress{JobID: jobID, Status: domain.JobDone}, nil
}

func (m *mockJobService) Cancel(ctx context.Context, jobID string) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, jobID)
	}
	return nil
}

func (m *mockJobService) Result(ctx context.Context, jobID string) (*domain.JobResult, error) {
	if m.ResultFunc != nil {
		return m.ResultFunc(ctx, jobID)
	}
	return &domain.JobResult{JobID: jobID, Status: domain.JobDone}, nil
}

func (m *mockJobService) List(ctx context.Context) ([]domain.Job, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.Job{}, nil
}

func (m *mockJobService) Delete(ctx context.Context, jobID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, jobID)
	}
	return nil
}

// setupJobService swaps in a mock job service and returns a cleanup
// that restores the previous one.
func setupJobService(mock driving.JobService) func() {
	old := jobService
	jobService = mock
	return func() {
		jobService = old
	}
}

// setupConfigStore swaps in a config store and returns a cleanup that
// restores the previous one.
func setupConfigStore(cfg driven.ConfigStore) func() {
	old := configStore
	configStore = cfg
	return func() {
		configStore = old
	}
}
