package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// MockJobService implements driving.JobService for testing.
type MockJobService struct {
	StartFunc  func(ctx context.Context, inputPath string, opts domain.JobOptions) (*domain.Job, error)
	StatusFunc func(ctx context.Context, jobID string) (*domain.Progress, error)
	CancelFunc func(ctx context.Context, jobID string) error
	ResultFunc func(ctx context.Context, jobID string) (*domain.JobResult, error)
	ListFunc   func(ctx context.Context) ([]domain.Job, error)
	DeleteFunc func(ctx context.Context, jobID string) error
}

func (m *MockJobService) Start(
	ctx context.Context, inputPath string, opts domain.JobOptions,
) (*domain.Job, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, inputPath, opts)
	}
	return nil, nil
}

func (m *MockJobService) Status(ctx context.Context, jobID string) (*domain.Progress, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, jobID)
	}
	return nil, nil
}

func (m *MockJobService) Cancel(ctx context.Context, jobID string) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, jobID)
	}
	return nil
}

func (m *MockJobService) Result(ctx context.Context, jobID string) (*domain.JobResult, error) {
	if m.ResultFunc != nil {
		return m.ResultFunc(ctx, jobID)
	}
	return nil, nil
}

func (m *MockJobService) List(ctx context.Context) ([]domain.Job, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockJobService) Delete(ctx context.Context, jobID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, jobID)
	}
	return nil
}

func TestNewPorts(t *testing.T) {
	jobs := &MockJobService{}

	ports := NewPorts(jobs)

	require.NotNil(t, ports)
	assert.Equal(t, jobs, ports.Jobs)
}

func TestPorts_Validate_AllSet(t *testing.T) {
	ports := &Ports{
		Jobs: &MockJobService{},
	}

	err := ports.Validate()

	assert.NoError(t, err)
}

func TestPorts_Validate_MissingJobs(t *testing.T) {
	ports := &Ports{
		Jobs: nil,
	}

	err := ports.Validate()

	assert.ErrorIs(t, err, ErrMissingJobService)
}
