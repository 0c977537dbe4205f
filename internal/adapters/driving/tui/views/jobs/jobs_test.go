package jobs

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/messages"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/styles"
	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// MockJobService implements driving.JobService for testing.
type MockJobService struct {
	ListFunc func(ctx context.Context) ([]domain.Job, error)
}

func (m *MockJobService) Start(
	ctx context.Context, inputPath string, opts domain.JobOptions,
) (*domain.Job, error) {
	return nil, nil
}

func (m *MockJobService) Status(ctx context.Context, jobID string) (*domain.Progress, error) {
	return nil, nil
}

func (m *MockJobService) Cancel(ctx context.Context, jobID string) error {
	return nil
}

func (m *MockJobService) Result(ctx context.Context, jobID string) (*domain.JobResult, error) {
	return nil, nil
}

func (m *MockJobService) List(ctx context.Context) ([]domain.Job, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.Job{}, nil
}

func (m *MockJobService) Delete(ctx context.Context, jobID string) error {
	return nil
}

func testJobs() []domain.Job {
	return []domain.Job{
		{ID: "job-1", InputPath: "/input/scan.pdf", Status: domain.JobDone},
		{ID: "job-2", InputPath: "/input/photo.png", Label: "p3-7", Status: domain.JobRunning},
		{ID: "job-3", InputPath: "/input/broken.pdf", Status: domain.JobFailed},
	}
}

func TestNewView(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockJobService{})

	require.NotNil(t, view)
	assert.Empty(t, view.jobs)
	assert.Equal(t, 0, view.selected)
	assert.False(t, view.ready)
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil, &MockJobService{})

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
}

func TestView_Init_LoadsJobs(t *testing.T) {
	mock := &MockJobService{
		ListFunc: func(ctx context.Context) ([]domain.Job, error) {
			return testJobs(), nil
		},
	}
	view := NewView(nil, mock)

	cmd := view.Init()
	require.NotNil(t, cmd)

	msg := cmd()
	loaded, ok := msg.(messages.JobsLoaded)
	require.True(t, ok)
	assert.NoError(t, loaded.Err)
	assert.Len(t, loaded.Jobs, 3)
}

func TestView_Init_ListFails(t *testing.T) {
	mock := &MockJobService{
		ListFunc: func(ctx context.Context) ([]domain.Job, error) {
			return nil, errors.New("store closed")
		},
	}
	view := NewView(nil, mock)

	msg := view.Init()()

	loaded, ok := msg.(messages.JobsLoaded)
	require.True(t, ok)
	assert.Error(t, loaded.Err)
}

func TestView_Init_NilService(t *testing.T) {
	view := NewView(nil, nil)

	msg := view.Init()()

	loaded, ok := msg.(messages.JobsLoaded)
	require.True(t, ok)
	assert.Error(t, loaded.Err)
}

func TestView_Update_JobsLoaded(t *testing.T) {
	view := NewView(nil, &MockJobService{})

	view, _ = view.Update(messages.JobsLoaded{Jobs: testJobs()})

	assert.Len(t, view.Jobs(), 3)
	assert.NoError(t, view.Err())
}

func TestView_Update_JobsLoaded_ResetsSelection(t *testing.T) {
	view := NewView(nil, &MockJobService{})
	view, _ = view.Update(messages.JobsLoaded{Jobs: testJobs()})
	view.selected = 2

	view, _ = view.Update(messages.JobsLoaded{Jobs: testJobs()[:1]})

	assert.Equal(t, 0, view.SelectedIndex())
}

func TestView_Update_Navigation(t *testing.T) {
	view := NewView(nil, &MockJobService{})
	view, _ = view.Update(messages.JobsLoaded{Jobs: testJobs()})

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, view.SelectedIndex())

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, view.SelectedIndex())

	// Bottom boundary
	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, view.SelectedIndex())

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, view.SelectedIndex())

	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, view.SelectedIndex())

	// Top boundary
	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, view.SelectedIndex())
}

func TestView_Update_Enter_SelectsJob(t *testing.T) {
	view := NewView(nil, &MockJobService{})
	view, _ = view.Update(messages.JobsLoaded{Jobs: testJobs()})
	view, _ = view.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := cmd()
	selected, ok := msg.(messages.JobSelected)
	require.True(t, ok)
	assert.Equal(t, "job-2", selected.Job.ID)
}

func TestView_Update_Enter_EmptyList(t *testing.T) {
	view := NewView(nil, &MockJobService{})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
}

func TestView_Update_Refresh(t *testing.T) {
	calls := 0
	mock := &MockJobService{
		ListFunc: func(ctx context.Context) ([]domain.Job, error) {
			calls++
			return testJobs(), nil
		},
	}
	view := NewView(nil, mock)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, 1, calls)
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil, &MockJobService{})

	view, _ = view.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.True(t, view.ready)
	assert.Equal(t, 100, view.width)
}

func TestView_View_Empty(t *testing.T) {
	view := NewView(nil, &MockJobService{})

	out := view.View()

	assert.Contains(t, out, "OCR Jobs")
	assert.Contains(t, out, "No jobs yet")
}

func TestView_View_WithJobs(t *testing.T) {
	view := NewView(nil, &MockJobService{})
	view, _ = view.Update(messages.JobsLoaded{Jobs: testJobs()})

	out := view.View()

	assert.Contains(t, out, "scan.pdf")
	assert.Contains(t, out, "photo.png (p3-7)")
	assert.Contains(t, out, "[done]")
	assert.Contains(t, out, "[running]")
	assert.Contains(t, out, "[failed]")
}

func TestView_View_WithError(t *testing.T) {
	view := NewView(nil, &MockJobService{})
	view, _ = view.Update(messages.JobsLoaded{Err: errors.New("store closed")})

	out := view.View()

	assert.Contains(t, out, "Error: store closed")
}

func TestView_View_Loading(t *testing.T) {
	view := NewView(nil, &MockJobService{})
	view.loading = true

	out := view.View()

	assert.Contains(t, out, "Loading jobs...")
}
