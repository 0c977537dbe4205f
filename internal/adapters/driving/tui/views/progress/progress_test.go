package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/messages"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/styles"
	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// MockJobService implements driving.JobService for testing.
type MockJobService struct {
	StatusFunc func(ctx context.Context, jobID string) (*domain.Progress, error)
	ResultFunc func(ctx context.Context, jobID string) (*domain.JobResult, error)
	CancelFunc func(ctx context.Context, jobID string) error
}

func (m *MockJobService) Start(
	ctx context.Context, inputPath string, opts domain.JobOptions,
) (*domain.Job, error) {
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
	return nil, nil
}

func (m *MockJobService) Delete(ctx context.Context, jobID string) error {
	return nil
}

func runningProgress() *domain.Progress {
	return &domain.Progress{
		JobID:       "job-1",
		Status:      domain.JobRunning,
		PageCurrent: 3,
		PageTotal:   10,
		Elapsed:     90 * time.Second,
		ETA:         7 * time.Minute,
		LogTail:     []string{"Page 2 done", "Page 3 done"},
	}
}

func TestNewView(t *testing.T) {
	view := NewView(styles.DefaultStyles(), &MockJobService{})

	require.NotNil(t, view)
	assert.Nil(t, view.Progress())
	assert.Nil(t, view.Result())
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil, &MockJobService{})

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
}

func TestView_SetJob_ResetsState(t *testing.T) {
	view := NewView(nil, &MockJobService{})
	view.progress = runningProgress()
	view.err = errors.New("stale")
	view.cancelling = true

	cmd := view.SetJob(domain.Job{ID: "job-2", InputPath: "/input/scan.pdf"})

	require.NotNil(t, cmd)
	assert.Equal(t, "job-2", view.Job().ID)
	assert.Nil(t, view.Progress())
	assert.Nil(t, view.Result())
	assert.NoError(t, view.Err())
	assert.False(t, view.cancelling)
}

func TestView_PollProgress(t *testing.T) {
	mock := &MockJobService{
		StatusFunc: func(ctx context.Context, jobID string) (*domain.Progress, error) {
			assert.Equal(t, "job-1", jobID)
			return runningProgress(), nil
		},
	}
	view := NewView(nil, mock)
	view.job = domain.Job{ID: "job-1"}

	msg := view.pollProgress()()

	loaded, ok := msg.(messages.ProgressLoaded)
	require.True(t, ok)
	assert.Equal(t, "job-1", loaded.JobID)
	assert.Equal(t, 3, loaded.Progress.PageCurrent)
}

func TestView_Update_ProgressLoaded_Running(t *testing.T) {
	view := NewView(nil, &MockJobService{})
	view.job = domain.Job{ID: "job-1"}

	view, cmd := view.Update(messages.ProgressLoaded{
		JobID:    "job-1",
		Progress: runningProgress(),
	})

	require.NotNil(t, view.Progress())
	assert.Equal(t, 3, view.Progress().PageCurrent)
	// Next poll is scheduled while the job runs
	assert.NotNil(t, cmd)
}

func TestView_Update_ProgressLoaded_Terminal(t *testing.T) {
	result := &domain.JobResult{
		JobID:  "job-1",
		Status: domain.JobDone,
		Outputs: map[domain.ExportFormat]string{
			domain.FormatMarkdown: "/output/scan/scan.md",
		},
	}
	mock := &MockJobService{
		ResultFunc: func(ctx context.Context, jobID string) (*domain.JobResult, error) {
			return result, nil
		},
	}
	view := NewView(nil, mock)
	view.job = domain.Job{ID: "job-1"}

	done := runningProgress()
	done.Status = domain.JobDone
	done.PageCurrent = 10

	_, cmd := view.Update(messages.ProgressLoaded{JobID: "job-1", Progress: done})
	require.NotNil(t, cmd)

	msg := cmd()
	loaded, ok := msg.(messages.ResultLoaded)
	require.True(t, ok)
	assert.Equal(t, result, loaded.Result)
}

func TestView_Update_ProgressLoaded_StaleJobIgnored(t *testing.T) {
	view := NewView(nil, &MockJobService{})
	view.job = domain.Job{ID: "job-2"}

	view, cmd := view.Update(messages.ProgressLoaded{
		JobID:    "job-1",
		Progress: runningProgress(),
	})

	assert.Nil(t, view.Progress())
	assert.Nil(t, cmd)
}

func TestView_Update_ResultLoaded(t *testing.T) {
	view := NewView(nil, &MockJobService{})
	view.job = domain.Job{ID: "job-1"}

	view, _ = view.Update(messages.ResultLoaded{
		JobID: "job-1",
		Result: &domain.JobResult{
			JobID:  "job-1",
			Status: domain.JobDone,
			Outputs: map[domain.ExportFormat]string{
				domain.FormatMarkdown: "/output/scan/scan.md",
				domain.FormatCSV:      "/output/scan/scan_tables",
			},
			PagesRecovered: 1,
		},
	})

	require.NotNil(t, view.Result())

	out := view.View()
	assert.Contains(t, out, "✓ Done")
	assert.Contains(t, out, "/output/scan/scan.md")
	assert.Contains(t, out, "/output/scan/scan_tables")
	assert.Contains(t, out, "1 pages recovered by fallback")
}

func TestView_Update_CancelKey(t *testing.T) {
	cancelled := ""
	mock := &MockJobService{
		CancelFunc: func(ctx context.Context, jobID string) error {
			cancelled = jobID
			return nil
		},
	}
	view := NewView(nil, mock)
	view.job = domain.Job{ID: "job-1"}
	view.progress = runningProgress()

	view, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	require.NotNil(t, cmd)
	assert.True(t, view.cancelling)

	msg := cmd()
	delivered, ok := msg.(messages.JobCancelled)
	require.True(t, ok)
	assert.NoError(t, delivered.Err)
	assert.Equal(t, "job-1", cancelled)
}

func TestView_Update_CancelKey_AfterResult(t *testing.T) {
	view := NewView(nil, &MockJobService{})
	view.job = domain.Job{ID: "job-1"}
	view.result = &domain.JobResult{JobID: "job-1", Status: domain.JobDone}

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})

	assert.Nil(t, cmd)
}

func TestView_Update_JobCancelled_Rejected(t *testing.T) {
	view := NewView(nil, &MockJobService{})
	view.job = domain.Job{ID: "job-1"}
	view.cancelling = true

	view, _ = view.Update(messages.JobCancelled{JobID: "job-1", Err: domain.ErrJobFinished})

	assert.False(t, view.cancelling)
	assert.ErrorIs(t, view.Err(), domain.ErrJobFinished)
}

func TestView_View_Connecting(t *testing.T) {
	view := NewView(nil, &MockJobService{})
	view.job = domain.Job{ID: "job-1", InputPath: "/input/scan.pdf"}

	out := view.View()

	assert.Contains(t, out, "scan.pdf")
	assert.Contains(t, out, "Connecting...")
}

func TestView_View_Running(t *testing.T) {
	view := NewView(nil, &MockJobService{})
	view.job = domain.Job{ID: "job-1", InputPath: "/input/scan.pdf", Label: "p3-7"}
	view.progress = runningProgress()

	out := view.View()

	assert.Contains(t, out, "scan.pdf (p3-7)")
	assert.Contains(t, out, "Page 3 / 10")
	assert.Contains(t, out, "elapsed 1m30s")
	assert.Contains(t, out, "eta 7m0s")
	assert.Contains(t, out, "Page 2 done")
	assert.Contains(t, out, "[c] cancel")
}

func TestView_View_Cancelling(t *testing.T) {
	view := NewView(nil, &MockJobService{})
	view.job = domain.Job{ID: "job-1", InputPath: "/input/scan.pdf"}
	view.progress = runningProgress()
	view.cancelling = true

	out := view.View()

	assert.Contains(t, out, "Cancelling at the next page boundary")
}

func TestView_Percent(t *testing.T) {
	view := NewView(nil, &MockJobService{})

	assert.Zero(t, view.percent())

	view.progress = runningProgress()
	assert.InDelta(t, 0.3, view.percent(), 0.001)

	view.progress.PageTotal = 0
	assert.Zero(t, view.percent())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1m30s", formatDuration(90*time.Second))
	assert.Equal(t, "5s", formatDuration(5200*time.Millisecond))
	assert.Equal(t, "0s", formatDuration(0))
}
