package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricopen19/OCR-to-doc/internal/adapters/driven/storage/memory"
	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
	"github.com/ricopen19/OCR-to-doc/internal/logger"
)

// --- Mock implementations for scheduler testing ---

// scriptedEngine implements driven.OCREngine with per-page behaviour.
type scriptedEngine struct {
	recognise func(in driven.PageInput) (*domain.PageResult, error)
}

func (e *scriptedEngine) Name() string                      { return "scripted" }
func (e *scriptedEngine) Available(_ context.Context) error { return nil }
func (e *scriptedEngine) Recognise(_ context.Context, in driven.PageInput) (*domain.PageResult, error) {
	return e.recognise(in)
}

// fakeRasterizer hands out fakeSessions with a fixed page count.
type fakeRasterizer struct {
	pages     int
	openErr   error
	renderErr map[int]error
	session   *fakeSession
}

func (r *fakeRasterizer) Open(_ context.Context, _ string) (driven.RenderSession, error) {
	if r.openErr != nil {
		return nil, r.openErr
	}
	r.session = &fakeSession{pages: r.pages, renderErr: r.renderErr}
	return r.session, nil
}

type fakeSession struct {
	pages     int
	renderErr map[int]error
	rendered  []int
	closed    bool
}

func (s *fakeSession) PageCount() int { return s.pages }

func (s *fakeSession) RenderPage(_ context.Context, page int, dest string, _ driven.RenderOptions) (string, error) {
	if err := s.renderErr[page]; err != nil {
		return "", err
	}
	s.rendered = append(s.rendered, page)
	return dest, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// progressRecorder keeps every snapshot the scheduler publishes.
type progressRecorder struct {
	*memory.JobStore
	mu    sync.Mutex
	saves []domain.Progress
}

func newProgressRecorder() *progressRecorder {
	return &progressRecorder{JobStore: memory.NewJobStore()}
}

func (r *progressRecorder) SaveProgress(ctx context.Context, p domain.Progress) error {
	r.mu.Lock()
	r.saves = append(r.saves, p)
	r.mu.Unlock()
	return r.JobStore.SaveProgress(ctx, p)
}

// --- Helpers ---

func schedulerWorkspace(t *testing.T) domain.Workspace {
	t.Helper()
	ws := domain.NewWorkspace(t.TempDir(), "report.pdf", "")
	require.NoError(t, os.MkdirAll(ws.Dir, 0755))
	return ws
}

func schedulerJob() *domain.Job {
	opts := domain.DefaultJobOptions()
	opts.ChunkSize = 2
	return &domain.Job{ID: "job-1", InputPath: "report.pdf", Options: opts, Status: domain.JobPending}
}

func newTestScheduler(engine driven.OCREngine, rasterizer *fakeRasterizer, store driven.JobStore) *Scheduler {
	s := NewScheduler(engine, rasterizer, store)
	s.pageEvery = time.Millisecond
	return s
}

func pageEcho(in driven.PageInput) (*domain.PageResult, error) {
	return &domain.PageResult{
		Text:   fmt.Sprintf("Page %d body\n%s", in.Page, richText()),
		Engine: "scripted",
	}, nil
}

// --- Tests ---

func TestSchedulerProcessesAllPagesInOrder(t *testing.T) {
	logger.ResetTail()
	store := newProgressRecorder()
	rasterizer := &fakeRasterizer{pages: 5}
	sched := newTestScheduler(&scriptedEngine{recognise: pageEcho}, rasterizer, store)
	ws := schedulerWorkspace(t)
	job := schedulerJob()
	tracker := NewProgressTracker(job.ID, job.Options.ChunkSize)

	pages, err := sched.Run(context.Background(), job, ws, tracker)

	require.NoError(t, err)
	require.Len(t, pages, 5)
	for i, p := range pages {
		assert.Equal(t, i+1, p.Number)
		assert.Equal(t, domain.PageDone, p.Status)
		assert.Equal(t, ws.PageImage(i+1), p.ImagePath)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, rasterizer.session.rendered)
	assert.True(t, rasterizer.session.closed)

	snap := tracker.Snapshot()
	assert.Equal(t, 5, snap.PageCurrent)
	assert.Equal(t, 5, snap.PageTotal)
	assert.Equal(t, domain.JobRunning, snap.Status)

	require.Len(t, store.saves, 5)
	for i, p := range store.saves {
		assert.Equal(t, i+1, p.PageCurrent)
	}

	for n := 1; n <= 5; n++ {
		data, err := os.ReadFile(ws.PageMarkdown(n))
		require.NoError(t, err)
		assert.Contains(t, string(data), fmt.Sprintf("Page %d body", n))
	}
}

func TestSchedulerAbsorbsEngineFailures(t *testing.T) {
	engine := &scriptedEngine{recognise: func(in driven.PageInput) (*domain.PageResult, error) {
		if in.Page == 2 {
			return nil, fmt.Errorf("%w: engine crashed", domain.ErrEngineFailed)
		}
		return pageEcho(in)
	}}
	sched := newTestScheduler(engine, &fakeRasterizer{pages: 3}, memory.NewJobStore())
	job := schedulerJob()
	tracker := NewProgressTracker(job.ID, 2)

	pages, err := sched.Run(context.Background(), job, schedulerWorkspace(t), tracker)

	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, domain.PageDone, pages[0].Status)
	assert.Equal(t, domain.PageFailed, pages[1].Status)
	assert.Contains(t, pages[1].Err, "engine crashed")
	assert.Equal(t, domain.PageDone, pages[2].Status)
	assert.Equal(t, 3, tracker.Snapshot().PageCurrent)
}

func TestSchedulerAbsorbsRenderFailures(t *testing.T) {
	rasterizer := &fakeRasterizer{pages: 2, renderErr: map[int]error{1: errors.New("bad page stream")}}
	sched := newTestScheduler(&scriptedEngine{recognise: pageEcho}, rasterizer, memory.NewJobStore())
	job := schedulerJob()
	tracker := NewProgressTracker(job.ID, 2)

	pages, err := sched.Run(context.Background(), job, schedulerWorkspace(t), tracker)

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, domain.PageFailed, pages[0].Status)
	assert.Contains(t, pages[0].Err, "bad page stream")
	assert.Equal(t, domain.PageDone, pages[1].Status)
}

func TestSchedulerCancelStopsAtPageBoundary(t *testing.T) {
	var tracker *ProgressTracker
	engine := &scriptedEngine{recognise: func(in driven.PageInput) (*domain.PageResult, error) {
		if in.Page == 2 {
			tracker.Cancel()
		}
		return pageEcho(in)
	}}
	sched := newTestScheduler(engine, &fakeRasterizer{pages: 6}, memory.NewJobStore())
	job := schedulerJob()
	job.Options.RestEnabled = true
	job.Options.RestInterval = 10 * time.Second
	tracker = NewProgressTracker(job.ID, 2)

	began := time.Now()
	pages, err := sched.Run(context.Background(), job, schedulerWorkspace(t), tracker)

	require.ErrorIs(t, err, domain.ErrCanceled)
	require.Len(t, pages, 2)
	assert.Equal(t, domain.PageDone, pages[1].Status, "the in-flight page finishes before the job stops")
	assert.Equal(t, 2, tracker.Snapshot().PageCurrent)
	assert.Less(t, time.Since(began), 2*time.Second, "cancellation must cut the rest interval short")
}

func TestSchedulerHonoursPageRange(t *testing.T) {
	var seen []int
	engine := &scriptedEngine{recognise: func(in driven.PageInput) (*domain.PageResult, error) {
		seen = append(seen, in.Page)
		return pageEcho(in)
	}}
	sched := newTestScheduler(engine, &fakeRasterizer{pages: 3}, memory.NewJobStore())
	job := schedulerJob()
	job.Options.PageStart = 2
	job.Options.PageEnd = 99
	tracker := NewProgressTracker(job.ID, 2)

	pages, err := sched.Run(context.Background(), job, schedulerWorkspace(t), tracker)

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, []int{2, 3}, seen)
	assert.Equal(t, 2, tracker.Snapshot().PageTotal)
}

func TestSchedulerRejectsRangeBeyondDocument(t *testing.T) {
	sched := newTestScheduler(&scriptedEngine{recognise: pageEcho}, &fakeRasterizer{pages: 3}, memory.NewJobStore())
	job := schedulerJob()
	job.Options.PageStart = 7
	tracker := NewProgressTracker(job.ID, 2)

	_, err := sched.Run(context.Background(), job, schedulerWorkspace(t), tracker)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSchedulerMarksRecoveredPages(t *testing.T) {
	engine := &scriptedEngine{recognise: func(in driven.PageInput) (*domain.PageResult, error) {
		res, _ := pageEcho(in)
		res.Recovered = in.Page == 2
		return res, nil
	}}
	sched := newTestScheduler(engine, &fakeRasterizer{pages: 2}, memory.NewJobStore())
	job := schedulerJob()
	tracker := NewProgressTracker(job.ID, 2)

	pages, err := sched.Run(context.Background(), job, schedulerWorkspace(t), tracker)

	require.NoError(t, err)
	assert.Equal(t, domain.PageDone, pages[0].Status)
	assert.Equal(t, domain.PageRecovered, pages[1].Status)
}

func TestSchedulerRestsBetweenChunks(t *testing.T) {
	sched := newTestScheduler(&scriptedEngine{recognise: pageEcho}, &fakeRasterizer{pages: 4}, memory.NewJobStore())
	job := schedulerJob()
	job.Options.RestEnabled = true
	job.Options.RestInterval = 50 * time.Millisecond
	tracker := NewProgressTracker(job.ID, 2)

	began := time.Now()
	_, err := sched.Run(context.Background(), job, schedulerWorkspace(t), tracker)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(began), 50*time.Millisecond)
}

func TestResolveRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		count      int
		wantStart  int
		wantEnd    int
		wantErr    bool
	}{
		{name: "defaults to full document", count: 10, wantStart: 1, wantEnd: 10},
		{name: "explicit range", start: 3, end: 7, count: 10, wantStart: 3, wantEnd: 7},
		{name: "end clamped to document", start: 8, end: 99, count: 10, wantStart: 8, wantEnd: 10},
		{name: "start beyond document", start: 11, count: 10, wantErr: true},
		{name: "inverted range", start: 7, end: 3, count: 10, wantErr: true},
		{name: "empty document", count: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := resolveRange(tt.start, tt.end, tt.count)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}
