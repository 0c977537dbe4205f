package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricopen19/OCR-to-doc/internal/adapters/driven/storage/memory"
	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
	"github.com/ricopen19/OCR-to-doc/internal/normalisers/markdown"
)

// fakeInspector implements driven.InputInspector for testing.
type fakeInspector struct {
	info driven.InputInfo
	err  error
}

func (f *fakeInspector) Inspect(_ context.Context, path string) (*driven.InputInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	info := f.info
	info.Path = path
	return &info, nil
}

type pipelineFixture struct {
	pipeline  *Pipeline
	store     *memory.JobStore
	inspector *fakeInspector
	engine    *scriptedEngine
	raster    *fakeRasterizer
	md        *stubExporter
	root      string
}

func newPipelineFixture(t *testing.T, pages int) *pipelineFixture {
	t.Helper()

	f := &pipelineFixture{
		store:     memory.NewJobStore(),
		inspector: &fakeInspector{info: driven.InputInfo{Kind: driven.InputPDF, Pages: pages}},
		engine:    &scriptedEngine{recognise: pageEcho},
		raster:    &fakeRasterizer{pages: pages},
		md:        &stubExporter{format: domain.FormatMarkdown},
		root:      t.TempDir(),
	}

	sched := NewScheduler(f.engine, f.raster, f.store)
	sched.pageEvery = time.Millisecond

	f.pipeline = NewPipeline(
		f.inspector,
		f.store,
		sched,
		NewDocumentBuilder(markdown.New()),
		NewExportRunner(f.md),
		f.root,
	)
	t.Cleanup(func() { _ = f.pipeline.Close() })
	return f
}

func waitForTerminal(t *testing.T, p *Pipeline, jobID string) *domain.Progress {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := p.Status(context.Background(), jobID)
		require.NoError(t, err)
		if snap.Status.Terminal() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal state in time")
	return nil
}

func TestPipelineRunsJobToCompletion(t *testing.T) {
	f := newPipelineFixture(t, 25)

	job, err := f.pipeline.Start(context.Background(), "report.pdf", domain.DefaultJobOptions())
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	assert.Equal(t, filepath.Join(f.root, "report"), job.OutputDir)

	snap := waitForTerminal(t, f.pipeline, job.ID)
	assert.Equal(t, domain.JobDone, snap.Status)
	assert.Equal(t, 25, snap.PageCurrent)
	assert.Equal(t, 25, snap.PageTotal)

	res, err := f.pipeline.Result(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobDone, res.Status)
	assert.Equal(t, 0, res.PagesFailed)
	assert.Contains(t, res.Outputs, domain.FormatMarkdown)
	assert.Contains(t, res.Preview, "# Page 1")

	// Every page appears exactly once in the merged document.
	require.NotNil(t, f.md.doc)
	require.Len(t, f.md.doc.Pages, 25)
	seen := make(map[int]bool)
	for _, p := range f.md.doc.Pages {
		assert.False(t, seen[p.Number], "page %d appears twice", p.Number)
		seen[p.Number] = true
	}

	stored, err := f.store.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobDone, stored.Status)
	assert.False(t, stored.FinishedAt.IsZero())
}

func TestPipelineSingleActiveJob(t *testing.T) {
	f := newPipelineFixture(t, 5)
	f.engine.recognise = func(in driven.PageInput) (*domain.PageResult, error) {
		time.Sleep(20 * time.Millisecond)
		return pageEcho(in)
	}

	job, err := f.pipeline.Start(context.Background(), "report.pdf", domain.DefaultJobOptions())
	require.NoError(t, err)

	_, err = f.pipeline.Start(context.Background(), "other.pdf", domain.DefaultJobOptions())
	assert.ErrorIs(t, err, domain.ErrJobRunning)

	require.NoError(t, f.pipeline.Cancel(context.Background(), job.ID))
	waitForTerminal(t, f.pipeline, job.ID)

	// A terminal job frees the slot.
	second, err := f.pipeline.Start(context.Background(), "other.pdf", domain.DefaultJobOptions())
	require.NoError(t, err)
	waitForTerminal(t, f.pipeline, second.ID)
}

func TestPipelineRejectsInvalidInput(t *testing.T) {
	f := newPipelineFixture(t, 5)
	f.inspector.err = fmt.Errorf("%w: no such file", domain.ErrInvalidInput)

	_, err := f.pipeline.Start(context.Background(), "missing.pdf", domain.DefaultJobOptions())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	jobs, err := f.pipeline.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs, "no job may exist for a rejected input")
}

func TestPipelineRejectsRangeBeyondInput(t *testing.T) {
	f := newPipelineFixture(t, 5)
	opts := domain.DefaultJobOptions()
	opts.PageStart = 9

	_, err := f.pipeline.Start(context.Background(), "report.pdf", opts)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPipelineRangeLabelledWorkspace(t *testing.T) {
	f := newPipelineFixture(t, 5)
	opts := domain.DefaultJobOptions()
	opts.PageStart, opts.PageEnd = 2, 3

	job, err := f.pipeline.Start(context.Background(), "report.pdf", opts)
	require.NoError(t, err)
	assert.Equal(t, "p2-3", job.Label)
	assert.Equal(t, filepath.Join(f.root, "report_p2-3"), job.OutputDir)

	snap := waitForTerminal(t, f.pipeline, job.ID)
	assert.Equal(t, domain.JobDone, snap.Status)
	assert.Equal(t, 2, snap.PageTotal)
}

func TestPipelineCancelMidJob(t *testing.T) {
	f := newPipelineFixture(t, 10)
	release := make(chan struct{})
	f.engine.recognise = func(in driven.PageInput) (*domain.PageResult, error) {
		if in.Page == 2 {
			<-release
		}
		return pageEcho(in)
	}

	job, err := f.pipeline.Start(context.Background(), "report.pdf", domain.DefaultJobOptions())
	require.NoError(t, err)

	require.NoError(t, f.pipeline.Cancel(context.Background(), job.ID))
	close(release)

	snap := waitForTerminal(t, f.pipeline, job.ID)
	assert.Equal(t, domain.JobCanceled, snap.Status)
	assert.Less(t, snap.PageCurrent, 10)

	res, err := f.pipeline.Result(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCanceled, res.Status)

	assert.ErrorIs(t, f.pipeline.Cancel(context.Background(), job.ID), domain.ErrJobFinished)
}

func TestPipelineResultAndDeleteGuards(t *testing.T) {
	f := newPipelineFixture(t, 3)
	f.engine.recognise = func(in driven.PageInput) (*domain.PageResult, error) {
		time.Sleep(15 * time.Millisecond)
		return pageEcho(in)
	}
	ctx := context.Background()

	job, err := f.pipeline.Start(ctx, "report.pdf", domain.DefaultJobOptions())
	require.NoError(t, err)

	_, err = f.pipeline.Result(ctx, job.ID)
	assert.ErrorIs(t, err, domain.ErrJobNotTerminal)
	assert.ErrorIs(t, f.pipeline.Delete(ctx, job.ID), domain.ErrJobRunning)

	waitForTerminal(t, f.pipeline, job.ID)

	require.NoError(t, f.pipeline.Delete(ctx, job.ID))
	jobs, err := f.pipeline.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestPipelineFailsWhenRasterizerCannotOpen(t *testing.T) {
	f := newPipelineFixture(t, 3)
	f.raster.openErr = errors.New("encrypted pdf")

	job, err := f.pipeline.Start(context.Background(), "report.pdf", domain.DefaultJobOptions())
	require.NoError(t, err, "inspection passed; the failure surfaces during processing")

	snap := waitForTerminal(t, f.pipeline, job.ID)
	assert.Equal(t, domain.JobFailed, snap.Status)
	assert.Contains(t, snap.Error, "encrypted pdf")

	res, err := f.pipeline.Result(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, res.Status)
	assert.Empty(t, res.Outputs)
}

func TestPipelineStatusUnknownJob(t *testing.T) {
	f := newPipelineFixture(t, 2)

	_, err := f.pipeline.Status(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPipelineCancelStaleRecord(t *testing.T) {
	f := newPipelineFixture(t, 2)
	ctx := context.Background()
	require.NoError(t, f.store.CreateJob(ctx, &domain.Job{ID: "stale", Status: domain.JobRunning}))

	require.NoError(t, f.pipeline.Cancel(ctx, "stale"))

	job, err := f.store.GetJob(ctx, "stale")
	require.NoError(t, err)
	assert.Equal(t, domain.JobCanceled, job.Status)
}
