package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driving"
	"github.com/ricopen19/OCR-to-doc/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.JobService = (*Pipeline)(nil)

// previewLimit bounds the result excerpt returned to callers.
const previewLimit = 500

// Pipeline implements the job lifecycle: validate the input, create
// the job, process pages in the background, merge, export, and record
// the outcome. One job runs at a time; the active job's tracker is the
// authority for its progress, the store serves historical jobs.
type Pipeline struct {
	inspector  driven.InputInspector
	store      driven.JobStore
	scheduler  *Scheduler
	builder    *DocumentBuilder
	exports    *ExportRunner
	outputRoot string

	mu     sync.Mutex
	active *activeJob
	wg     sync.WaitGroup
}

type activeJob struct {
	id      string
	tracker *ProgressTracker
	cancel  context.CancelFunc
}

// NewPipeline creates the job service. outputRoot is the directory
// workspaces are created under when a job does not override it.
func NewPipeline(
	inspector driven.InputInspector,
	store driven.JobStore,
	scheduler *Scheduler,
	builder *DocumentBuilder,
	exports *ExportRunner,
	outputRoot string,
) *Pipeline {
	return &Pipeline{
		inspector:  inspector,
		store:      store,
		scheduler:  scheduler,
		builder:    builder,
		exports:    exports,
		outputRoot: outputRoot,
	}
}

// Start validates the input, creates the job, and begins processing it
// in the background.
func (p *Pipeline) Start(ctx context.Context, inputPath string, opts domain.JobOptions) (*domain.Job, error) {
	opts = opts.Normalize()

	info, err := p.inspector.Inspect(ctx, inputPath)
	if err != nil {
		return nil, err
	}
	rangeStart, rangeEnd, err := resolveRange(opts.PageStart, opts.PageEnd, info.Pages)
	if err != nil {
		return nil, err
	}

	label := opts.Label
	if label == "" && (opts.PageStart > 0 || opts.PageEnd > 0) {
		label = domain.RangeLabel(rangeStart, rangeEnd)
	}

	root := opts.OutputDir
	if root == "" {
		root = p.outputRoot
	}
	ws := domain.NewWorkspace(root, inputPath, label)
	if err := os.MkdirAll(ws.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	p.mu.Lock()
	if p.active != nil && !p.active.tracker.Status().Terminal() {
		p.mu.Unlock()
		return nil, domain.ErrJobRunning
	}

	job := &domain.Job{
		ID:        uuid.NewString(),
		InputPath: inputPath,
		Label:     label,
		Options:   opts,
		Status:    domain.JobPending,
		OutputDir: ws.Dir,
		CreatedAt: time.Now(),
	}
	if err := p.store.CreateJob(ctx, job); err != nil {
		p.mu.Unlock()
		return nil, fmt.Errorf("create job: %w", err)
	}

	logger.ResetTail()
	logger.Section("OCR " + filepath.Base(inputPath))
	logger.Info("Job %s: %s input, pages %d-%d, mode %s on %s",
		job.ID, info.Kind, rangeStart, rangeEnd, opts.Mode, opts.Device)

	tracker := NewProgressTracker(job.ID, opts.ChunkSize)
	jobCtx, cancel := context.WithCancel(context.Background())
	p.active = &activeJob{id: job.ID, tracker: tracker, cancel: cancel}
	p.mu.Unlock()

	p.publishProgress(tracker)

	p.wg.Add(1)
	go p.process(jobCtx, job, ws, tracker)

	created := *job
	return &created, nil
}

// process runs one job to its terminal state. It owns the job record
// for the duration; nothing else writes it.
func (p *Pipeline) process(ctx context.Context, job *domain.Job, ws domain.Workspace, tracker *ProgressTracker) {
	defer p.wg.Done()

	job.Status = domain.JobRunning
	job.StartedAt = time.Now()
	p.updateJob(job)

	pages, err := p.scheduler.Run(ctx, job, ws, tracker)
	status := domain.JobDone
	switch {
	case errors.Is(err, domain.ErrCanceled):
		status = domain.JobCanceled
	case err != nil:
		p.fail(job, tracker, err)
		return
	}

	// A cancelled job still gets its completed pages merged and
	// exported.
	doc := p.builder.BuildDocument(ws.Stem, pages, job.Options.TableMode)

	outputs, exportErr := p.exports.Run(ctx, doc, ws, job.Options.Formats)
	if exportErr != nil {
		logger.Warn("Job %s: some exports failed: %v", job.ID, exportErr)
	}

	result := &domain.JobResult{
		JobID:          job.ID,
		Status:         status,
		Outputs:        outputs,
		Preview:        preview(doc.Merged),
		PagesFailed:    len(doc.FailedPages()),
		PagesRecovered: len(doc.RecoveredPages()),
	}
	if err := p.store.SaveResult(context.Background(), result); err != nil {
		logger.Warn("Save result: %v", err)
	}

	job.Status = status
	job.Outputs = outputs
	job.FinishedAt = time.Now()
	if exportErr != nil {
		job.Error = exportErr.Error()
	}
	p.updateJob(job)

	tracker.Finish(status, nil)
	p.publishProgress(tracker)
	logger.Info("Job %s %s: %d pages, %d failed, %d recovered",
		job.ID, status, len(pages), result.PagesFailed, result.PagesRecovered)
}

// fail records an unrecoverable job failure.
func (p *Pipeline) fail(job *domain.Job, tracker *ProgressTracker, cause error) {
	logger.Warn("Job %s failed: %v", job.ID, cause)

	job.Status = domain.JobFailed
	job.Error = cause.Error()
	job.FinishedAt = time.Now()
	p.updateJob(job)

	tracker.Finish(domain.JobFailed, cause)
	p.publishProgress(tracker)

	res := &domain.JobResult{JobID: job.ID, Status: domain.JobFailed}
	if err := p.store.SaveResult(context.Background(), res); err != nil {
		logger.Warn("Save result: %v", err)
	}
}

// Status returns a progress snapshot for the job.
func (p *Pipeline) Status(ctx context.Context, jobID string) (*domain.Progress, error) {
	if tracker := p.trackerFor(jobID); tracker != nil {
		snap := tracker.Snapshot()
		return &snap, nil
	}

	progress, err := p.store.GetProgress(ctx, jobID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get progress: %w", err)
	}

	// Jobs that never reached processing still resolve from their
	// record.
	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &domain.Progress{JobID: job.ID, Status: job.Status, Error: job.Error}, nil
}

// Cancel requests cancellation of a running job.
func (p *Pipeline) Cancel(ctx context.Context, jobID string) error {
	if tracker := p.trackerFor(jobID); tracker != nil {
		if tracker.Status().Terminal() {
			return domain.ErrJobFinished
		}
		logger.Info("Cancellation requested for job %s", jobID)
		tracker.Cancel()
		return nil
	}

	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if job.Status.Terminal() {
		return domain.ErrJobFinished
	}

	// The record claims the job is live but no tracker exists in this
	// process: a leftover from a crashed run. Close it out directly.
	job.Status = domain.JobCanceled
	job.FinishedAt = time.Now()
	if err := p.store.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// Result returns the outcome of a terminal job.
func (p *Pipeline) Result(ctx context.Context, jobID string) (*domain.JobResult, error) {
	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	if !job.Status.Terminal() {
		return nil, domain.ErrJobNotTerminal
	}

	res, err := p.store.GetResult(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.JobResult{JobID: job.ID, Status: job.Status, Outputs: job.Outputs}, nil
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	return res, nil
}

// List returns all known jobs, newest first.
func (p *Pipeline) List(ctx context.Context) ([]domain.Job, error) {
	jobs, err := p.store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Delete removes a terminal job from the store. Workspace files on
// disk are left alone.
func (p *Pipeline) Delete(ctx context.Context, jobID string) error {
	if tracker := p.trackerFor(jobID); tracker != nil && !tracker.Status().Terminal() {
		return domain.ErrJobRunning
	}

	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if !job.Status.Terminal() {
		return domain.ErrJobRunning
	}
	if err := p.store.DeleteJob(ctx, jobID); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

// Close cancels any in-flight job and waits for it to wind down.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.tracker.Cancel()
		active.cancel()
	}
	p.wg.Wait()
	return nil
}

// trackerFor returns the active job's tracker when the ID matches.
func (p *Pipeline) trackerFor(jobID string) *ProgressTracker {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil && p.active.id == jobID {
		return p.active.tracker
	}
	return nil
}

func (p *Pipeline) updateJob(job *domain.Job) {
	if err := p.store.UpdateJob(context.Background(), job); err != nil {
		logger.Warn("Update job %s: %v", job.ID, err)
	}
}

func (p *Pipeline) publishProgress(tracker *ProgressTracker) {
	if err := p.store.SaveProgress(context.Background(), tracker.Snapshot()); err != nil {
		logger.Warn("Save progress: %v", err)
	}
}

// preview cuts the merged document down to a short excerpt.
func preview(text string) string {
	count := 0
	for i := range text {
		if count == previewLimit {
			return text[:i] + "…"
		}
		count++
	}
	return text
}
