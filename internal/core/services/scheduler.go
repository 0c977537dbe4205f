package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
	"github.com/ricopen19/OCR-to-doc/internal/logger"
)

// pageInterval is the minimum spacing between consecutive engine
// invocations. OCR dominates page time on real documents; the limiter
// only stops bursts on trivial pages.
const pageInterval = time.Second

// Scheduler drives page processing for one job: it partitions the
// page range into chunks, paces engine invocations, records per-page
// outcomes, and keeps the progress snapshot current. Pages run
// strictly one at a time; the external engine cannot share device
// state across concurrent calls.
type Scheduler struct {
	engine     driven.OCREngine
	rasterizer driven.Rasterizer
	store      driven.JobStore

	pageEvery time.Duration
}

// NewScheduler creates a scheduler over the given engine chain,
// rasterizer, and job store.
func NewScheduler(engine driven.OCREngine, rasterizer driven.Rasterizer, store driven.JobStore) *Scheduler {
	return &Scheduler{
		engine:     engine,
		rasterizer: rasterizer,
		store:      store,
		pageEvery:  pageInterval,
	}
}

// Run processes the job's page range and returns every page in order.
// Per-page failures become failed page entries; Run itself fails only
// on unrecoverable conditions (unreadable input, bad page range) or
// cancellation. On cancellation the pages completed so far are
// returned alongside domain.ErrCanceled so the caller can still merge
// and export them.
func (s *Scheduler) Run(ctx context.Context, job *domain.Job, ws domain.Workspace, tracker *ProgressTracker) ([]*domain.Page, error) {
	session, err := s.rasterizer.Open(ctx, job.InputPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer session.Close()

	start, end, err := resolveRange(job.Options.PageStart, job.Options.PageEnd, session.PageCount())
	if err != nil {
		return nil, err
	}

	total := end - start + 1
	chunks := domain.PartitionChunks(start, end, job.Options.ChunkSize)
	tracker.Begin(total)
	logger.Info("Processing pages %d-%d in %d chunks of up to %d", start, end, len(chunks), job.Options.ChunkSize)

	limiter := rate.NewLimiter(rate.Every(s.pageEvery), 1)
	pages := make([]*domain.Page, 0, total)

	for i, chunk := range chunks {
		if i > 0 && job.Options.RestEnabled {
			logger.Info("Resting %s before pages %d-%d", job.Options.RestInterval, chunk.Start, chunk.End)
			select {
			case <-time.After(job.Options.RestInterval):
			case <-tracker.CancelRequested():
			case <-ctx.Done():
			}
		}

		for _, num := range chunk.Pages() {
			if tracker.Cancelled() || ctx.Err() != nil {
				logger.Info("Cancelled after %d of %d pages", len(pages), total)
				return pages, domain.ErrCanceled
			}
			if err := limiter.Wait(ctx); err != nil {
				return pages, domain.ErrCanceled
			}

			began := time.Now()
			page := s.processPage(ctx, num, job, ws, session)
			pages = append(pages, page)
			tracker.PageDone(time.Since(began))

			if page.Status == domain.PageFailed {
				logger.Warn("Page %d failed: %s", num, page.Err)
			} else {
				logger.Info("Page %d done (%d/%d)", num, len(pages), total)
			}
			s.publishProgress(ctx, tracker)
		}
	}

	return pages, nil
}

// processPage renders one page and runs it through the engine chain.
// Failures are absorbed into the returned page, never propagated.
func (s *Scheduler) processPage(ctx context.Context, num int, job *domain.Job, ws domain.Workspace, session driven.RenderSession) *domain.Page {
	page := &domain.Page{Number: num, Status: domain.PagePending}

	imagePath, err := session.RenderPage(ctx, num, ws.PageImage(num), driven.RenderOptions{
		DPI:  job.Options.DPI,
		Crop: job.Options.Crop,
	})
	if err != nil {
		logger.Warn("Page %d: render failed: %v", num, err)
		page.Status = domain.PageFailed
		page.Err = err.Error()
		return page
	}
	page.ImagePath = imagePath

	res, err := s.engine.Recognise(ctx, driven.PageInput{
		Page:      num,
		ImagePath: imagePath,
		Workspace: ws,
		Options:   job.Options,
	})
	if err != nil {
		page.Status = domain.PageFailed
		page.Err = err.Error()
		return page
	}

	page.Result = res
	page.Status = domain.PageDone
	if res.Recovered {
		page.Status = domain.PageRecovered
	}
	s.writePageMarkdown(ws, page)
	return page
}

// writePageMarkdown stores the raw per-page text before any merge-time
// normalisation, so individual pages can be inspected or reprocessed.
func (s *Scheduler) writePageMarkdown(ws domain.Workspace, page *domain.Page) {
	if page.Result == nil || page.Result.Text == "" {
		return
	}
	if err := os.WriteFile(ws.PageMarkdown(page.Number), []byte(page.Result.Text+"\n"), 0644); err != nil {
		logger.Warn("Page %d: write artifact: %v", page.Number, err)
	}
}

// publishProgress persists the latest snapshot for polling. A store
// hiccup never interrupts page processing.
func (s *Scheduler) publishProgress(ctx context.Context, tracker *ProgressTracker) {
	if err := s.store.SaveProgress(ctx, tracker.Snapshot()); err != nil {
		logger.Warn("Save progress: %v", err)
	}
}

// resolveRange bounds the requested 1-based inclusive page range to
// the document. Zero values select the full document.
func resolveRange(reqStart, reqEnd, count int) (int, int, error) {
	if count < 1 {
		return 0, 0, fmt.Errorf("%w: document has no pages", domain.ErrInvalidInput)
	}
	start, end := reqStart, reqEnd
	if start < 1 {
		start = 1
	}
	if end < 1 || end > count {
		end = count
	}
	if start > end {
		return 0, 0, fmt.Errorf("%w: page range %d-%d outside document with %d pages", domain.ErrInvalidInput, reqStart, reqEnd, count)
	}
	return start, end, nil
}
