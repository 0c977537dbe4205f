// Package watch implements inbox mode: files dropped into a watched
// directory are queued and run through the pipeline one at a time.
// Files the pipeline rejects as unsupported are skipped quietly, so
// stray artifacts in the inbox do not stop the watcher.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driving"
	"github.com/ricopen19/OCR-to-doc/internal/logger"
)

const (
	// DefaultSettle is how long a file must stop growing before it is
	// considered fully copied.
	DefaultSettle = 2 * time.Second

	// DefaultPoll is the progress polling interval while a queued job
	// runs.
	DefaultPoll = 800 * time.Millisecond

	queueSize = 64
)

// Watcher drives the pipeline from a directory. One job runs at a
// time; further drops wait in the queue.
type Watcher struct {
	jobs   driving.JobService
	dir    string
	opts   domain.JobOptions
	settle time.Duration
	poll   time.Duration

	mu      sync.Mutex
	pending map[string]bool
}

// NewWatcher creates a watcher for dir. Every queued file starts a job
// with the given options.
func NewWatcher(jobs driving.JobService, dir string, opts domain.JobOptions) (*Watcher, error) {
	if jobs == nil {
		return nil, fmt.Errorf("job service is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("inbox directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("inbox path %s is not a directory", dir)
	}
	return &Watcher{
		jobs:    jobs,
		dir:     dir,
		opts:    opts,
		settle:  DefaultSettle,
		poll:    DefaultPoll,
		pending: make(map[string]bool),
	}, nil
}

// Run watches the inbox until the context is cancelled. Files already
// present at startup are queued first.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	queue := make(chan string, queueSize)
	w.queueExisting(queue)
	go w.collect(ctx, fsw, queue)

	logger.Info("Watching %s", w.dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-queue:
			w.process(ctx, path)
			w.forget(path)
		}
	}
}

// queueExisting enqueues regular files already sitting in the inbox.
func (w *Watcher) queueExisting(queue chan<- string) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("Reading inbox: %v", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || hidden(entry.Name()) {
			continue
		}
		w.enqueue(queue, filepath.Join(w.dir, entry.Name()))
	}
}

// collect drains filesystem events and feeds the queue. It runs
// alongside job processing so events are never dropped while a job is
// busy.
func (w *Watcher) collect(ctx context.Context, fsw *fsnotify.Watcher, queue chan<- string) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
				continue
			}
			if hidden(filepath.Base(ev.Name)) {
				continue
			}
			info, err := os.Stat(ev.Name)
			if err != nil || info.IsDir() {
				continue
			}
			w.enqueue(queue, ev.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error: %v", err)
		}
	}
}

// enqueue adds a path once; repeat events for a queued file are
// ignored until its job has run.
func (w *Watcher) enqueue(queue chan<- string, path string) {
	w.mu.Lock()
	if w.pending[path] {
		w.mu.Unlock()
		return
	}
	w.pending[path] = true
	w.mu.Unlock()

	select {
	case queue <- path:
	default:
		logger.Warn("Inbox queue full, dropping %s", filepath.Base(path))
		w.forget(path)
	}
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	w.mu.Unlock()
}

// process waits for the file to settle, starts its job, and polls
// until the job reaches a terminal state. Failures are logged, never
// returned; the inbox keeps running.
func (w *Watcher) process(ctx context.Context, path string) {
	if err := w.waitSettled(ctx, path); err != nil {
		if ctx.Err() == nil {
			logger.Warn("Skipping %s: %v", filepath.Base(path), err)
		}
		return
	}

	job, err := w.jobs.Start(ctx, path, w.opts)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUnsupportedInput), errors.Is(err, domain.ErrInvalidInput):
		logger.Debug("Ignoring %s: %v", filepath.Base(path), err)
		return
	default:
		logger.Warn("Starting job for %s: %v", filepath.Base(path), err)
		return
	}

	logger.Info("Job %s started for %s", job.ID, filepath.Base(path))
	w.await(ctx, job.ID)
}

// await polls the job until it finishes.
func (w *Watcher) await(ctx context.Context, jobID string) {
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			progress, err := w.jobs.Status(ctx, jobID)
			if err != nil {
				logger.Warn("Polling job %s: %v", jobID, err)
				return
			}
			if !progress.Status.Terminal() {
				continue
			}
			if progress.Status == domain.JobDone {
				logger.Info("Job %s done (%d pages)", jobID, progress.PageTotal)
			} else {
				logger.Warn("Job %s %s: %s", jobID, progress.Status, progress.Error)
			}
			return
		}
	}
}

// waitSettled blocks until the file size stops changing, so jobs never
// start on half-copied files.
func (w *Watcher) waitSettled(ctx context.Context, path string) error {
	var last int64 = -1
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.settle):
		}

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("file disappeared: %w", err)
		}
		if info.Size() == last && info.Size() > 0 {
			return nil
		}
		last = info.Size()
	}
}

// hidden reports whether the name is a dotfile.
func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
