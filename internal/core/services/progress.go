package services

import (
	"sync"
	"time"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/logger"
)

// progressTailLines is how many recent log lines ride along with each
// progress snapshot.
const progressTailLines = 10

// ProgressTracker is the mutable per-job state behind the poll
// surface. The scheduler is its only writer; any goroutine may take
// snapshots concurrently and always receives a copy. ETA derives from
// a rolling average of the most recent per-page durations, windowed to
// one chunk.
type ProgressTracker struct {
	mu        sync.Mutex
	jobID     string
	status    domain.JobStatus
	current   int
	total     int
	started   time.Time
	finished  time.Time
	durations []time.Duration
	window    int
	errMsg    string
	cancelled bool
	cancelCh  chan struct{}
}

// NewProgressTracker creates a tracker for a pending job. window is
// the number of recent page durations the ETA averages over, normally
// the chunk size.
func NewProgressTracker(jobID string, window int) *ProgressTracker {
	if window < 1 {
		window = 1
	}
	return &ProgressTracker{
		jobID:    jobID,
		status:   domain.JobPending,
		window:   window,
		cancelCh: make(chan struct{}),
	}
}

// Begin marks the job running over total pages.
func (t *ProgressTracker) Begin(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = domain.JobRunning
	t.total = total
	t.started = time.Now()
}

// PageDone records one completed page and its processing time.
func (t *ProgressTracker) PageDone(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current++
	t.durations = append(t.durations, d)
	if len(t.durations) > t.window {
		t.durations = t.durations[len(t.durations)-t.window:]
	}
}

// Finish records the terminal status and, for failures, the cause.
func (t *ProgressTracker) Finish(status domain.JobStatus, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
	t.finished = time.Now()
	if err != nil {
		t.errMsg = err.Error()
	}
}

// Cancel flags the job for cooperative cancellation. The scheduler
// honours it at the next page boundary. Safe to call more than once.
func (t *ProgressTracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.cancelled {
		t.cancelled = true
		close(t.cancelCh)
	}
}

// Cancelled reports whether cancellation was requested.
func (t *ProgressTracker) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// CancelRequested returns a channel closed on the first Cancel call.
func (t *ProgressTracker) CancelRequested() <-chan struct{} {
	return t.cancelCh
}

// Status returns the current lifecycle state.
func (t *ProgressTracker) Status() domain.JobStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Snapshot returns a copy of the current progress. PageCurrent never
// decreases across successive snapshots.
func (t *ProgressTracker) Snapshot() domain.Progress {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := domain.Progress{
		JobID:       t.jobID,
		Status:      t.status,
		PageCurrent: t.current,
		PageTotal:   t.total,
		Error:       t.errMsg,
		LogTail:     logger.Tail(progressTailLines),
	}
	switch {
	case t.started.IsZero():
	case t.finished.IsZero():
		p.Elapsed = time.Since(t.started)
	default:
		p.Elapsed = t.finished.Sub(t.started)
	}
	if n := len(t.durations); n > 0 && t.current < t.total {
		var sum time.Duration
		for _, d := range t.durations {
			sum += d
		}
		p.ETA = sum / time.Duration(n) * time.Duration(t.total-t.current)
	}
	return p
}
