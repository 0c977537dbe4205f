package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/logger"
)

func TestProgressTrackerLifecycle(t *testing.T) {
	logger.ResetTail()
	tracker := NewProgressTracker("job-1", 10)

	snap := tracker.Snapshot()
	assert.Equal(t, domain.JobPending, snap.Status)
	assert.Equal(t, 0, snap.PageCurrent)
	assert.Zero(t, snap.ETA)
	assert.Zero(t, snap.Elapsed)

	tracker.Begin(25)
	tracker.PageDone(2 * time.Second)

	snap = tracker.Snapshot()
	assert.Equal(t, domain.JobRunning, snap.Status)
	assert.Equal(t, 1, snap.PageCurrent)
	assert.Equal(t, 25, snap.PageTotal)

	tracker.Finish(domain.JobDone, nil)
	snap = tracker.Snapshot()
	assert.Equal(t, domain.JobDone, snap.Status)
	assert.Empty(t, snap.Error)
}

func TestProgressTrackerETAFromRollingAverage(t *testing.T) {
	tracker := NewProgressTracker("job-1", 3)
	tracker.Begin(10)
	for i := 0; i < 3; i++ {
		tracker.PageDone(2 * time.Second)
	}

	assert.Equal(t, 14*time.Second, tracker.Snapshot().ETA)
}

func TestProgressTrackerETAWindowDropsOldPages(t *testing.T) {
	tracker := NewProgressTracker("job-1", 2)
	tracker.Begin(5)
	tracker.PageDone(10 * time.Second)
	tracker.PageDone(2 * time.Second)
	tracker.PageDone(4 * time.Second)

	// Average of the last two pages only: 3s for each of 2 remaining.
	assert.Equal(t, 6*time.Second, tracker.Snapshot().ETA)
}

func TestProgressTrackerETAZeroWhenDone(t *testing.T) {
	tracker := NewProgressTracker("job-1", 2)
	tracker.Begin(2)
	tracker.PageDone(time.Second)
	tracker.PageDone(time.Second)

	snap := tracker.Snapshot()
	assert.Equal(t, 2, snap.PageCurrent)
	assert.Zero(t, snap.ETA)
}

func TestProgressTrackerElapsedFrozenAfterFinish(t *testing.T) {
	tracker := NewProgressTracker("job-1", 2)
	tracker.Begin(1)
	tracker.Finish(domain.JobDone, nil)

	first := tracker.Snapshot().Elapsed
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, first, tracker.Snapshot().Elapsed)
}

func TestProgressTrackerFailureMessage(t *testing.T) {
	tracker := NewProgressTracker("job-1", 2)
	tracker.Begin(3)
	tracker.Finish(domain.JobFailed, errors.New("input vanished"))

	snap := tracker.Snapshot()
	assert.Equal(t, domain.JobFailed, snap.Status)
	assert.Equal(t, "input vanished", snap.Error)
}

func TestProgressTrackerCancel(t *testing.T) {
	tracker := NewProgressTracker("job-1", 2)
	assert.False(t, tracker.Cancelled())

	tracker.Cancel()
	tracker.Cancel() // second call is a no-op

	assert.True(t, tracker.Cancelled())
	select {
	case <-tracker.CancelRequested():
	default:
		t.Fatal("cancel channel should be closed")
	}
}

func TestProgressTrackerLogTail(t *testing.T) {
	logger.ResetTail()
	logger.Info("warming up")
	tracker := NewProgressTracker("job-1", 2)

	tail := tracker.Snapshot().LogTail
	require.NotEmpty(t, tail)
	assert.Contains(t, tail[len(tail)-1], "warming up")
}
