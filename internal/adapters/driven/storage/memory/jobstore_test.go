package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

func TestJobStoreLifecycle(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	job := &domain.Job{
		ID:        "job-1",
		InputPath: "report.pdf",
		Status:    domain.JobPending,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.CreateJob(ctx, job))
	assert.ErrorIs(t, store.CreateJob(ctx, job), domain.ErrAlreadyExists)

	got, err := store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got.InputPath)

	job.Status = domain.JobDone
	require.NoError(t, store.UpdateJob(ctx, job))
	got, err = store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobDone, got.Status)

	require.NoError(t, store.DeleteJob(ctx, "job-1"))
	_, err = store.GetJob(ctx, "job-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobStoreUpdateMissing(t *testing.T) {
	store := NewJobStore()
	err := store.UpdateJob(context.Background(), &domain.Job{ID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobStoreListNewestFirst(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, store.CreateJob(ctx, &domain.Job{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	jobs, err := store.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "new", jobs[0].ID)
	assert.Equal(t, "old", jobs[2].ID)
}

func TestJobStoreProgressAndResult(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	_, err := store.GetProgress(ctx, "job-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.SaveProgress(ctx, domain.Progress{JobID: "job-1", PageCurrent: 3, PageTotal: 10}))
	require.NoError(t, store.SaveProgress(ctx, domain.Progress{JobID: "job-1", PageCurrent: 4, PageTotal: 10}))

	p, err := store.GetProgress(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 4, p.PageCurrent)

	require.NoError(t, store.SaveResult(ctx, &domain.JobResult{JobID: "job-1", Status: domain.JobDone}))
	res, err := store.GetResult(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobDone, res.Status)
}

func TestJobStoreDeleteCascades(t *testing.T) {
	store := NewJobStore()
	ctx := context.Background()

	require.NoError(t, store.CreateJob(ctx, &domain.Job{ID: "job-1"}))
	require.NoError(t, store.SaveProgress(ctx, domain.Progress{JobID: "job-1", PageCurrent: 1}))
	require.NoError(t, store.SaveResult(ctx, &domain.JobResult{JobID: "job-1"}))

	require.NoError(t, store.DeleteJob(ctx, "job-1"))

	_, err := store.GetProgress(ctx, "job-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetResult(ctx, "job-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
