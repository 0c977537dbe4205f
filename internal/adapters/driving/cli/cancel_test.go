package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

func TestCancelCmd_Use(t *testing.T) {
	assert.Equal(t, "cancel [job-id]", cancelCmd.Use)
}

func TestCancelCmd_RequestsCancellation(t *testing.T) {
	cancelled := ""
	cleanup := setupJobService(&mockJobService{
		CancelFunc: func(_ context.Context, jobID string) error {
			cancelled = jobID
			return nil
		},
	})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"cancel", "job-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "job-1", cancelled)
	assert.Contains(t, buf.String(), "Cancellation requested for job job-1")
}

func TestCancelCmd_FinishedJob(t *testing.T) {
	cleanup := setupJobService(&mockJobService{
		CancelFunc: func(_ context.Context, _ string) error {
			return domain.ErrJobFinished
		},
	})
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"cancel", "job-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, domain.ErrJobFinished)
}
