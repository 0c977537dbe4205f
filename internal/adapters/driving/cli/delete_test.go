package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

func TestDeleteCmd_Use(t *testing.T) {
	assert.Equal(t, "delete [job-id]", deleteCmd.Use)
}

func TestDeleteCmd_DeletesJob(t *testing.T) {
	deleted := ""
	cleanup := setupJobService(&mockJobService{
		DeleteFunc: func(_ context.Context, jobID string) error {
			deleted = jobID
			return nil
		},
	})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"delete", "job-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "job-1", deleted)
	assert.Contains(t, buf.String(), "Job job-1 deleted.")
}

func TestDeleteCmd_RunningJob(t *testing.T) {
	cleanup := setupJobService(&mockJobService{
		DeleteFunc: func(_ context.Context, _ string) error {
			return domain.ErrJobRunning
		},
	})
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"delete", "job-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, domain.ErrJobRunning)
}
