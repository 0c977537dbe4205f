package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreviewCmd_Use(t *testing.T) {
	assert.Equal(t, "preview", previewCmd.Use)
}

func TestPreviewCmd_NotConfigured(t *testing.T) {
	cleanup := setupJobService(nil)
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"preview"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.ErrorContains(t, err, "job service not configured")
}

func TestPreviewCmd_MissingRenderer(t *testing.T) {
	cleanup := setupJobService(&mockJobService{})
	defer cleanup()

	oldRenderer := previewRenderer
	previewRenderer = nil
	defer func() { previewRenderer = oldRenderer }()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"preview"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.ErrorContains(t, err, "preview renderer not configured")
}
