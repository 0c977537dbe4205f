package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Show job progress",
	Long:  `Shows a point-in-time progress snapshot for a job.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output progress as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if jobService == nil {
		return errors.New("job service not configured")
	}

	ctx := context.Background()

	progress, err := jobService.Status(ctx, args[0])
	if err != nil {
		return fmt.Errorf("reading job status: %w", err)
	}

	if statusJSON {
		return outputStatusJSON(cmd, progress)
	}
	return outputStatusText(cmd, progress)
}

// progressOutput is the JSON shape of a progress snapshot.
type progressOutput struct {
	JobID          string   `json:"job_id"`
	Status         string   `json:"status"`
	PageCurrent    int      `json:"page_current"`
	PageTotal      int      `json:"page_total"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
	ETASeconds     float64  `json:"eta_seconds,omitempty"`
	LogTail        []string `json:"log_tail,omitempty"`
	Error          string   `json:"error,omitempty"`
}

func outputStatusJSON(cmd *cobra.Command, progress *domain.Progress) error {
	out := progressOutput{
		JobID:          progress.JobID,
		Status:         string(progress.Status),
		PageCurrent:    progress.PageCurrent,
		PageTotal:      progress.PageTotal,
		ElapsedSeconds: progress.Elapsed.Seconds(),
		ETASeconds:     progress.ETA.Seconds(),
		LogTail:        progress.LogTail,
		Error:          progress.Error,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding progress: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputStatusText(cmd *cobra.Command, progress *domain.Progress) error {
	cmd.Printf("Job: %s\n", progress.JobID)
	cmd.Printf("Status: %s\n", progress.Status)
	if progress.PageTotal > 0 {
		cmd.Printf("Pages: %d of %d\n", progress.PageCurrent, progress.PageTotal)
	}
	if progress.Elapsed > 0 {
		cmd.Printf("Elapsed: %s\n", formatDuration(progress.Elapsed))
	}
	if progress.ETA > 0 {
		cmd.Printf("ETA: %s\n", formatDuration(progress.ETA))
	}
	if progress.Error != "" {
		cmd.Printf("Error: %s\n", progress.Error)
	}
	if len(progress.LogTail) > 0 {
		cmd.Println("Recent log:")
		for _, line := range progress.LogTail {
			cmd.Printf("  %s\n", line)
		}
	}
	return nil
}
