package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

var jobsJSON bool

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List known jobs",
	Long:  `Lists all jobs in the store, newest first.`,
	RunE:  runJobs,
}

func init() {
	jobsCmd.Flags().BoolVar(&jobsJSON, "json", false, "output jobs as JSON")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, _ []string) error {
	if jobService == nil {
		return errors.New("job service not configured")
	}

	ctx := context.Background()

	jobs, err := jobService.List(ctx)
	if err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}

	if jobsJSON {
		return outputJobsJSON(cmd, jobs)
	}
	return outputJobsTable(cmd, jobs)
}

// jobRow is the JSON shape of one job in the list output.
type jobRow struct {
	ID        string `json:"id"`
	Input     string `json:"input"`
	Label     string `json:"label,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	OutputDir string `json:"output_dir,omitempty"`
	Error     string `json:"error,omitempty"`
}

func outputJobsJSON(cmd *cobra.Command, jobs []domain.Job) error {
	rows := make([]jobRow, len(jobs))
	for i := range jobs {
		rows[i] = jobRow{
			ID:        jobs[i].ID,
			Input:     jobs[i].InputPath,
			Label:     jobs[i].Label,
			Status:    string(jobs[i].Status),
			CreatedAt: jobs[i].CreatedAt.UTC().Format(time.RFC3339),
			OutputDir: jobs[i].OutputDir,
			Error:     jobs[i].Error,
		}
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding jobs: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputJobsTable(cmd *cobra.Command, jobs []domain.Job) error {
	if len(jobs) == 0 {
		cmd.Println("No jobs yet. Start one with: ocr2doc run <file>")
		return nil
	}

	cmd.Printf("%-36s  %-9s  %-16s  %s\n", "ID", "STATUS", "CREATED", "INPUT")
	for i := range jobs {
		name := filepath.Base(jobs[i].InputPath)
		if jobs[i].Label != "" {
			name += " (" + jobs[i].Label + ")"
		}
		cmd.Printf("%-36s  %-9s  %-16s  %s\n",
			jobs[i].ID,
			jobs[i].Status,
			jobs[i].CreatedAt.Local().Format("2006-01-02 15:04"),
			name)
	}
	cmd.Printf("\nTotal: %d jobs\n", len(jobs))
	return nil
}
