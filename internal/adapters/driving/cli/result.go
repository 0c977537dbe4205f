package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

var (
	resultJSON    bool
	resultPreview bool
)

var resultCmd = &cobra.Command{
	Use:   "result [job-id]",
	Short: "Show the outputs of a finished job",
	Long: `Shows the export paths and a document preview for a finished job.
Fails while the job is still running.`,
	Args: cobra.ExactArgs(1),
	RunE: runResult,
}

func init() {
	resultCmd.Flags().BoolVar(&resultJSON, "json", false, "output the result as JSON")
	resultCmd.Flags().BoolVar(&resultPreview, "preview", false, "include a document preview")
	rootCmd.AddCommand(resultCmd)
}

func runResult(cmd *cobra.Command, args []string) error {
	if jobService == nil {
		return errors.New("job service not configured")
	}

	ctx := context.Background()

	result, err := jobService.Result(ctx, args[0])
	if err != nil {
		return fmt.Errorf("reading job result: %w", err)
	}

	if resultJSON {
		return outputResultJSON(cmd, result, "")
	}
	return outputResultText(cmd, result)
}

// resultOutput is the JSON shape of a finished job.
type resultOutput struct {
	JobID          string            `json:"job_id"`
	Status         string            `json:"status"`
	Outputs        map[string]string `json:"outputs"`
	Preview        string            `json:"preview,omitempty"`
	PagesFailed    int               `json:"pages_failed,omitempty"`
	PagesRecovered int               `json:"pages_recovered,omitempty"`
	Error          string            `json:"error,omitempty"`
}

func outputResultJSON(cmd *cobra.Command, result *domain.JobResult, cause string) error {
	outputs := make(map[string]string, len(result.Outputs))
	for format, path := range result.Outputs {
		outputs[string(format)] = path
	}

	out := resultOutput{
		JobID:          result.JobID,
		Status:         string(result.Status),
		Outputs:        outputs,
		Preview:        result.Preview,
		PagesFailed:    result.PagesFailed,
		PagesRecovered: result.PagesRecovered,
		Error:          cause,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResultText(cmd *cobra.Command, result *domain.JobResult) error {
	cmd.Printf("Job: %s\n", result.JobID)
	cmd.Printf("Status: %s\n", result.Status)
	if result.PagesRecovered > 0 {
		cmd.Printf("Pages recovered by fallback: %d\n", result.PagesRecovered)
	}
	if result.PagesFailed > 0 {
		cmd.Printf("Pages failed: %d\n", result.PagesFailed)
	}
	if len(result.Outputs) > 0 {
		cmd.Println("Outputs:")
		for _, format := range sortedFormats(result.Outputs) {
			cmd.Printf("  %-5s %s\n", format, result.Outputs[domain.ExportFormat(format)])
		}
	}
	if resultPreview && result.Preview != "" {
		cmd.Println()
		cmd.Println(result.Preview)
	}
	return nil
}
