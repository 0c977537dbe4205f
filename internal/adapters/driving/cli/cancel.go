package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel [job-id]",
	Short: "Cancel a running job",
	Long: `Requests cancellation of a running job. The request is advisory:
the scheduler stops at the next page boundary, and pages already
processed stay in the workspace.`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
	if jobService == nil {
		return errors.New("job service not configured")
	}

	ctx := context.Background()

	if err := jobService.Cancel(ctx, args[0]); err != nil {
		return fmt.Errorf("cancelling job: %w", err)
	}

	cmd.Printf("Cancellation requested for job %s.\n", args[0])
	return nil
}
