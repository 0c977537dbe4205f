package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [job-id]",
	Short: "Delete a finished job",
	Long: `Removes a terminal job from the store. Workspace files on disk
are left alone; delete them separately if they are no longer needed.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if jobService == nil {
		return errors.New("job service not configured")
	}

	ctx := context.Background()

	if err := jobService.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("deleting job: %w", err)
	}

	cmd.Printf("Job %s deleted.\n", args[0])
	return nil
}
