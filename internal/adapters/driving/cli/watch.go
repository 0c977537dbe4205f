package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Process documents dropped into a directory",
	Long: `Watches an inbox directory and runs an OCR job for every document
that appears in it. Files already present at startup are processed
first, then new files are picked up as they finish writing. Jobs use
the configured defaults; press Ctrl+C to stop watching.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if jobService == nil {
		return errors.New("job service not configured")
	}

	watcher, err := watch.NewWatcher(jobService, args[0], jobDefaults)
	if err != nil {
		return fmt.Errorf("starting watch mode: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd.Printf("Watching %s for new documents. Ctrl+C to stop.\n", args[0])
	return watcher.Run(ctx)
}
