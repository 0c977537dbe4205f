package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/web"
)

var previewPort int

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Serve finished documents over HTTP",
	Long: `Starts a local HTTP server that lists finished jobs and renders
their merged markdown as HTML. The server binds to loopback only;
press Ctrl+C to stop it.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntVarP(&previewPort, "port", "p", 0, "HTTP port (0 picks a free port)")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	if jobService == nil {
		return errors.New("job service not configured")
	}
	if previewRenderer == nil {
		return errors.New("preview renderer not configured")
	}

	server, err := web.NewServer(jobService, previewRenderer, previewPort)
	if err != nil {
		return fmt.Errorf("creating preview server: %w", err)
	}

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting preview server: %w", err)
	}

	cmd.Printf("Preview server running at %s. Ctrl+C to stop.\n", server.URL())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-ctx.Done()

	return server.Stop()
}
