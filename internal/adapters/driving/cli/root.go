package cli

import (
	"github.com/spf13/cobra"

	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/web"
	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driving"
	"github.com/ricopen19/OCR-to-doc/internal/logger"
)

// version is the application version, set at build time via SetVersion.
var version = "dev"

// Package-level services, injected by the composition root through
// SetServices before Execute. Commands check for nil and return a
// clear error instead of panicking.
var (
	jobService      driving.JobService
	configStore     driven.ConfigStore
	previewRenderer web.Renderer
	jobDefaults     = domain.DefaultJobOptions()
)

// verbose enables debug logging for all commands.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ocr2doc",
	Short: "OCR documents into markdown and machine formats",
	Long: `ocr2doc turns scanned PDFs and images into clean markdown, CSV,
plain text, and HTML using external OCR engines.

Point it at a file to start a job and watch it run:

  ocr2doc run scan.pdf
  ocr2doc run photo.png --formats md,csv --pages 3-7

Finished exports land in a per-job workspace directory. Other surfaces
drive the same pipeline: 'ocr2doc tui' watches jobs interactively,
'ocr2doc watch' processes files dropped into an inbox directory,
'ocr2doc preview' serves the merged document over HTTP, and
'ocr2doc mcp serve' exposes job control to MCP clients.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Services holds the dependencies the commands need.
type Services struct {
	// Jobs drives the OCR pipeline. Required by most commands.
	Jobs driving.JobService

	// Config backs the config command and seeds job defaults.
	Config driven.ConfigStore

	// Renderer turns merged markdown into HTML for the preview server.
	Renderer web.Renderer

	// Defaults seeds job options for run, watch, and mcp serve. The
	// zero value falls back to the built-in defaults.
	Defaults domain.JobOptions
}

// SetServices injects the services. Must be called before Execute.
func SetServices(s Services) {
	jobService = s.Jobs
	configStore = s.Config
	previewRenderer = s.Renderer
	jobDefaults = s.Defaults.Normalize()
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}
