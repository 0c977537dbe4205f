package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// runPollInterval matches the reference polling cadence of the
// progress surface.
const runPollInterval = 800 * time.Millisecond

var (
	runMode       string
	runDevice     string
	runTableMode  string
	runFormats    []string
	runPages      string
	runLabel      string
	runOutput     string
	runCrop       string
	runChunkSize  int
	runRest       bool
	runRestSec    int
	runDPI        int
	runFallback   bool
	runFigures    bool
	runIconPolicy string
	runJSON       bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "OCR a document and export the results",
	Long: `Starts an OCR job for a PDF or image file and waits for it to
finish. Pages are processed in chunks with optional rest intervals;
progress is reported live. Finished exports land in a per-job
workspace directory.

Examples:
  ocr2doc run scan.pdf
  ocr2doc run scan.pdf --mode accurate --device cuda
  ocr2doc run report.pdf --formats md,csv,html --pages 3-7
  ocr2doc run receipt.png --crop 0.1,0.0,0.8,1.0`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runMode, "mode", "", "OCR mode: fast or accurate")
	runCmd.Flags().StringVar(&runDevice, "device", "", "inference device: cpu, cuda, or mps")
	runCmd.Flags().StringVar(&runTableMode, "table-mode", "", "table handling: layout or table")
	runCmd.Flags().StringSliceVarP(&runFormats, "formats", "f", nil, "export formats (md, csv, txt, html)")
	runCmd.Flags().StringVarP(&runPages, "pages", "p", "", "page range to process (e.g. 3-7)")
	runCmd.Flags().StringVarP(&runLabel, "label", "l", "", "label suffix for the workspace directory")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "output directory (overrides the configured root)")
	runCmd.Flags().StringVar(&runCrop, "crop", "", "normalised crop rectangle left,top,width,height in 0..1")
	runCmd.Flags().IntVar(&runChunkSize, "chunk-size", 0, "pages per processing chunk")
	runCmd.Flags().BoolVar(&runRest, "rest", true, "pause between chunks")
	runCmd.Flags().IntVar(&runRestSec, "rest-seconds", 0, "seconds to pause between chunks")
	runCmd.Flags().IntVar(&runDPI, "dpi", 0, "rasterisation DPI for PDF pages")
	runCmd.Flags().BoolVar(&runFallback, "fallback", true, "retry thin pages with the fallback engine")
	runCmd.Flags().BoolVar(&runFigures, "figures", false, "extract figure images into the workspace")
	runCmd.Flags().StringVar(&runIconPolicy, "icon-policy", "", "decorative figure handling: auto, review, or keep")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output the final result as JSON")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if jobService == nil {
		return errors.New("job service not configured")
	}

	opts, err := runOptions(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	job, err := jobService.Start(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("starting job: %w", err)
	}

	showProgress := !runJSON && term.IsTerminal(int(os.Stdout.Fd()))
	if !runJSON {
		cmd.Printf("Job %s started: %s\n", job.ID, job.InputPath)
	}

	progress, err := waitForJob(ctx, cmd, job.ID, showProgress)
	if err != nil {
		return err
	}

	if runJSON {
		return outputRunJSON(cmd, progress)
	}
	return outputRunSummary(cmd, progress)
}

// runOptions overlays the changed flags onto the configured defaults.
func runOptions(cmd *cobra.Command) (domain.JobOptions, error) {
	opts := jobDefaults

	if runMode != "" {
		mode, ok := domain.ParseOCRMode(runMode)
		if !ok {
			return opts, fmt.Errorf("unknown mode %q", runMode)
		}
		opts.Mode = mode
	}
	if runDevice != "" {
		device, ok := domain.ParseDevice(runDevice)
		if !ok {
			return opts, fmt.Errorf("unknown device %q", runDevice)
		}
		opts.Device = device
	}
	if runTableMode != "" {
		tableMode, ok := domain.ParseTableMode(runTableMode)
		if !ok {
			return opts, fmt.Errorf("unknown table mode %q", runTableMode)
		}
		opts.TableMode = tableMode
	}
	if len(runFormats) > 0 {
		formats := make([]domain.ExportFormat, 0, len(runFormats))
		for _, f := range runFormats {
			format, ok := domain.ParseExportFormat(f)
			if !ok {
				return opts, fmt.Errorf("unknown export format %q", f)
			}
			formats = append(formats, format)
		}
		opts.Formats = formats
	}
	if runPages != "" {
		start, end, err := domain.ParsePageRange(runPages)
		if err != nil {
			return opts, err
		}
		opts.PageStart, opts.PageEnd = start, end
	}
	if runCrop != "" {
		crop, err := domain.ParseCrop(runCrop)
		if err != nil {
			return opts, err
		}
		opts.Crop = crop
	}
	if runIconPolicy != "" {
		policy := domain.IconPolicy(runIconPolicy)
		if !policy.IsValid() {
			return opts, fmt.Errorf("unknown icon policy %q", runIconPolicy)
		}
		opts.IconPolicy = policy
	}
	if runLabel != "" {
		opts.Label = runLabel
	}
	if runOutput != "" {
		opts.OutputDir = runOutput
	}
	if runChunkSize > 0 {
		opts.ChunkSize = runChunkSize
	}
	if runRestSec > 0 {
		opts.RestInterval = time.Duration(runRestSec) * time.Second
	}
	if runDPI > 0 {
		opts.DPI = runDPI
	}
	if cmd.Flags().Changed("rest") {
		opts.RestEnabled = runRest
	}
	if cmd.Flags().Changed("fallback") {
		opts.FallbackEnabled = runFallback
	}
	if cmd.Flags().Changed("figures") {
		opts.Figures = runFigures
	}

	return opts.Normalize(), nil
}

// waitForJob polls the job until it reaches a terminal state. An
// interrupt requests cancellation once and keeps polling; the
// scheduler stops at the next page boundary.
func waitForJob(ctx context.Context, cmd *cobra.Command, jobID string, showProgress bool) (*domain.Progress, error) {
	ticker := time.NewTicker(runPollInterval)
	defer ticker.Stop()

	interrupt := ctx.Done()
	for {
		progress, err := jobService.Status(context.Background(), jobID)
		if err != nil {
			return nil, fmt.Errorf("reading job status: %w", err)
		}
		if progress.Status.Terminal() {
			if showProgress {
				cmd.Printf("\r%-60s\n", progressLine(progress))
			}
			return progress, nil
		}
		if showProgress {
			cmd.Printf("\r%-60s", progressLine(progress))
		}

		select {
		case <-interrupt:
			// Only request cancellation once; a nil channel never
			// fires again.
			interrupt = nil
			if showProgress {
				cmd.Println("\nCancelling at the next page boundary...")
			}
			if err := jobService.Cancel(context.Background(), jobID); err != nil {
				return nil, fmt.Errorf("cancelling job: %w", err)
			}
		case <-ticker.C:
		}
	}
}

func progressLine(p *domain.Progress) string {
	if p.PageTotal == 0 {
		return "Preparing..."
	}
	line := fmt.Sprintf("Page %d/%d  elapsed %s", p.PageCurrent, p.PageTotal, formatDuration(p.Elapsed))
	if p.ETA > 0 {
		line += fmt.Sprintf("  eta %s", formatDuration(p.ETA))
	}
	return line
}

func outputRunSummary(cmd *cobra.Command, progress *domain.Progress) error {
	switch progress.Status {
	case domain.JobFailed:
		return fmt.Errorf("job failed: %s", progress.Error)
	case domain.JobCanceled:
		cmd.Println("Job canceled.")
		return nil
	}

	result, err := jobService.Result(context.Background(), progress.JobID)
	if err != nil {
		return fmt.Errorf("reading job result: %w", err)
	}

	cmd.Printf("Done in %s. %d pages.\n", formatDuration(progress.Elapsed), progress.PageTotal)
	if result.PagesRecovered > 0 {
		cmd.Printf("%d pages recovered by the fallback engine.\n", result.PagesRecovered)
	}
	if result.PagesFailed > 0 {
		cmd.Printf("Warning: %d pages failed and are marked in the output.\n", result.PagesFailed)
	}
	if len(result.Outputs) > 0 {
		cmd.Println("Outputs:")
		for _, format := range sortedFormats(result.Outputs) {
			cmd.Printf("  %-5s %s\n", format, result.Outputs[domain.ExportFormat(format)])
		}
	}
	return nil
}

func outputRunJSON(cmd *cobra.Command, progress *domain.Progress) error {
	result, err := jobService.Result(context.Background(), progress.JobID)
	if err != nil {
		return fmt.Errorf("reading job result: %w", err)
	}
	if err := outputResultJSON(cmd, result, progress.Error); err != nil {
		return err
	}
	if progress.Status == domain.JobFailed {
		return fmt.Errorf("job failed: %s", progress.Error)
	}
	return nil
}

// sortedFormats returns the output format keys in stable order.
func sortedFormats(outputs map[domain.ExportFormat]string) []string {
	formats := make([]string, 0, len(outputs))
	for format := range outputs {
		formats = append(formats, string(format))
	}
	sort.Strings(formats)
	return formats
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}
