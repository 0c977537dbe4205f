// Package progress provides the live job progress view for the TUI.
package progress

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/messages"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/styles"
	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driving"
)

// pollInterval is how often the watched job is polled.
const pollInterval = 800 * time.Millisecond

// tickMsg schedules the next progress poll.
type tickMsg struct{}

// View is the live progress view for one job.
type View struct {
	styles     *styles.Styles
	jobService driving.JobService

	job      domain.Job
	progress *domain.Progress
	result   *domain.JobResult

	bar  progress.Model
	spin spinner.Model

	width      int
	height     int
	err        error
	cancelling bool
}

// NewView creates a new progress view.
func NewView(s *styles.Styles, jobService driving.JobService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	theme := s.Theme()
	bar := progress.New(
		progress.WithGradient(string(theme.Secondary), string(theme.Primary)),
	)
	spin := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(s.Subtitle),
	)

	return &View{
		styles:     s,
		jobService: jobService,
		bar:        bar,
		spin:       spin,
		width:      80,
		height:     24,
	}
}

// SetJob points the view at a job and starts polling it.
func (v *View) SetJob(job domain.Job) tea.Cmd {
	v.job = job
	v.progress = nil
	v.result = nil
	v.err = nil
	v.cancelling = false
	return tea.Batch(v.pollProgress(), v.spin.Tick)
}

// pollProgress returns a command that fetches a progress snapshot.
func (v *View) pollProgress() tea.Cmd {
	jobID := v.job.ID
	return func() tea.Msg {
		if v.jobService == nil {
			return messages.ProgressLoaded{JobID: jobID, Err: fmt.Errorf("job service not available")}
		}

		p, err := v.jobService.Status(context.Background(), jobID)
		return messages.ProgressLoaded{JobID: jobID, Progress: p, Err: err}
	}
}

// loadResult returns a command that fetches the outputs of the
// finished job.
func (v *View) loadResult() tea.Cmd {
	jobID := v.job.ID
	return func() tea.Msg {
		result, err := v.jobService.Result(context.Background(), jobID)
		return messages.ResultLoaded{JobID: jobID, Result: result, Err: err}
	}
}

// cancelJob returns a command that requests cancellation.
func (v *View) cancelJob() tea.Cmd {
	jobID := v.job.ID
	return func() tea.Msg {
		err := v.jobService.Cancel(context.Background(), jobID)
		return messages.JobCancelled{JobID: jobID, Err: err}
	}
}

// scheduleTick waits one poll interval before the next snapshot.
func (v *View) scheduleTick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update handles messages for the progress view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.bar.Width = min(msg.Width-8, 60)
		return v, nil

	case tea.KeyMsg:
		if msg.String() == "c" && v.result == nil && !v.cancelling {
			v.cancelling = true
			return v, v.cancelJob()
		}
		return v, nil

	case tickMsg:
		if v.result != nil {
			return v, nil
		}
		return v, v.pollProgress()

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(msg)
		return v, cmd

	case messages.ProgressLoaded:
		if msg.JobID != v.job.ID {
			return v, nil
		}
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.progress = msg.Progress
		v.err = nil
		if msg.Progress.Status.Terminal() {
			return v, v.loadResult()
		}
		return v, v.scheduleTick()

	case messages.ResultLoaded:
		if msg.JobID != v.job.ID {
			return v, nil
		}
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.result = msg.Result
		return v, nil

	case messages.JobCancelled:
		if msg.JobID != v.job.ID {
			return v, nil
		}
		if msg.Err != nil {
			v.cancelling = false
			v.err = msg.Err
		}
		return v, nil
	}

	return v, nil
}

// View renders the progress view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.jobName()))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n")
	case v.result != nil:
		b.WriteString(v.renderResult())
	case v.progress != nil:
		b.WriteString(v.renderProgress())
	default:
		b.WriteString(v.styles.Muted.Render("Connecting..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderProgress renders the live progress section.
func (v *View) renderProgress() string {
	var b strings.Builder
	p := v.progress

	b.WriteString(v.spin.View())
	b.WriteString(v.styles.Normal.Render(
		fmt.Sprintf(" Page %d / %d", p.PageCurrent, p.PageTotal),
	))
	b.WriteString("\n\n")

	b.WriteString(v.bar.ViewAs(v.percent()))
	b.WriteString("\n\n")

	timing := fmt.Sprintf("elapsed %s", formatDuration(p.Elapsed))
	if p.ETA > 0 {
		timing += fmt.Sprintf("   eta %s", formatDuration(p.ETA))
	}
	b.WriteString(v.styles.Muted.Render(timing))
	b.WriteString("\n")

	if v.cancelling {
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render("Cancelling at the next page boundary..."))
		b.WriteString("\n")
	}

	if len(p.LogTail) > 0 {
		b.WriteString("\n")
		for _, line := range p.LogTail {
			b.WriteString(v.styles.LogLine.Render(line))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderResult renders the terminal state summary.
func (v *View) renderResult() string {
	var b strings.Builder
	r := v.result

	switch r.Status {
	case domain.JobDone:
		b.WriteString(v.styles.Success.Render("✓ Done"))
	case domain.JobFailed:
		b.WriteString(v.styles.Error.Render("✗ Failed"))
	case domain.JobCanceled:
		b.WriteString(v.styles.Warning.Render("− Canceled"))
	default:
		b.WriteString(v.styles.Normal.Render(string(r.Status)))
	}
	b.WriteString("\n\n")

	if len(r.Outputs) > 0 {
		formats := make([]string, 0, len(r.Outputs))
		for format := range r.Outputs {
			formats = append(formats, string(format))
		}
		sort.Strings(formats)
		for _, format := range formats {
			b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("%-5s", format)))
			b.WriteString(v.styles.Normal.Render(r.Outputs[domain.ExportFormat(format)]))
			b.WriteString("\n")
		}
	}

	if r.PagesRecovered > 0 {
		b.WriteString(v.styles.Warning.Render(
			fmt.Sprintf("%d pages recovered by fallback", r.PagesRecovered),
		))
		b.WriteString("\n")
	}
	if r.PagesFailed > 0 {
		b.WriteString(v.styles.Error.Render(
			fmt.Sprintf("%d pages failed", r.PagesFailed),
		))
		b.WriteString("\n")
	}

	return b.String()
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	if v.result != nil {
		return v.styles.Help.Render("[esc] back  [q] quit")
	}
	return v.styles.Help.Render("[c] cancel  [esc] back  [q] quit")
}

// percent returns the completion ratio of the watched job.
func (v *View) percent() float64 {
	if v.progress == nil || v.progress.PageTotal <= 0 {
		return 0
	}
	return float64(v.progress.PageCurrent) / float64(v.progress.PageTotal)
}

// jobName returns the display name of the watched job.
func (v *View) jobName() string {
	name := filepath.Base(v.job.InputPath)
	if v.job.Label != "" {
		name = fmt.Sprintf("%s (%s)", name, v.job.Label)
	}
	return name
}

// formatDuration renders a duration in whole seconds.
func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.bar.Width = min(width-8, 60)
}

// Job returns the watched job.
func (v *View) Job() domain.Job {
	return v.job
}

// Progress returns the last progress snapshot.
func (v *View) Progress() *domain.Progress {
	return v.progress
}

// Result returns the loaded result, or nil while the job runs.
func (v *View) Result() *domain.JobResult {
	return v.result
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
