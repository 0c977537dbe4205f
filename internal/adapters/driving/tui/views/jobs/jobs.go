// Package jobs provides the job list view component for the TUI.
package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/messages"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/styles"
	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driving"
)

// View is the job list view.
type View struct {
	styles     *styles.Styles
	jobService driving.JobService

	jobs     []domain.Job
	selected int
	width    int
	height   int
	ready    bool
	err      error
	loading  bool
}

// NewView creates a new job list view.
func NewView(s *styles.Styles, jobService driving.JobService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:     s,
		jobService: jobService,
		jobs:       []domain.Job{},
		width:      80,
		height:     24,
	}
}

// Init initialises the view and loads the job list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadJobs()
}

// loadJobs returns a command that loads jobs from the service.
func (v *View) loadJobs() tea.Cmd {
	return func() tea.Msg {
		if v.jobService == nil {
			return messages.JobsLoaded{Err: fmt.Errorf("job service not available")}
		}

		jobs, err := v.jobService.List(context.Background())
		return messages.JobsLoaded{Jobs: jobs, Err: err}
	}
}

// Update handles messages for the job list view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.JobsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.jobs = msg.Jobs
			v.err = nil
			if v.selected >= len(v.jobs) {
				v.selected = 0
			}
		}
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.jobs)-1 {
			v.selected++
		}
	case "enter":
		if len(v.jobs) > 0 && v.selected < len(v.jobs) {
			job := v.jobs[v.selected]
			return v, func() tea.Msg {
				return messages.JobSelected{Job: job}
			}
		}
	case "r":
		v.loading = true
		return v, v.loadJobs()
	}

	return v, nil
}

// View renders the job list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("OCR Jobs"))
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading jobs..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if len(v.jobs) == 0 {
		b.WriteString(v.styles.Muted.Render("No jobs yet. Start one with: ocr2doc run <file>"))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	for i := range v.jobs {
		b.WriteString(v.renderJob(i, &v.jobs[i]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderJob renders a single job line.
func (v *View) renderJob(index int, job *domain.Job) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	name := filepath.Base(job.InputPath)
	if job.Label != "" {
		name = fmt.Sprintf("%s (%s)", name, job.Label)
	}

	statusStr := fmt.Sprintf("[%s]", job.Status)
	created := job.CreatedAt.Format("01-02 15:04")

	maxNameLen := v.width - len(statusStr) - len(created) - 12
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen-3] + "..."
	}

	if index == v.selected {
		return v.styles.Selected.Render(
			fmt.Sprintf("%s%s %-10s %s", indicator, v.statusGlyph(job.Status), statusStr, name),
		)
	}

	return v.styles.Normal.Render(indicator) +
		v.renderGlyph(job.Status) + " " +
		v.styles.Muted.Render(fmt.Sprintf("%-10s ", statusStr)) +
		v.styles.Normal.Render(name) + " " +
		v.styles.Muted.Render(created)
}

// statusGlyph returns the unstyled glyph for a job status.
func (v *View) statusGlyph(status domain.JobStatus) string {
	switch status {
	case domain.JobDone:
		return "✓"
	case domain.JobFailed:
		return "✗"
	case domain.JobCanceled:
		return "−"
	case domain.JobRunning:
		return "●"
	case domain.JobPending:
		return "○"
	default:
		return " "
	}
}

// renderGlyph returns the styled glyph for a job status.
func (v *View) renderGlyph(status domain.JobStatus) string {
	glyph := v.statusGlyph(status)
	switch status {
	case domain.JobDone:
		return v.styles.Success.Render(glyph)
	case domain.JobFailed:
		return v.styles.Error.Render(glyph)
	case domain.JobCanceled:
		return v.styles.Warning.Render(glyph)
	case domain.JobRunning, domain.JobPending:
		return v.styles.Subtitle.Render(glyph)
	default:
		return glyph
	}
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[enter] watch  [r] reload  [?] help  [q] quit")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Jobs returns the current job list.
func (v *View) Jobs() []domain.Job {
	return v.jobs
}

// SelectedIndex returns the currently selected job index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
