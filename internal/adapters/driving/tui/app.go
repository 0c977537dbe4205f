package tui

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/components/status"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/keymap"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/messages"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/styles"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/views/jobs"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/tui/views/progress"
	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// jobsView is the job list view.
	jobsView *jobs.View

	// progressView is the live progress view.
	progressView *progress.View

	// statusBar shows state and keybinding hints.
	statusBar *status.Bar

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		jobsView:     jobs.NewView(s, ports.Jobs),
		progressView: progress.NewView(s, ports.Jobs),
		statusBar:    status.NewBar(s, km),
		currentView:  messages.ViewJobs,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("ocr2doc - OCR Jobs"),
		a.jobsView.Init(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.jobsView.SetDimensions(msg.Width, msg.Height)
		a.progressView.SetDimensions(msg.Width, msg.Height)
		a.statusBar.SetWidth(msg.Width)
		return a, nil

	case tea.KeyMsg:
		// Global quit with ctrl+c
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKeyMsg(msg)

	case messages.JobsLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
		} else {
			a.err = nil
			a.statusBar.SetState(status.StateReady)
			a.statusBar.SetJobCount(len(msg.Jobs))
		}
		a.jobsView, cmd = a.jobsView.Update(msg)
		return a, cmd

	case messages.JobSelected:
		a.currentView = messages.ViewProgress
		a.statusBar.SetState(status.StateWatching)
		a.statusBar.SetMessage(filepath.Base(msg.Job.InputPath))
		return a, a.progressView.SetJob(msg.Job)

	case messages.ResultLoaded:
		if msg.Err == nil && msg.Result != nil && msg.Result.Status == domain.JobDone {
			a.statusBar.SetState(status.StateDone)
		}
		a.progressView, cmd = a.progressView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewJobs {
			a.statusBar.SetState(status.StateReady)
			a.statusBar.SetMessage("")
			return a, a.jobsView.Init()
		}
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusBar.SetState(status.StateError)
		if msg.Err != nil {
			a.statusBar.SetMessage(msg.Err.Error())
		}
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to the active view
	switch a.currentView {
	case messages.ViewJobs:
		a.jobsView, cmd = a.jobsView.Update(msg)
	case messages.ViewProgress:
		a.progressView, cmd = a.progressView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't handle other messages
	}

	return a, cmd
}

// handleKeyMsg routes key presses to the active view.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewJobs:
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "?":
			a.currentView = messages.ViewHelp
			return a, nil
		}
		a.jobsView, cmd = a.jobsView.Update(msg)
		return a, cmd

	case messages.ViewProgress:
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "esc":
			a.currentView = messages.ViewJobs
			a.statusBar.SetState(status.StateReady)
			a.statusBar.SetMessage("")
			return a, a.jobsView.Init()
		}
		a.progressView, cmd = a.progressView.Update(msg)
		return a, cmd

	case messages.ViewHelp:
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "esc":
			a.currentView = messages.ViewJobs
			return a, nil
		}
		return a, nil
	}

	return a, nil
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var content string
	switch a.currentView {
	case messages.ViewJobs:
		content = a.jobsView.View()
	case messages.ViewProgress:
		content = a.progressView.View()
	case messages.ViewHelp:
		content = a.viewHelp()
	default:
		content = a.jobsView.View()
	}

	return content + "\n" + a.statusBar.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return `Help

Jobs:
  j/k, ↑/↓    Navigate jobs
  enter       Watch selected job
  r           Reload list
  q           Quit

Progress:
  c           Cancel the running job
  esc         Back to jobs
  q           Quit

[esc] back to jobs`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.jobsView.SetDimensions(width, height)
	a.progressView.SetDimensions(width, height)
	a.statusBar.SetWidth(width)
}
