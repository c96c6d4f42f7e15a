package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/groundctl/groundctl/internal/command"
	"github.com/groundctl/groundctl/internal/dashboard"
	"github.com/groundctl/groundctl/internal/errors"
)

// LayoutMode represents the responsive layout mode based on terminal size.
type LayoutMode int

const (
	// LayoutMinimal is for terminals < 80 columns: one-row sparklines.
	LayoutMinimal LayoutMode = iota
	// LayoutStandard is for terminals 80+ columns: braille graphs.
	LayoutStandard
)

// Width breakpoint for braille graphs
const BreakpointCompact = 80

// graphHeight is the number of braille rows per graph.
const graphHeight = 2

// Dashboard is the controller the TUI renders and commands.
type Dashboard interface {
	Views() <-chan dashboard.View
	Snapshot() dashboard.View
	SelectSession(id string)
	NextSession()
	PrevSession()
	SetReferencePressure(v float64)
	Refresh()
}

// Launcher is the two-step launch command.
type Launcher interface {
	RequestConfirmation() error
	Cancel()
	Confirm(ctx context.Context) (command.Result, error)
}

// Model is the Bubble Tea model for the telemetry dashboard.
type Model struct {
	dash   Dashboard
	gate   Launcher
	view   dashboard.View
	width  int
	height int

	viewMode ViewMode
	showHelp bool
	quitting bool

	// Reference pressure input
	input    textinput.Model
	inputErr string

	// Launch state
	launching    bool
	launchResult string
	launchOK     bool

	// Event log scrolling
	logViewport viewport.Model
	scroll      int

	spinnerFrame int
}

// viewMsg carries a view published by the controller.
type viewMsg dashboard.View

// launchResultMsg carries the outcome of a confirmed launch.
type launchResultMsg struct {
	result command.Result
	err    error
}

// spinnerTickMsg signals a spinner animation frame update.
type spinnerTickMsg time.Time

// spinnerInterval is the animation frame rate for the connecting badge.
const spinnerInterval = 150 * time.Millisecond

// NewModel creates a dashboard model. gate may be nil to disable launching.
func NewModel(dash Dashboard, gate Launcher) Model {
	input := textinput.New()
	input.Placeholder = "1013.25"
	input.Prompt = "Reference pressure (hPa, empty or 0 disables): "
	input.CharLimit = 16

	return Model{
		dash:        dash,
		gate:        gate,
		view:        dash.Snapshot(),
		input:       input,
		logViewport: viewport.New(0, 0),
	}
}

// Init waits for the first view and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForView(),
		m.spinnerTickCmd(),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		handled, cmd := m.HandleKeyMsg(msg)
		if handled {
			return m, cmd
		}
		if m.viewMode == ViewPressureInput {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - len(m.input.Prompt) - 2
		m.syncLog()

	case viewMsg:
		m.view = dashboard.View(msg)
		m.syncLog()
		return m, m.waitForView()

	case launchResultMsg:
		m.launching = false
		if msg.err != nil {
			m.launchResult = errors.Summary(msg.err)
			m.launchOK = false
		} else {
			m.launchResult = msg.result.String()
			m.launchOK = msg.result.OK()
		}

	case spinnerTickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % 10000
		return m, m.spinnerTickCmd()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	base := m.renderDashboard()
	if m.showHelp {
		return m.renderHelpOverlay(base)
	}
	return base
}

// waitForView blocks until the controller publishes the next view.
func (m Model) waitForView() tea.Cmd {
	views := m.dash.Views()
	return func() tea.Msg {
		v, ok := <-views
		if !ok {
			return nil
		}
		return viewMsg(v)
	}
}

// spinnerTickCmd returns a command that sends a spinner tick for animation.
func (m Model) spinnerTickCmd() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

// confirmLaunchCmd sends the launch request off the UI goroutine.
func (m Model) confirmLaunchCmd() tea.Cmd {
	gate := m.gate
	return func() tea.Msg {
		result, err := gate.Confirm(context.Background())
		return launchResultMsg{result: result, err: err}
	}
}

// CurrentView returns the view being rendered.
func (m Model) CurrentView() dashboard.View {
	return m.view
}

// Mode returns the current input mode.
func (m Model) Mode() ViewMode {
	return m.viewMode
}

// LaunchResult returns the last launch status line.
func (m Model) LaunchResult() string {
	return m.launchResult
}

// LayoutMode returns the current layout mode based on terminal width.
func (m Model) LayoutMode() LayoutMode {
	if m.width >= BreakpointCompact {
		return LayoutStandard
	}
	return LayoutMinimal
}

// contentWidth is the usable width, with a default before the first resize.
func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 100
	}
	return m.width
}

// logHeight is how many event rows fit below the graphs.
func (m Model) logHeight() int {
	if m.height <= 0 {
		return len(m.view.Rows)
	}
	used := 4 // header, blank, log header, footer
	if m.errorBar() != "" {
		used++
	}
	if m.statusLine() != "" {
		used++
	}
	used += m.graphLines()
	h := m.height - used
	if h < 3 {
		h = 3
	}
	return h
}

// syncLog refreshes the event log viewport after a view or size change.
func (m *Model) syncLog() {
	m.logViewport.Width = m.contentWidth()
	m.logViewport.Height = m.logHeight()
	m.logViewport.SetContent(m.renderLogRows())

	maxScroll := len(m.view.Rows) - m.logViewport.Height
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.scroll > maxScroll {
		m.scroll = maxScroll
	}
	m.logViewport.SetYOffset(m.scroll)
}
