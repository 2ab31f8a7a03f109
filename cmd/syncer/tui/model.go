package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Phase is the run phase shown by the model.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseRunning
	PhaseFinished
	PhaseFailed
)

// StartedMsg is sent when the run starts.
type StartedMsg struct{}

// FinishedMsg is sent when the run finishes successfully.
type FinishedMsg struct{ Message string }

// FailedMsg is sent when the run fails.
type FailedMsg struct{ Message string }

// Options describes what is being synchronized.
type Options struct {
	LocalFile  string
	RemoteFile string
	DryRun     bool
}

// Model is a single-line spinner that turns into the run's final message.
type Model struct {
	opts      Options
	spinner   spinner.Model
	phase     Phase
	message   string
	startTime time.Time
	elapsed   time.Duration
	width     int
	hidden    bool
	now       func() time.Time
}

// NewModel creates a model in the waiting phase.
func NewModel(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		opts:    opts,
		spinner: s,
		phase:   PhaseWaiting,
		width:   80,
		now:     time.Now,
	}
}

// Phase returns the current phase.
func (m Model) Phase() Phase {
	return m.phase
}

// Message returns the terminal message, empty while running.
func (m Model) Message() string {
	return m.message
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles run signals, resizes and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			// the run itself cannot be cancelled, only the display
			m.hidden = true
			return m, tea.Quit
		}
		return m, nil

	case StartedMsg:
		m.phase = PhaseRunning
		m.startTime = m.now()
		return m, nil

	case FinishedMsg:
		return m.finish(PhaseFinished, msg.Message), tea.Quit

	case FailedMsg:
		return m.finish(PhaseFailed, msg.Message), tea.Quit

	case spinner.TickMsg:
		if m.done() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) finish(phase Phase, message string) Model {
	m.phase = phase
	m.message = message
	if !m.startTime.IsZero() {
		m.elapsed = m.now().Sub(m.startTime)
	}
	return m
}

// Shown reports whether the final message was rendered on screen. It is
// false when the display was closed before the run ended.
func (m Model) Shown() bool {
	return !m.hidden && m.done()
}

func (m Model) done() bool {
	return m.phase == PhaseFinished || m.phase == PhaseFailed
}

// View renders the model.
func (m Model) View() string {
	if m.hidden {
		return mutedTextStyle.Render("Display closed, waiting for the synchronization to finish...") + "\n"
	}

	switch m.phase {
	case PhaseFinished:
		return successTextStyle.Render("✓ "+m.message) + m.renderElapsed() + "\n"
	case PhaseFailed:
		return errorTextStyle.Render("✗ "+m.message) + m.renderElapsed() + "\n"
	}

	verb := "Synchronizing"
	if m.opts.DryRun {
		verb = "Checking"
	}
	line := fmt.Sprintf("%s %s %s", m.spinner.View(), titleStyle.Render(verb), m.describeTarget())
	return truncate(line, m.width) + "\n"
}

func (m Model) describeTarget() string {
	if m.opts.LocalFile == "" && m.opts.RemoteFile == "" {
		return ""
	}
	return mutedTextStyle.Render(m.opts.LocalFile + " ⇄ " + m.opts.RemoteFile)
}

func (m Model) renderElapsed() string {
	if m.elapsed <= 0 {
		return ""
	}
	return mutedTextStyle.Render(fmt.Sprintf(" (%s)", m.elapsed.Round(10*time.Millisecond)))
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return strings.TrimRight(string(runes), " ") + "…"
}
