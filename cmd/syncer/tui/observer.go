package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/syncer/pkg/syncer/controller"
)

// sender is the part of *tea.Program the observer needs.
type sender interface {
	Send(msg tea.Msg)
}

// Observer forwards controller signals to a running program as messages.
type Observer struct {
	program sender
}

// NewObserver returns an observer that sends to p.
func NewObserver(p *tea.Program) *Observer {
	return &Observer{program: p}
}

func (o *Observer) Started()                { o.program.Send(StartedMsg{}) }
func (o *Observer) Finished(message string) { o.program.Send(FinishedMsg{Message: message}) }
func (o *Observer) Failed(message string)   { o.program.Send(FailedMsg{Message: message}) }

var _ controller.Observer = (*Observer)(nil)

// Run shows the spinner while work executes. work receives an observer to
// hand to the controller. Run returns once both work and the UI are done and
// reports whether the run's final message made it to the screen.
func Run(opts Options, work func(controller.Observer), programOpts ...tea.ProgramOption) (bool, error) {
	p := tea.NewProgram(NewModel(opts), programOpts...)

	done := make(chan struct{})
	go func() {
		defer close(done)
		work(NewObserver(p))
	}()

	final, err := p.Run()
	<-done

	m, ok := final.(Model)
	return ok && m.Shown(), err
}
