package controller

// Observer receives the outcome signals of a run. For every run the
// controller accepts, Started is called exactly once, followed by exactly one
// of Finished or Failed. Rejected runs produce no signals.
type Observer interface {
	Started()
	Finished(message string)
	Failed(message string)
}

// ObserverFuncs adapts plain functions to an Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnStarted  func()
	OnFinished func(message string)
	OnFailed   func(message string)
}

func (o ObserverFuncs) Started() {
	if o.OnStarted != nil {
		o.OnStarted()
	}
}

func (o ObserverFuncs) Finished(message string) {
	if o.OnFinished != nil {
		o.OnFinished(message)
	}
}

func (o ObserverFuncs) Failed(message string) {
	if o.OnFailed != nil {
		o.OnFailed(message)
	}
}

// MultiObserver forwards every signal to each observer in order.
type MultiObserver []Observer

func (m MultiObserver) Started() {
	for _, o := range m {
		o.Started()
	}
}

func (m MultiObserver) Finished(message string) {
	for _, o := range m {
		o.Finished(message)
	}
}

func (m MultiObserver) Failed(message string) {
	for _, o := range m {
		o.Failed(message)
	}
}

type nopObserver struct{}

func (nopObserver) Started()        {}
func (nopObserver) Finished(string) {}
func (nopObserver) Failed(string)   {}
