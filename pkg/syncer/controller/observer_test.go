package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObserverFuncs_NilFieldsAreSkipped(t *testing.T) {
	var got []string
	obs := ObserverFuncs{OnFinished: func(msg string) { got = append(got, msg) }}

	obs.Started()
	obs.Finished("done")
	obs.Failed("ignored")

	assert.Equal(t, []string{"done"}, got)
}

func TestMultiObserver_FansOut(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	multi := MultiObserver{a, b}

	multi.Started()
	multi.Failed("oops")

	want := []string{"started", "failed: oops"}
	assert.Equal(t, want, a.Events())
	assert.Equal(t, want, b.Events())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "finished", StateFinished.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "State(9)", State(9).String())
}
