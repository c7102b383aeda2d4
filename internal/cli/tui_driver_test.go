package cli

import (
	"testing"

	"github.com/alexanderramin/landminer/internal/teatest"
)

// TestDriver wraps teatest.Driver with landminer-specific inspection methods.
// It provides access to appModel internals (view stack, shared state, the
// mining view's modal flags) that the generic driver can't see.
type TestDriver struct {
	*teatest.Driver
	Timer *teatest.FakeTimer
}

// NewTestDriver creates a TestDriver from a test App.
// Every timer is routed to a FakeTimer, the terminal is sized and Init() is
// drained, which loads the dashboard synchronously from the fake API.
func NewTestDriver(t *testing.T, app *App) *TestDriver {
	t.Helper()

	timer := teatest.NewFakeTimer()
	state := newSharedState(app)
	state.After = timer.After

	m := newAppModelWithState(state)
	d := teatest.New(t, m, teatest.WithSize(120, 40))
	d.DrainInit()

	return &TestDriver{Driver: d, Timer: timer}
}

func (d *TestDriver) appModel() appModel {
	return d.Model.(appModel)
}

// ActiveViewID returns the ViewID of the top view on the stack.
func (d *TestDriver) ActiveViewID() ViewID {
	m := d.appModel()
	v := m.activeView()
	if v == nil {
		return ViewID(-1)
	}
	return v.ID()
}

// ViewStackLen returns the number of views on the stack.
func (d *TestDriver) ViewStackLen() int {
	return len(d.appModel().viewStack)
}

// State returns the shared state for inspection.
func (d *TestDriver) State() *SharedState {
	return d.appModel().state
}

// Mining returns the mining view at the bottom of the stack.
func (d *TestDriver) Mining() *miningView {
	m := d.appModel()
	return m.rootView()
}

// Toast returns the current toast text and level.
func (d *TestDriver) Toast() (string, toastLevel) {
	m := d.appModel()
	return m.toast, m.toastLevel
}

// IsQuitting returns whether the app has signaled a quit.
func (d *TestDriver) IsQuitting() bool {
	return d.appModel().quitting || d.Quitting
}
