// Package teatest drives bubbletea models synchronously in tests.
//
// A Driver stands in for tea.Program: every message goes straight through
// Update and the returned Cmds are executed and fed back until nothing is
// left. Timers belong on a FakeTimer so tests decide when time passes; a Cmd
// that still blocks (cursor blinks, a stray tea.Tick) is abandoned after a
// short wait.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds how many Cmd generations one Send may chain.
const MaxDrainDepth = 100

// cmdTimeout separates message factories, which return at once, from
// Cmds that sleep (cursor blinks wait about half a second).
const cmdTimeout = 10 * time.Millisecond

// Driver is a synchronous harness around one tea.Model.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once a tea.QuitMsg comes out of a Cmd. Later sends
	// are ignored, matching a program that has exited.
	Quitting bool
}

// Option adjusts a Driver before the test starts sending.
type Option func(*Driver)

// New wraps model. Init is not run until DrainInit.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithSize delivers a WindowSizeMsg first, without draining its Cmd.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Model, _ = d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// DrainInit runs the model's Init Cmd to completion.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drain(d.Model.Init(), 0)
}

// Send feeds msg through Update and drains whatever follows.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.drain(cmd, 0)
}

func (d *Driver) SendKey(msg tea.KeyMsg) {
	d.T.Helper()
	d.Send(msg)
}

func (d *Driver) press(t tea.KeyType) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: t})
}

// PressKey sends a single printable rune.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// Type presses each rune of s in order.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.PressKey(r)
	}
}

func (d *Driver) PressEnter() { d.T.Helper(); d.press(tea.KeyEnter) }
func (d *Driver) PressEsc()   { d.T.Helper(); d.press(tea.KeyEsc) }
func (d *Driver) PressCtrlC() { d.T.Helper(); d.press(tea.KeyCtrlC) }
func (d *Driver) PressUp()    { d.T.Helper(); d.press(tea.KeyUp) }
func (d *Driver) PressDown()  { d.T.Helper(); d.press(tea.KeyDown) }
func (d *Driver) PressTab()   { d.T.Helper(); d.press(tea.KeyTab) }

// PressSpace carries the rune as well, since bubbles keymaps match " ".
func (d *Driver) PressSpace() {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
}

// Fire removes every message on timer matching keep and delivers each as
// if its delay had run out. It reports how many were delivered.
func (d *Driver) Fire(timer *FakeTimer, keep func(Scheduled) bool) int {
	d.T.Helper()
	due := timer.Take(keep)
	for _, s := range due {
		d.Send(s.Msg)
	}
	return len(due)
}

// FireAfter fires the messages scheduled with exactly delay.
func (d *Driver) FireAfter(timer *FakeTimer, delay time.Duration) int {
	d.T.Helper()
	return d.Fire(timer, func(s Scheduled) bool { return s.Delay == delay })
}

func (d *Driver) View() string {
	return d.Model.View()
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest: gave up draining at depth %d", depth)
		return
	}

	msg := runCmd(cmd)
	if msg == nil || isCursorBlink(msg) {
		return
	}

	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, sub := range msg {
			d.drain(sub, depth+1)
		}
	case tea.QuitMsg:
		// The runtime normally swallows QuitMsg before the model sees it.
		d.Quitting = true
		d.Model, _ = d.Model.Update(msg)
	default:
		var next tea.Cmd
		d.Model, next = d.Model.Update(msg)
		d.drain(next, depth+1)
	}
}

// runCmd returns nil for a Cmd that has not produced a message within
// cmdTimeout. The goroutine is left to finish on its own.
func runCmd(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(cmdTimeout):
		return nil
	}
}

// isCursorBlink matches the unexported blink messages of bubbles/cursor,
// whose follow-up Cmds sleep.
func isCursorBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
