package teatest

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Scheduled is one message handed to a FakeTimer.
type Scheduled struct {
	Delay time.Duration
	Msg   tea.Msg
}

// FakeTimer stands in for tea.Tick. Models schedule through After; nothing
// is delivered until the test fires it.
type FakeTimer struct {
	mu      sync.Mutex
	pending []Scheduled
}

func NewFakeTimer() *FakeTimer {
	return &FakeTimer{}
}

// After records msg and returns a nil Cmd so draining does not block.
func (f *FakeTimer) After(d time.Duration, msg tea.Msg) tea.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, Scheduled{Delay: d, Msg: msg})
	return nil
}

// Pending returns the scheduled messages whose delay equals d, oldest first.
func (f *FakeTimer) Pending(d time.Duration) []Scheduled {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Scheduled
	for _, s := range f.pending {
		if s.Delay == d {
			out = append(out, s)
		}
	}
	return out
}

// Take removes and returns the scheduled messages matching keep.
func (f *FakeTimer) Take(keep func(Scheduled) bool) []Scheduled {
	f.mu.Lock()
	defer f.mu.Unlock()
	var taken, rest []Scheduled
	for _, s := range f.pending {
		if keep(s) {
			taken = append(taken, s)
		} else {
			rest = append(rest, s)
		}
	}
	f.pending = rest
	return taken
}
