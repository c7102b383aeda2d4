package cli

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// mobileWidth is the terminal width below which views switch to their
// compact layouts.
const mobileWidth = 80

// SharedState holds context shared across all views via pointer.
type SharedState struct {
	App *App

	// Generation increases on every full reload. Async results tagged with
	// an older generation belong to a discarded model.
	Generation int

	// Terminal dimensions
	Width  int
	Height int

	// After schedules msg for delivery once d has elapsed. Every timer in
	// the TUI goes through it so tests can capture and fire them by hand.
	After func(d time.Duration, msg tea.Msg) tea.Cmd

	nextID int
}

func newSharedState(app *App) *SharedState {
	return &SharedState{App: app, After: tickAfter}
}

// IsMobile reports whether the terminal is too narrow for the wide layouts.
func (s *SharedState) IsMobile() bool {
	return s.Width > 0 && s.Width < mobileWidth
}

// Now returns the app clock, falling back to the wall clock.
func (s *SharedState) Now() time.Time {
	if s.App != nil {
		return s.App.now()
	}
	return time.Now()
}

// newComponentID hands out ids used to tag timer messages with the
// component instance that owns them.
func (s *SharedState) newComponentID() int {
	s.nextID++
	return s.nextID
}

// ContentHeight returns the available height for view content,
// accounting for header (2 lines: title + separator),
// toast line (1 line) and status bar (2 lines: separator + hints).
func (s *SharedState) ContentHeight() int {
	h := s.Height - 5
	if h < 1 {
		return 1
	}
	return h
}
