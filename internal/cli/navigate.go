package cli

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Navigation messages used by views to request view transitions.
// The appModel handles these in its Update method.

// pushViewMsg pushes a new view onto the navigation stack.
type pushViewMsg struct {
	view View
}

// popViewMsg pops the current view off the navigation stack,
// returning to the previous view.
type popViewMsg struct{}

// wizardCompleteMsg is sent when a wizard form completes or is cancelled.
// The appModel handles it atomically: pop the wizard view, then run nextCmd.
type wizardCompleteMsg struct {
	nextCmd tea.Cmd
}

// toastMsg replaces the transient status line under the header.
type toastMsg struct {
	text  string
	level toastLevel
}

type toastLevel int

const (
	toastSuccess toastLevel = iota
	toastError
	toastNotice
)

// reloadAppMsg rebuilds the whole model from scratch. gen is the generation
// that scheduled it; a reload scheduled by an older generation is dropped.
type reloadAppMsg struct {
	gen int
}

// pushView returns a tea.Cmd that pushes a view onto the stack.
func pushView(v View) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{view: v} }
}

// popView returns a tea.Cmd that pops the current view.
func popView() tea.Cmd {
	return func() tea.Msg { return popViewMsg{} }
}

func showToast(text string, level toastLevel) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: text, level: level} }
}

// tickAfter is the production scheduler: deliver msg once after d.
func tickAfter(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}
