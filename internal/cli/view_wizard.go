package cli

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// wizardView wraps a huh.Form as a View on the navigation stack.
// When the form completes, it sends a wizardCompleteMsg carrying the done
// callback's result; Esc sends one carrying the cancel callback's result.
type wizardView struct {
	state    *SharedState
	form     *huh.Form
	titleStr string
	done     func() tea.Cmd
	cancel   func() tea.Cmd
	finished bool
}

func newWizardView(state *SharedState, title string, form *huh.Form, done, cancel func() tea.Cmd) *wizardView {
	return &wizardView{
		state:    state,
		form:     form,
		titleStr: title,
		done:     done,
		cancel:   cancel,
	}
}

func (v *wizardView) Init() tea.Cmd {
	return v.form.Init()
}

func (v *wizardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if v.finished {
		return v, nil
	}

	// Escape cancels the wizard.
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		v.finished = true
		return v, complete(v.cancel)
	}

	form, cmd := v.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		v.form = f
	}

	switch v.form.State {
	case huh.StateCompleted:
		v.finished = true
		return v, complete(v.done)
	case huh.StateAborted:
		v.finished = true
		return v, complete(v.cancel)
	}

	return v, cmd
}

func complete(next func() tea.Cmd) tea.Cmd {
	var nextCmd tea.Cmd
	if next != nil {
		nextCmd = next()
	}
	return func() tea.Msg { return wizardCompleteMsg{nextCmd: nextCmd} }
}

func (v *wizardView) View() string {
	return v.form.View()
}

func (v *wizardView) CapturesInput() bool { return true }

func (v *wizardView) ID() ViewID    { return ViewForm }
func (v *wizardView) Title() string { return v.titleStr }
func (v *wizardView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "确认")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "取消")),
	}
}

// startWizardCmd is a helper that creates a tea.Cmd to push a wizardView.
func startWizardCmd(state *SharedState, title string, form *huh.Form, done, cancel func() tea.Cmd) tea.Cmd {
	return pushView(newWizardView(state, title, form, done, cancel))
}
