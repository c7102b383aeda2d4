package cli

import (
	"strings"

	"github.com/alexanderramin/landminer/internal/cli/formatter"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// appModel owns the view stack and the one-line toast. The mining view is
// always at the bottom; history and confirm dialogs are pushed above it.
type appModel struct {
	state     *SharedState
	viewStack []View
	quitting  bool

	toast      string
	toastLevel toastLevel
}

func newAppModel(app *App) appModel {
	return newAppModelWithState(newSharedState(app))
}

func newAppModelWithState(state *SharedState) appModel {
	return appModel{
		state:     state,
		viewStack: []View{newMiningView(state)},
	}
}

func (m *appModel) activeView() View {
	if len(m.viewStack) == 0 {
		return nil
	}
	return m.viewStack[len(m.viewStack)-1]
}

func (m *appModel) setActiveView(v View) {
	if len(m.viewStack) > 0 {
		m.viewStack[len(m.viewStack)-1] = v
	}
}

// rootView returns the mining view at the bottom of the stack.
func (m *appModel) rootView() *miningView {
	if len(m.viewStack) == 0 {
		return nil
	}
	mv, _ := m.viewStack[0].(*miningView)
	return mv
}

func (m appModel) Init() tea.Cmd {
	if v := m.activeView(); v != nil {
		return v.Init()
	}
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		return m, m.broadcast(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case pushViewMsg:
		m.viewStack = append(m.viewStack, msg.view)
		return m, msg.view.Init()

	case popViewMsg:
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
		}
		return m, nil

	case wizardCompleteMsg:
		// Pop and run the follow-up in one step so the dialog never
		// renders over the action it started.
		if v := m.activeView(); v != nil && v.ID() == ViewForm && len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
		}
		return m, msg.nextCmd

	case toastMsg:
		m.toast = msg.text
		m.toastLevel = msg.level
		return m, nil

	case reloadAppMsg:
		if msg.gen != m.state.Generation {
			return m, nil
		}
		return m.reload()
	}

	// Timer and load results go to every view; each one drops what it does
	// not own.
	return m, m.broadcast(msg)
}

// reload discards every view and cached lookup and starts over with a fresh
// mining view under a new generation.
func (m appModel) reload() (tea.Model, tea.Cmd) {
	m.state.Generation++
	if app := m.state.App; app != nil && app.Mining != nil {
		app.Mining.Reset()
		app.log().Info("full reload", "generation", m.state.Generation)
	}
	v := newMiningView(m.state)
	m.viewStack = []View{v}
	return m, v.Init()
}

func (m *appModel) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i, v := range m.viewStack {
		updated, cmd := v.Update(msg)
		m.viewStack[i] = updated.(View)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	// Any key dismisses the toast.
	m.toast = ""

	// Open modals and forms get q and esc themselves.
	if v := m.activeView(); viewCapturesInput(v) {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	switch {
	case msg.String() == "q":
		m.quitting = true
		return m, tea.Quit

	case msg.Type == tea.KeyEsc:
		if len(m.viewStack) > 1 {
			m.viewStack = m.viewStack[:len(m.viewStack)-1]
		}
		return m, nil
	}

	if v := m.activeView(); v != nil {
		updated, cmd := v.Update(msg)
		m.setActiveView(updated.(View))
		return m, cmd
	}

	return m, nil
}

func (m appModel) View() string {
	if m.quitting {
		return ""
	}

	body := ""
	if v := m.activeView(); v != nil {
		body = v.View()
	}
	result := strings.Join([]string{m.renderHeader(), m.renderToast(), body, m.renderStatusBar()}, "\n")

	// The alt-screen renderer diffs by line; short frames leave stale rows.
	if m.state.Height > 0 {
		lines := strings.Count(result, "\n") + 1
		if lines < m.state.Height {
			result += strings.Repeat("\n", m.state.Height-lines)
		}
	}

	return result
}

func (m *appModel) renderHeader() string {
	title := formatter.StylePurple.Render("landminer")

	var crumbs []string
	for _, v := range m.viewStack {
		if t := v.Title(); t != "" {
			crumbs = append(crumbs, t)
		}
	}
	header := title
	if len(crumbs) > 0 {
		header += " " + formatter.Dim("›") + " " + formatter.Dim(strings.Join(crumbs, " › "))
	}

	if mv := m.rootView(); mv != nil {
		header += "  " + mv.countdown.View()
	}

	sep := formatter.Dim(strings.Repeat("─", max(m.state.Width, 20)))
	return header + "\n" + sep
}

func (m *appModel) renderToast() string {
	if m.toast == "" {
		return ""
	}
	switch m.toastLevel {
	case toastError:
		return formatter.Toast(m.toast, true)
	case toastNotice:
		return formatter.Notice(m.toast)
	default:
		return formatter.Toast(m.toast, false)
	}
}

func (m *appModel) renderStatusBar() string {
	var hints []string
	if v := m.activeView(); v != nil {
		for _, b := range v.ShortHelp() {
			hints = append(hints, formatter.Dim(b.Help().Key+": "+b.Help().Desc))
		}
	}

	if len(m.viewStack) > 1 && !viewCapturesInput(m.activeView()) {
		hints = append(hints, formatter.Dim("esc: 返回"))
	}
	hints = append(hints, formatter.Dim("q: 退出"))

	bar := strings.Join(hints, "  ")
	sepStyle := lipgloss.NewStyle().Foreground(formatter.ColorDim)
	sep := sepStyle.Render(strings.Repeat("─", max(m.state.Width, 20)))
	return sep + "\n" + bar
}

// viewCapturesInput reports whether v takes every key, global bindings
// included.
func viewCapturesInput(v View) bool {
	if v == nil {
		return false
	}
	c, ok := v.(inputCapturer)
	return ok && c.CapturesInput()
}
