package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/landminer/internal/cli/formatter"
	"github.com/alexanderramin/landminer/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

const countdownInterval = time.Second

// countdownTickMsg is tagged with the id of the countdown that scheduled it.
type countdownTickMsg struct {
	id int
}

// countdownModel shows the time left until the next hourly settlement. Each
// instance owns one tick chain; ticks for an instance that is no longer
// mounted are never rescheduled.
type countdownModel struct {
	state   *SharedState
	id      int
	current domain.Countdown
}

func newCountdown(state *SharedState) countdownModel {
	return countdownModel{
		state:   state,
		id:      state.newComponentID(),
		current: domain.NextSettlement(state.Now()),
	}
}

func (c countdownModel) Init() tea.Cmd {
	return c.schedule()
}

func (c countdownModel) schedule() tea.Cmd {
	return c.state.After(countdownInterval, countdownTickMsg{id: c.id})
}

func (c countdownModel) Update(msg tea.Msg) (countdownModel, tea.Cmd) {
	tick, ok := msg.(countdownTickMsg)
	if !ok || tick.id != c.id {
		return c, nil
	}
	c.current = domain.NextSettlement(c.state.Now())
	return c, c.schedule()
}

func (c countdownModel) View() string {
	if c.state == nil {
		return ""
	}
	return formatter.Dim("下次结算 ") + formatter.StyleYellow.Render(c.current.Time) +
		formatter.Dim(fmt.Sprintf(" · 还有 %d 分钟", c.current.Minutes))
}
