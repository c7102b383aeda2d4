package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/landminer/internal/cli/formatter"
	"github.com/alexanderramin/landminer/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const cardRefreshInterval = 60 * time.Second

// cardTickMsg is tagged with the id of the card that scheduled it.
type cardTickMsg struct {
	id int
}

// sessionCard is the mounted instance behind one displayed session. Its
// tick only forces a re-render; every number on the card comes from the
// server.
type sessionCard struct {
	state   *SharedState
	id      int
	key     domain.SessionKey
	renders int
}

func newSessionCard(state *SharedState, key domain.SessionKey) *sessionCard {
	return &sessionCard{state: state, id: state.newComponentID(), key: key}
}

func (c *sessionCard) Init() tea.Cmd {
	return c.schedule()
}

func (c *sessionCard) schedule() tea.Cmd {
	return c.state.After(cardRefreshInterval, cardTickMsg{id: c.id})
}

// Update handles the card's own tick and ignores everything else.
func (c *sessionCard) Update(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(cardTickMsg)
	if !ok || tick.id != c.id {
		return nil
	}
	c.renders++
	return c.schedule()
}

func (c *sessionCard) View(s domain.MiningSession, selected bool) string {
	return renderSessionCard(s, selected, c.state.IsMobile(), c.state.Now())
}

func renderSessionCard(s domain.MiningSession, selected, mobile bool, now time.Time) string {
	title := fmt.Sprintf("%s %s %s",
		formatter.Bold(domain.CoalesceStr(s.LandName, s.LandID, "#"+s.Key.String())),
		formatter.ResourceBadge(s.ResourceType),
		formatter.AlgorithmBadge(s.AlgorithmVersion),
	)

	elapsed := formatter.FormatDurationAt(s.StartedAt, "", now)
	lastSettled := "--"
	if s.LastSettlementHour != nil && *s.LastSettlementHour != "" {
		lastSettled = *s.LastSettlementHour
	}

	var body string
	if mobile {
		body = strings.Join([]string{
			title,
			formatter.RenderHourProgress(s.CurrentHourMinutes, 12),
			formatter.KeyValue("待领取", formatter.FormatNumber(s.PendingOutput)) + "  " +
				formatter.KeyValue("已结算", fmt.Sprintf("%d小时", s.SettledHours)),
		}, "\n")
	} else {
		body = strings.Join([]string{
			title + "  " + formatter.HourStatusPill(s.CurrentHourStatus),
			formatter.RenderHourProgress(s.CurrentHourMinutes, 30),
			formatter.KeyValue("待领取", formatter.StyleGreen.Render(formatter.FormatNumber(s.PendingOutput))) + "   " +
				formatter.KeyValue("已结算", fmt.Sprintf("%d小时", s.SettledHours)) + "   " +
				formatter.KeyValue("累计工时", formatter.FormatNumber(s.TotalHoursWorked)+"小时"),
			formatter.KeyValue("工具", fmt.Sprintf("%d", s.ToolCount)) + "   " +
				formatter.KeyValue("粮食消耗", formatter.FormatNumber(s.FoodConsumptionRate)+"/小时") + "   " +
				formatter.KeyValue("已运行", elapsed) + "   " +
				formatter.KeyValue("上次结算", lastSettled),
			formatter.KeyValue("会话", formatter.TruncID(s.SessionID)),
		}, "\n")
	}

	border := formatter.ColorDim
	if selected {
		border = formatter.ColorHeader
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	return style.Render(body)
}
