package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/landminer/internal/cli/formatter"
	"github.com/alexanderramin/landminer/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type historyLoadedMsg struct {
	key     domain.SessionKey
	entries []*domain.ActionEntry
	err     error
}

// sessionHistoryView shows the locally journaled actions for one session
// next to the summary's recent settlements.
type sessionHistoryView struct {
	state       *SharedState
	session     domain.MiningSession
	settlements []domain.Settlement

	entries []*domain.ActionEntry
	loading bool
	err     error

	vp viewport.Model
}

func newSessionHistoryView(state *SharedState, session domain.MiningSession, summary *domain.MiningSummary) *sessionHistoryView {
	var settlements []domain.Settlement
	if summary != nil {
		for _, st := range summary.RecentSettlements {
			if st.ResourceType == "" || st.ResourceType == session.ResourceType {
				settlements = append(settlements, st)
			}
		}
	}
	vp := viewport.New(state.Width, state.ContentHeight())
	return &sessionHistoryView{
		state:       state,
		session:     session,
		settlements: settlements,
		loading:     true,
		vp:          vp,
	}
}

func (v *sessionHistoryView) ID() ViewID { return ViewSessionHistory }
func (v *sessionHistoryView) Title() string {
	return "历史 " + domain.CoalesceStr(v.session.LandName, "#"+v.session.Key.String())
}

func (v *sessionHistoryView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑↓", "滚动")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "刷新")),
	}
}

func (v *sessionHistoryView) Init() tea.Cmd {
	return v.load()
}

func (v *sessionHistoryView) load() tea.Cmd {
	v.loading = true
	mining := v.state.App.Mining
	k := v.session.Key
	return func() tea.Msg {
		entries, err := mining.SessionHistory(context.Background(), k)
		return historyLoadedMsg{key: k, entries: entries, err: err}
	}
}

func (v *sessionHistoryView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.key != v.session.Key {
			return v, nil
		}
		v.loading = false
		v.entries = msg.entries
		v.err = msg.err
		v.vp.SetContent(v.renderContent())
		return v, nil

	case tea.WindowSizeMsg:
		v.vp.Width = msg.Width
		v.vp.Height = v.state.ContentHeight()
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return v, v.load()
		case "backspace", "left":
			return v, popView()
		}
		var cmd tea.Cmd
		v.vp, cmd = v.vp.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *sessionHistoryView) View() string {
	if v.loading && v.entries == nil {
		return formatter.Dim("  加载中…")
	}
	if v.state.Height == 0 {
		return v.renderContent()
	}
	return v.vp.View()
}

func (v *sessionHistoryView) renderContent() string {
	var b strings.Builder
	s := v.session

	b.WriteString(formatter.RenderKeyValues([][2]string{
		{"会话", s.SessionID},
		{"土地", domain.CoalesceStr(s.LandName, s.LandID)},
		{"资源", formatter.ResourceBadge(s.ResourceType)},
		{"开始于", s.StartedAt},
		{"已运行", formatter.FormatDurationAt(s.StartedAt, "", v.state.Now())},
		{"待领取", formatter.FormatNumber(s.PendingOutput)},
	}))

	b.WriteString("\n")
	b.WriteString(formatter.Header("本地操作记录"))
	b.WriteString("\n")
	switch {
	case v.err != nil:
		b.WriteString(formatter.StyleRed.Render(v.err.Error()))
		b.WriteString("\n")
	case len(v.entries) == 0:
		b.WriteString(formatter.Dim("  暂无记录"))
		b.WriteString("\n")
	default:
		rows := make([][]string, 0, len(v.entries))
		for _, e := range v.entries {
			amount := "--"
			if e.Amount.Valid {
				amount = formatter.FormatNumber(e.Amount.Decimal)
			}
			rows = append(rows, []string{
				e.CreatedAt.Local().Format("01-02 15:04:05"),
				actionKindLabel(e.Kind),
				actionResultLabel(e.Result),
				amount,
				e.Message,
			})
		}
		b.WriteString(formatter.RenderTable([]string{"时间", "操作", "结果", "数量", "信息"}, rows))
	}

	if len(v.settlements) > 0 {
		b.WriteString("\n")
		b.WriteString(formatter.Header(fmt.Sprintf("最近结算 (%s)", s.ResourceType.Label())))
		b.WriteString("\n")
		b.WriteString(renderSettlements(v.settlements, 0))
	}
	return b.String()
}

func actionKindLabel(k domain.ActionKind) string {
	switch k {
	case domain.ActionStart:
		return "开始"
	case domain.ActionStop:
		return "停止"
	case domain.ActionStopAll:
		return "全部停止"
	case domain.ActionCollect:
		return "领取"
	default:
		return string(k)
	}
}

func actionResultLabel(r domain.ActionResult) string {
	switch r {
	case domain.ResultOK:
		return formatter.StyleGreen.Render("成功")
	case domain.ResultEmpty:
		return formatter.StyleYellow.Render("无数据")
	case domain.ResultError:
		return formatter.StyleRed.Render("失败")
	default:
		return string(r)
	}
}
