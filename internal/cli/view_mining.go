package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/landminer/internal/api"
	"github.com/alexanderramin/landminer/internal/cli/formatter"
	"github.com/alexanderramin/landminer/internal/domain"
	"github.com/alexanderramin/landminer/internal/service"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	stopAllReloadDelay  = 2 * time.Second
	defaultPollInterval = 30 * time.Second
	rateHistoryHours    = 24

	startFailedMsg   = "开始挖矿失败"
	stopFailedMsg    = "停止生产失败"
	stopAllFailedMsg = "停止全部会话失败"
	collectFailedMsg = "领取产出失败"
)

// miningAction names the mutating actions. actionNone doubles as "idle"
// for the in-flight state and "no dialog" for the confirm discriminator.
type miningAction int

const (
	actionNone miningAction = iota
	actionStart
	actionStop
	actionStopAll
	actionCollect
)

func (a miningAction) String() string {
	switch a {
	case actionStart:
		return "开始挖矿"
	case actionStop:
		return "停止生产"
	case actionStopAll:
		return "停止全部"
	case actionCollect:
		return "领取产出"
	default:
		return ""
	}
}

// ── messages ─────────────────────────────────────────────────────────────────

// Every async result carries the generation of the view that started it.

type dashboardLoadedMsg struct {
	gen  int
	dash *service.Dashboard
	err  error
}

type pollTickMsg struct {
	gen int
}

type confirmResultMsg struct {
	gen      int
	action   miningAction
	accepted bool
}

type startResultMsg struct {
	gen int
	out domain.Outcome[domain.StartResult]
	err error
}

type stopResultMsg struct {
	gen     int
	session domain.MiningSession
	out     domain.Outcome[domain.StopResult]
	err     error
}

type stopAllResultMsg struct {
	gen int
	out domain.Outcome[domain.StopAllResult]
	err error
}

type collectResultMsg struct {
	gen     int
	session domain.MiningSession
	out     domain.Outcome[domain.CollectResult]
	err     error
}

type ratesLoadedMsg struct {
	gen    int
	points []domain.RatePoint
	err    error
}

// ── view ─────────────────────────────────────────────────────────────────────

// miningView is the mining screen: summary, session cards and the modal
// flows for starting and stopping sessions.
type miningView struct {
	state *SharedState
	gen   int

	dash    *service.Dashboard
	loading bool
	err     error

	cursor    int
	cards     map[domain.SessionKey]*sessionCard
	countdown countdownModel
	compact   bool

	showPreCheck     bool
	showStartModal   bool
	showConfirmModal bool
	showRateHistory  bool
	confirmAction    miningAction
	targetSessionKey domain.SessionKey
	form             *startForm

	// inFlight is shared by every mutating action; while it is set no
	// other action can be triggered.
	inFlight miningAction

	rates        []domain.RatePoint
	ratesLoading bool
	ratesErr     error
}

func newMiningView(state *SharedState) *miningView {
	return &miningView{
		state:     state,
		gen:       state.Generation,
		loading:   true,
		cards:     make(map[domain.SessionKey]*sessionCard),
		countdown: newCountdown(state),
	}
}

func (v *miningView) ID() ViewID    { return ViewMining }
func (v *miningView) Title() string { return "挖矿" }

func (v *miningView) CapturesInput() bool {
	return v.showPreCheck || v.showStartModal || v.showRateHistory
}

func (v *miningView) ShortHelp() []key.Binding {
	switch {
	case v.showPreCheck:
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "继续")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "关闭")),
		}
	case v.showStartModal:
		return []key.Binding{
			key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "切换")),
			key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "选择")),
			key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "全选")),
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "提交")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "取消")),
		}
	case v.showRateHistory:
		return []key.Binding{
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "关闭")),
		}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "开始挖矿")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "停止")),
		key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "全部停止")),
		key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "领取")),
		key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "历史")),
		key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "YLD 速率")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "刷新")),
	}
}

func (v *miningView) Init() tea.Cmd {
	return tea.Batch(v.load(), v.countdown.Init(), v.schedulePoll())
}

// ── data loading ─────────────────────────────────────────────────────────────

func (v *miningView) load() tea.Cmd {
	v.loading = true
	mining := v.state.App.Mining
	gen := v.gen
	return func() tea.Msg {
		dash, err := mining.LoadDashboard(context.Background())
		return dashboardLoadedMsg{gen: gen, dash: dash, err: err}
	}
}

func (v *miningView) pollInterval() time.Duration {
	if d := v.state.App.PollInterval; d > 0 {
		return d
	}
	return defaultPollInterval
}

func (v *miningView) schedulePoll() tea.Cmd {
	return v.state.After(v.pollInterval(), pollTickMsg{gen: v.gen})
}

func (v *miningView) loadRates() tea.Cmd {
	v.ratesLoading = true
	v.ratesErr = nil
	mining := v.state.App.Mining
	gen := v.gen
	return func() tea.Msg {
		points, err := mining.RateHistory(context.Background(), rateHistoryHours)
		return ratesLoadedMsg{gen: gen, points: points, err: err}
	}
}

// ── update ───────────────────────────────────────────────────────────────────

func (v *miningView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v, v.handleKey(msg)

	case countdownTickMsg:
		var cmd tea.Cmd
		v.countdown, cmd = v.countdown.Update(msg)
		return v, cmd

	case cardTickMsg:
		for _, c := range v.cards {
			if cmd := c.Update(msg); cmd != nil {
				return v, cmd
			}
		}
		return v, nil
	}

	// Everything below belongs to one generation.
	if gen, ok := messageGeneration(msg); !ok || gen != v.gen {
		return v, nil
	}

	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		return v, v.applyDashboard(msg)

	case pollTickMsg:
		if v.loading {
			return v, v.schedulePoll()
		}
		return v, tea.Batch(v.load(), v.schedulePoll())

	case ratesLoadedMsg:
		v.ratesLoading = false
		v.rates = msg.points
		v.ratesErr = msg.err
		return v, nil

	case confirmResultMsg:
		return v, v.handleConfirm(msg)

	case startResultMsg:
		return v, v.handleStartResult(msg)

	case stopResultMsg:
		return v, v.handleStopResult(msg)

	case stopAllResultMsg:
		return v, v.handleStopAllResult(msg)

	case collectResultMsg:
		return v, v.handleCollectResult(msg)
	}
	return v, nil
}

func messageGeneration(msg tea.Msg) (int, bool) {
	switch m := msg.(type) {
	case dashboardLoadedMsg:
		return m.gen, true
	case pollTickMsg:
		return m.gen, true
	case ratesLoadedMsg:
		return m.gen, true
	case confirmResultMsg:
		return m.gen, true
	case startResultMsg:
		return m.gen, true
	case stopResultMsg:
		return m.gen, true
	case stopAllResultMsg:
		return m.gen, true
	case collectResultMsg:
		return m.gen, true
	}
	return 0, false
}

func (v *miningView) applyDashboard(msg dashboardLoadedMsg) tea.Cmd {
	v.loading = false
	if msg.err != nil {
		v.err = msg.err
		v.state.App.log().Warn("dashboard load failed", "error", msg.err)
		if errors.Is(msg.err, api.ErrUnauthorized) {
			return showToast("登录已失效，请检查令牌", toastError)
		}
		return nil
	}
	v.err = nil
	v.dash = msg.dash
	return v.syncCards()
}

// syncCards keeps one mounted card per displayed session. New sessions get a
// fresh card and tick chain; cards for sessions that left the list are
// dropped, which ends their tick chain.
func (v *miningView) syncCards() tea.Cmd {
	var cmds []tea.Cmd
	seen := make(map[domain.SessionKey]bool)
	for _, s := range v.sessions() {
		seen[s.Key] = true
		if _, ok := v.cards[s.Key]; ok {
			continue
		}
		c := newSessionCard(v.state, s.Key)
		v.cards[s.Key] = c
		cmds = append(cmds, c.Init())
	}
	for k := range v.cards {
		if !seen[k] {
			delete(v.cards, k)
		}
	}
	if n := len(v.sessions()); v.cursor >= n {
		v.cursor = max(n-1, 0)
	}
	return tea.Batch(cmds...)
}

func (v *miningView) sessions() []domain.MiningSession {
	if v.dash == nil {
		return nil
	}
	return v.dash.Display
}

func (v *miningView) selected() (domain.MiningSession, bool) {
	list := v.sessions()
	if v.cursor < 0 || v.cursor >= len(list) {
		return domain.MiningSession{}, false
	}
	return list[v.cursor], true
}

// ── keys ─────────────────────────────────────────────────────────────────────

func (v *miningView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case v.showPreCheck:
		return v.handlePreCheckKey(msg)
	case v.showStartModal:
		return v.handleFormKey(msg)
	case v.showRateHistory:
		switch msg.String() {
		case "esc", "q", "y":
			v.showRateHistory = false
		case "r":
			return v.loadRates()
		}
		return nil
	}

	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.sessions())-1 {
			v.cursor++
		}
	case "n":
		return v.openPreCheck()
	case "s":
		return v.requestStop()
	case "S":
		return v.requestStopAll()
	case "c":
		return v.collect()
	case "h":
		if s, ok := v.selected(); ok {
			return pushView(newSessionHistoryView(v.state, s, v.dash.Summary))
		}
	case "y":
		v.showRateHistory = true
		return v.loadRates()
	case "v":
		v.compact = !v.compact
	case "r":
		return v.load()
	}
	return nil
}

// busy reports whether an action is outstanding and, if so, returns the
// notice to show instead of starting another one.
func (v *miningView) busy() (tea.Cmd, bool) {
	if v.inFlight == actionNone {
		return nil, false
	}
	return showToast(fmt.Sprintf("%s处理中，请稍候", v.inFlight), toastNotice), true
}

func (v *miningView) openPreCheck() tea.Cmd {
	if cmd, busy := v.busy(); busy {
		return cmd
	}
	if v.dash == nil {
		return showToast("数据加载中", toastNotice)
	}
	v.showPreCheck = true
	return nil
}

func (v *miningView) handlePreCheckKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		v.showPreCheck = false
	case "enter":
		if len(preCheckBlockers(v.dash)) > 0 {
			return nil
		}
		v.showPreCheck = false
		v.showStartModal = true
		v.form = newStartForm(v.dash.Lands, v.dash.Tools)
	}
	return nil
}

func (v *miningView) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch v.form.Update(msg) {
	case formCancel:
		v.closeStart()
	case formSubmit:
		return v.openConfirm(actionStart)
	}
	return nil
}

func (v *miningView) requestStop() tea.Cmd {
	if cmd, busy := v.busy(); busy {
		return cmd
	}
	s, ok := v.selected()
	if !ok {
		return nil
	}
	v.targetSessionKey = s.Key
	return v.openConfirm(actionStop)
}

func (v *miningView) requestStopAll() tea.Cmd {
	if cmd, busy := v.busy(); busy {
		return cmd
	}
	if len(v.sessions()) == 0 {
		return showToast("没有进行中的会话", toastNotice)
	}
	return v.openConfirm(actionStopAll)
}

// openConfirm raises the confirm dialog for action. The answer comes back
// as a confirmResultMsg once the dialog closes.
func (v *miningView) openConfirm(action miningAction) tea.Cmd {
	v.confirmAction = action
	v.showConfirmModal = true

	var accepted bool
	gen := v.gen
	answer := func(ok bool) func() tea.Cmd {
		return func() tea.Cmd {
			yes := ok && accepted
			return func() tea.Msg { return confirmResultMsg{gen: gen, action: action, accepted: yes} }
		}
	}
	title, desc := v.confirmText(action)
	form := newConfirmForm(title, desc, &accepted)
	return startWizardCmd(v.state, "确认", form, answer(true), answer(false))
}

func (v *miningView) confirmText(action miningAction) (string, string) {
	switch action {
	case actionStart:
		landID, _ := v.form.LandID()
		label := v.form.lands.SelectedLabel()
		if label == "" {
			label = fmt.Sprintf("#%d", landID)
		}
		est := v.form.Estimate()
		return "确认开始挖矿？", fmt.Sprintf("土地 %s · 工具 %d 个 · 预计消耗 粮食 %d/小时 · 耐久 %d/小时",
			label, len(v.form.SelectedToolIDs()), est.Food, est.Durability)
	case actionStop:
		s, _ := v.dash.FindSession(v.targetSessionKey)
		return "确认停止生产？", fmt.Sprintf("%s · 待领取 %s", domain.CoalesceStr(s.LandName, "#"+v.targetSessionKey.String()),
			formatter.FormatNumber(s.PendingOutput))
	case actionStopAll:
		return "确认停止全部会话？", fmt.Sprintf("将停止 %d 个进行中的会话，完成后页面会重新加载", len(v.sessions()))
	}
	return "", ""
}

func (v *miningView) handleConfirm(msg confirmResultMsg) tea.Cmd {
	v.showConfirmModal = false
	v.confirmAction = actionNone
	if !msg.accepted {
		if msg.action == actionStop {
			v.targetSessionKey = 0
		}
		return nil
	}
	if cmd, busy := v.busy(); busy {
		return cmd
	}

	switch msg.action {
	case actionStart:
		return v.executeStart()
	case actionStop:
		return v.executeStop()
	case actionStopAll:
		return v.executeStopAll()
	}
	return nil
}

// ── actions ──────────────────────────────────────────────────────────────────

func (v *miningView) executeStart() tea.Cmd {
	if v.form == nil {
		return nil
	}
	landID, _ := v.form.LandID()
	req := api.StartRequest{LandID: landID, ToolIDs: v.form.SelectedToolIDs()}

	v.inFlight = actionStart
	mining := v.state.App.Mining
	gen := v.gen
	return func() tea.Msg {
		out, err := mining.StartMining(context.Background(), req)
		return startResultMsg{gen: gen, out: out, err: err}
	}
}

func (v *miningView) handleStartResult(msg startResultMsg) tea.Cmd {
	v.inFlight = actionNone
	v.closeStart()

	var toast tea.Cmd
	switch {
	case msg.err != nil:
		toast = showToast(api.UserMessage(msg.err, startFailedMsg), toastError)
	case msg.out.Kind() == domain.OutcomeEmpty:
		toast = showToast("请求已完成，服务器未返回会话信息", toastNotice)
	default:
		toast = showToast(fmt.Sprintf("挖矿已开始 · 会话 %s · 算法 %s",
			msg.out.Data.SessionID, msg.out.Data.AlgorithmVersion), toastSuccess)
	}
	return tea.Batch(toast, v.load())
}

func (v *miningView) executeStop() tea.Cmd {
	s, ok := v.dash.FindSession(v.targetSessionKey)
	if !ok {
		v.targetSessionKey = 0
		return tea.Batch(showToast("会话已不存在", toastNotice), v.load())
	}

	v.inFlight = actionStop
	mining := v.state.App.Mining
	gen := v.gen
	return func() tea.Msg {
		out, err := mining.StopSession(context.Background(), s)
		return stopResultMsg{gen: gen, session: s, out: out, err: err}
	}
}

func (v *miningView) handleStopResult(msg stopResultMsg) tea.Cmd {
	v.inFlight = actionNone
	v.targetSessionKey = 0

	var toast tea.Cmd
	switch {
	case msg.err != nil:
		toast = showToast(api.UserMessage(msg.err, stopFailedMsg), toastError)
	case msg.out.Kind() == domain.OutcomeEmpty:
		toast = showToast("停止请求已完成，服务器未返回结算数据", toastNotice)
	default:
		collected := msg.out.Data.CollectedOr(msg.session.PendingOutput)
		toast = showToast("已停止生产 · 共领取 "+formatter.FormatNumber(collected), toastSuccess)
	}
	return tea.Batch(toast, v.load())
}

func (v *miningView) executeStopAll() tea.Cmd {
	v.inFlight = actionStopAll
	mining := v.state.App.Mining
	gen := v.gen
	return func() tea.Msg {
		out, err := mining.StopAll(context.Background())
		return stopAllResultMsg{gen: gen, out: out, err: err}
	}
}

// handleStopAllResult shows the outcome and, unless the call failed,
// schedules exactly one full reload. inFlight stays set until the reload
// replaces this view.
func (v *miningView) handleStopAllResult(msg stopAllResultMsg) tea.Cmd {
	if msg.err != nil {
		v.inFlight = actionNone
		return tea.Batch(showToast(api.UserMessage(msg.err, stopAllFailedMsg), toastError), v.load())
	}

	var toast tea.Cmd
	if msg.out.Kind() == domain.OutcomeEmpty {
		toast = showToast("已提交全部停止请求，即将重新加载", toastNotice)
	} else {
		text := fmt.Sprintf("已停止 %d 个会话", msg.out.Data.StoppedCount)
		if msg.out.Data.TotalCollected.Valid {
			text += " · 共领取 " + formatter.FormatNumber(msg.out.Data.TotalCollected.Decimal)
		}
		toast = showToast(text+"，即将重新加载", toastSuccess)
	}
	return tea.Batch(toast, v.state.After(stopAllReloadDelay, reloadAppMsg{gen: v.gen}))
}

func (v *miningView) collect() tea.Cmd {
	if cmd, busy := v.busy(); busy {
		return cmd
	}
	s, ok := v.selected()
	if !ok {
		return nil
	}

	v.inFlight = actionCollect
	mining := v.state.App.Mining
	gen := v.gen
	return func() tea.Msg {
		out, err := mining.CollectOutput(context.Background(), s)
		return collectResultMsg{gen: gen, session: s, out: out, err: err}
	}
}

func (v *miningView) handleCollectResult(msg collectResultMsg) tea.Cmd {
	v.inFlight = actionNone

	var toast tea.Cmd
	switch {
	case msg.err != nil:
		toast = showToast(api.UserMessage(msg.err, collectFailedMsg), toastError)
	case msg.out.Kind() == domain.OutcomeEmpty || !msg.out.Data.Collected.Valid:
		toast = showToast("领取请求已完成，服务器未返回数量", toastNotice)
	default:
		toast = showToast("已领取 "+formatter.FormatNumber(msg.out.Data.Collected.Decimal), toastSuccess)
	}
	return tea.Batch(toast, v.load())
}

// closeStart closes every start-related modal and clears the selection.
func (v *miningView) closeStart() {
	v.showPreCheck = false
	v.showStartModal = false
	v.form = nil
	if v.confirmAction == actionStart {
		v.showConfirmModal = false
		v.confirmAction = actionNone
	}
}

// ── rendering ────────────────────────────────────────────────────────────────

func (v *miningView) View() string {
	switch {
	case v.showPreCheck:
		return renderPreCheck(v.dash)
	case v.showStartModal && v.form != nil:
		return formatter.RenderBox("开始挖矿", v.form.View())
	case v.showRateHistory:
		return v.renderRates()
	}

	if v.dash == nil {
		if v.err != nil {
			return formatter.RenderBox("加载失败", formatter.StyleRed.Render(v.err.Error())+"\n\n"+formatter.Dim("r: 重试"))
		}
		return formatter.Dim("  加载中…")
	}

	var b strings.Builder
	mobile := v.state.IsMobile()

	if card := renderSummaryCard(v.dash.Summary, mobile || v.compact); card != "" {
		b.WriteString(card)
		b.WriteString("\n")
	}
	if v.dash.Stale {
		b.WriteString(formatter.Notice("概览来自 " + v.dash.StaleAt.Local().Format("01-02 15:04") + " 的本地快照"))
		b.WriteString("\n")
	}
	if v.dash.DisplayStale {
		b.WriteString(formatter.Notice("会话列表无法刷新，显示的是快照中的会话"))
		b.WriteString("\n")
	}
	if v.err != nil {
		b.WriteString(formatter.StyleRed.Render("刷新失败: " + v.err.Error()))
		b.WriteString("\n")
	}
	for _, w := range v.dash.Warnings {
		b.WriteString(formatter.Dim("! " + w))
		b.WriteString("\n")
	}

	list := v.sessions()
	b.WriteString("\n")
	b.WriteString(formatter.Header(fmt.Sprintf("进行中的会话 (%d)", len(list))))
	b.WriteString("\n")
	if len(list) == 0 {
		b.WriteString(formatter.Dim("  暂无进行中的会话，按 n 开始挖矿"))
		b.WriteString("\n")
	}
	for i, s := range list {
		c, ok := v.cards[s.Key]
		if ok {
			b.WriteString(c.View(s, i == v.cursor))
		} else {
			b.WriteString(renderSessionCard(s, i == v.cursor, mobile, v.state.Now()))
		}
		b.WriteString("\n")
	}

	if v.inFlight != actionNone {
		b.WriteString(formatter.StyleYellow.Render(fmt.Sprintf("⋯ %s处理中", v.inFlight)))
		b.WriteString("\n")
	}

	return b.String()
}

func (v *miningView) renderRates() string {
	var content string
	switch {
	case v.ratesLoading:
		content = formatter.Dim("加载中…")
	case v.ratesErr != nil:
		content = formatter.StyleRed.Render(api.UserMessage(v.ratesErr, "加载速率历史失败"))
	case len(v.rates) == 0:
		content = formatter.Dim("暂无速率数据")
	default:
		rows := make([][]string, 0, len(v.rates))
		for _, p := range v.rates {
			rows = append(rows, []string{
				p.Hour,
				formatter.FormatNumber(p.Rate),
				fmt.Sprintf("%d", p.ActiveUsers),
				formatter.FormatNumber(p.TotalOutput),
			})
		}
		content = formatter.RenderTable([]string{"时间", "速率", "活跃用户", "总产出"}, rows)
	}
	return formatter.RenderBox(fmt.Sprintf("YLD 速率 (近 %d 小时)", rateHistoryHours), content)
}
