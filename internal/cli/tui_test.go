package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/landminer/internal/api"
	"github.com/alexanderramin/landminer/internal/domain"
	"github.com/alexanderramin/landminer/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startableAPI has one land and one eligible tool, and nothing running.
func startableAPI() *testutil.FakeAPI {
	return &testutil.FakeAPI{
		Sessions: []domain.MiningSession{},
		Lands:    []domain.Land{testutil.NewTestLand(1)},
		Tools: []domain.Tool{
			testutil.NewTestTool(10),
			testutil.NewTestTool(11, testutil.WithInUse()),
		},
		StartOut: domain.Outcome[domain.StartResult]{Data: &domain.StartResult{
			SessionID:        "MS-9001",
			SessionPK:        9001,
			AlgorithmVersion: "v2",
		}},
	}
}

// openStartForm walks Idle → PreCheck → StartForm.
func openStartForm(t *testing.T, d *TestDriver) {
	t.Helper()
	d.PressKey('n')
	require.True(t, d.Mining().showPreCheck)
	d.PressEnter()
	require.True(t, d.Mining().showStartModal)
}

// fillStartForm picks the first land and the first tool, then submits.
func fillStartForm(d *TestDriver) {
	d.PressEnter() // open land dropdown
	d.PressEnter() // select first land
	d.PressTab()   // focus tools
	d.PressSpace() // toggle first tool
	d.PressEnter() // submit
}

func TestMining_StartButtonOpensPreCheckFirst(t *testing.T) {
	d := NewTestDriver(t, testApp(t, startableAPI()))

	assert.Contains(t, d.View(), "暂无进行中的会话")

	d.PressKey('n')
	m := d.Mining()
	assert.True(t, m.showPreCheck)
	assert.False(t, m.showStartModal)
	assert.Contains(t, d.View(), "开始前检查")
	assert.Contains(t, d.View(), "可以开始挖矿")
}

func TestMining_PreCheckBlocksWithoutEligibleTools(t *testing.T) {
	fake := startableAPI()
	fake.Tools = []domain.Tool{testutil.NewTestTool(10, testutil.WithDurability(0))}
	d := NewTestDriver(t, testApp(t, fake))

	d.PressKey('n')
	d.PressEnter()

	m := d.Mining()
	assert.True(t, m.showPreCheck)
	assert.False(t, m.showStartModal)
	assert.Contains(t, d.View(), "没有可用的工具")

	d.PressEsc()
	assert.False(t, d.Mining().showPreCheck)
}

func TestMining_StartFlow(t *testing.T) {
	fake := startableAPI()
	d := NewTestDriver(t, testApp(t, fake))

	openStartForm(t, d)
	fillStartForm(d)

	m := d.Mining()
	assert.Equal(t, ViewForm, d.ActiveViewID())
	assert.True(t, m.showConfirmModal)
	assert.Equal(t, actionStart, m.confirmAction)
	assert.Contains(t, d.View(), "确认开始挖矿")

	d.PressEnter() // accept

	assert.Equal(t, ViewMining, d.ActiveViewID())
	require.Len(t, fake.StartReqs, 1)
	assert.Equal(t, api.StartRequest{LandID: 1, ToolIDs: []int64{10}}, fake.StartReqs[0])

	m = d.Mining()
	assert.False(t, m.showPreCheck)
	assert.False(t, m.showStartModal)
	assert.False(t, m.showConfirmModal)
	assert.Equal(t, actionNone, m.confirmAction)
	assert.Equal(t, actionNone, m.inFlight)
	assert.Nil(t, m.form)

	text, level := d.Toast()
	assert.Equal(t, toastSuccess, level)
	assert.Contains(t, text, "MS-9001")
	assert.Contains(t, text, "v2")
}

func TestMining_StartRefreshesAfterwards(t *testing.T) {
	fake := startableAPI()
	d := NewTestDriver(t, testApp(t, fake))
	before := fake.CallCount("ListSessions")

	openStartForm(t, d)
	fillStartForm(d)
	d.PressEnter()

	assert.Equal(t, before+1, fake.CallCount("ListSessions"))
}

func TestMining_StartFailureUsesServerMessage(t *testing.T) {
	fake := startableAPI()
	fake.StartErr = &api.Error{Status: 400, Message: "土地已被占用"}
	d := NewTestDriver(t, testApp(t, fake))

	openStartForm(t, d)
	fillStartForm(d)
	d.PressEnter()

	text, level := d.Toast()
	assert.Equal(t, toastError, level)
	assert.Equal(t, "土地已被占用", text)
	assert.False(t, d.Mining().showStartModal)
}

func TestMining_StartFailureFallback(t *testing.T) {
	fake := startableAPI()
	fake.StartErr = errors.New("connection reset")
	d := NewTestDriver(t, testApp(t, fake))

	openStartForm(t, d)
	fillStartForm(d)
	d.PressEnter()

	text, level := d.Toast()
	assert.Equal(t, toastError, level)
	assert.Equal(t, startFailedMsg, text)
}

func TestMining_StartEmptyOutcomeShowsNotice(t *testing.T) {
	fake := startableAPI()
	fake.StartOut = domain.Outcome[domain.StartResult]{}
	d := NewTestDriver(t, testApp(t, fake))

	openStartForm(t, d)
	fillStartForm(d)
	d.PressEnter()

	text, level := d.Toast()
	assert.Equal(t, toastNotice, level)
	assert.Contains(t, text, "未返回会话信息")
	assert.False(t, d.Mining().showStartModal)
}

func TestMining_StartValidationBlocksSubmit(t *testing.T) {
	fake := startableAPI()
	d := NewTestDriver(t, testApp(t, fake))
	openStartForm(t, d)

	// Tools chosen, land left empty.
	d.PressTab()
	d.PressSpace()
	d.PressEnter()

	m := d.Mining()
	assert.True(t, m.showStartModal)
	assert.True(t, m.form.showLandError)
	assert.False(t, m.form.showToolsError)
	assert.Equal(t, ViewMining, d.ActiveViewID())
	assert.Equal(t, 0, fake.CallCount("StartMining"))
	assert.Contains(t, d.View(), landRequiredMsg)
}

func TestMining_CancelConfirmKeepsStartForm(t *testing.T) {
	fake := startableAPI()
	d := NewTestDriver(t, testApp(t, fake))
	openStartForm(t, d)
	fillStartForm(d)
	require.Equal(t, ViewForm, d.ActiveViewID())

	d.PressEsc()

	m := d.Mining()
	assert.Equal(t, ViewMining, d.ActiveViewID())
	assert.False(t, m.showConfirmModal)
	assert.Equal(t, actionNone, m.confirmAction)
	assert.True(t, m.showStartModal)
	assert.Equal(t, []int64{10}, m.form.SelectedToolIDs())
	assert.Equal(t, 0, fake.CallCount("StartMining"))
}

func TestMining_EscClosesStartForm(t *testing.T) {
	d := NewTestDriver(t, testApp(t, startableAPI()))
	openStartForm(t, d)

	d.PressEsc()

	assert.False(t, d.Mining().showStartModal)
	assert.Nil(t, d.Mining().form)
	assert.False(t, d.IsQuitting())
}

func TestMining_QDoesNotQuitInsideModal(t *testing.T) {
	d := NewTestDriver(t, testApp(t, startableAPI()))
	openStartForm(t, d)

	d.PressKey('q')
	assert.False(t, d.IsQuitting())
}

// ── stop ─────────────────────────────────────────────────────────────────────

func TestMining_StopFallsBackToPendingOutput(t *testing.T) {
	s := testutil.NewTestSession("North Field", testutil.WithPending("12.5"))
	fake := &testutil.FakeAPI{
		Summary: testutil.NewTestSummary(s),
		StopOut: domain.Outcome[domain.StopResult]{Data: &domain.StopResult{}},
	}
	d := NewTestDriver(t, testApp(t, fake))

	d.PressKey('s')
	m := d.Mining()
	assert.Equal(t, ViewForm, d.ActiveViewID())
	assert.Equal(t, actionStop, m.confirmAction)
	assert.Equal(t, s.Key, m.targetSessionKey)

	d.PressEnter()

	assert.Equal(t, []domain.SessionKey{s.Key}, fake.Stopped)
	text, level := d.Toast()
	assert.Equal(t, toastSuccess, level)
	assert.Contains(t, text, "12.500")
	assert.Equal(t, domain.SessionKey(0), d.Mining().targetSessionKey)
}

func TestMining_StopShowsServerTotal(t *testing.T) {
	s := testutil.NewTestSession("North Field", testutil.WithPending("12.5"))
	fake := &testutil.FakeAPI{
		Summary: testutil.NewTestSummary(s),
		StopOut: domain.Outcome[domain.StopResult]{Data: &domain.StopResult{
			TotalCollected: decimal.NewNullDecimal(decimal.NewFromInt(30)),
		}},
	}
	d := NewTestDriver(t, testApp(t, fake))

	d.PressKey('s')
	d.PressEnter()

	text, _ := d.Toast()
	assert.Contains(t, text, "30.000")
}

func TestMining_StopFailureFallback(t *testing.T) {
	s := testutil.NewTestSession("North Field")
	fake := &testutil.FakeAPI{
		Summary: testutil.NewTestSummary(s),
		StopErr: errors.New("boom"),
	}
	d := NewTestDriver(t, testApp(t, fake))

	d.PressKey('s')
	d.PressEnter()

	text, level := d.Toast()
	assert.Equal(t, toastError, level)
	assert.Equal(t, stopFailedMsg, text)
	assert.Equal(t, actionNone, d.Mining().inFlight)
}

func TestMining_StopTargetsSelectedCard(t *testing.T) {
	a := testutil.NewTestSession("Field A")
	b := testutil.NewTestSession("Field B")
	fake := &testutil.FakeAPI{
		Summary: testutil.NewTestSummary(a, b),
		StopOut: domain.Outcome[domain.StopResult]{Data: &domain.StopResult{}},
	}
	d := NewTestDriver(t, testApp(t, fake))

	d.PressDown()
	d.PressKey('s')
	d.PressEnter()

	assert.Equal(t, []domain.SessionKey{b.Key}, fake.Stopped)
}

func TestMining_CancelStopClearsTarget(t *testing.T) {
	s := testutil.NewTestSession("North Field")
	fake := &testutil.FakeAPI{Summary: testutil.NewTestSummary(s)}
	d := NewTestDriver(t, testApp(t, fake))

	d.PressKey('s')
	d.PressEsc()

	m := d.Mining()
	assert.Equal(t, ViewMining, d.ActiveViewID())
	assert.False(t, m.showConfirmModal)
	assert.Equal(t, domain.SessionKey(0), m.targetSessionKey)
	assert.Equal(t, 0, fake.CallCount("StopSession"))
}

func TestMining_StopDoesNotScheduleReload(t *testing.T) {
	s := testutil.NewTestSession("North Field")
	fake := &testutil.FakeAPI{
		Summary: testutil.NewTestSummary(s),
		StopOut: domain.Outcome[domain.StopResult]{Data: &domain.StopResult{}},
	}
	d := NewTestDriver(t, testApp(t, fake))

	d.PressKey('s')
	d.PressEnter()

	assert.Empty(t, d.Timer.Pending(stopAllReloadDelay))
}

// ── stop all ─────────────────────────────────────────────────────────────────

func TestMining_StopAllSchedulesExactlyOneReload(t *testing.T) {
	fake := &testutil.FakeAPI{
		Summary:    testutil.NewTestSummary(testutil.NewTestSession("A"), testutil.NewTestSession("B")),
		StopAllOut: domain.Outcome[domain.StopAllResult]{Data: &domain.StopAllResult{StoppedCount: 2}},
	}
	d := NewTestDriver(t, testApp(t, fake))

	d.PressKey('S')
	assert.Equal(t, actionStopAll, d.Mining().confirmAction)
	d.PressEnter()

	assert.Equal(t, 1, fake.CallCount("StopAll"))
	reloads := d.Timer.Pending(stopAllReloadDelay)
	require.Len(t, reloads, 1)
	assert.GreaterOrEqual(t, reloads[0].Delay, 2000*time.Millisecond)
	assert.Less(t, reloads[0].Delay, 2100*time.Millisecond)
	assert.Equal(t, reloadAppMsg{gen: 0}, reloads[0].Msg)

	text, level := d.Toast()
	assert.Equal(t, toastSuccess, level)
	assert.Contains(t, text, "已停止 2 个会话")

	// Still settling: no other action may start before the reload.
	assert.Equal(t, actionStopAll, d.Mining().inFlight)
	d.PressKey('s')
	assert.Equal(t, ViewMining, d.ActiveViewID())
	assert.Equal(t, 0, fake.CallCount("StopSession"))
}

func TestMining_StopAllEmptyOutcomeStillReloads(t *testing.T) {
	fake := &testutil.FakeAPI{Summary: testutil.NewTestSummary(testutil.NewTestSession("A"))}
	d := NewTestDriver(t, testApp(t, fake))

	d.PressKey('S')
	d.PressEnter()

	assert.Len(t, d.Timer.Pending(stopAllReloadDelay), 1)
	_, level := d.Toast()
	assert.Equal(t, toastNotice, level)
}

func TestMining_StopAllFailureDoesNotReload(t *testing.T) {
	fake := &testutil.FakeAPI{
		Summary:    testutil.NewTestSummary(testutil.NewTestSession("A")),
		StopAllErr: &api.Error{Status: 500, Message: "服务器繁忙"},
	}
	d := NewTestDriver(t, testApp(t, fake))

	d.PressKey('S')
	d.PressEnter()

	assert.Empty(t, d.Timer.Pending(stopAllReloadDelay))
	text, level := d.Toast()
	assert.Equal(t, toastError, level)
	assert.Equal(t, "服务器繁忙", text)
	assert.Equal(t, actionNone, d.Mining().inFlight)
}

func TestMining_StopAllWithoutSessions(t *testing.T) {
	fake := &testutil.FakeAPI{Sessions: []domain.MiningSession{}}
	d := NewTestDriver(t, testApp(t, fake))

	d.PressKey('S')

	assert.Equal(t, ViewMining, d.ActiveViewID())
	_, level := d.Toast()
	assert.Equal(t, toastNotice, level)
}

func TestMining_FullReloadReplacesView(t *testing.T) {
	fake := &testutil.FakeAPI{
		Summary:    testutil.NewTestSummary(testutil.NewTestSession("A")),
		StopAllOut: domain.Outcome[domain.StopAllResult]{Data: &domain.StopAllResult{StoppedCount: 1}},
	}
	d := NewTestDriver(t, testApp(t, fake))
	old := d.Mining()

	d.PressKey('S')
	d.PressEnter()
	fake.Summary = testutil.NewTestSummary()
	lands := fake.CallCount("ListLands")

	require.Equal(t, 1, d.FireAfter(d.Timer, stopAllReloadDelay))

	assert.Equal(t, 1, d.State().Generation)
	assert.NotSame(t, old, d.Mining())
	assert.Equal(t, actionNone, d.Mining().inFlight)
	assert.Equal(t, 1, d.ViewStackLen())
	// Caches were purged, so lookups hit the API again.
	assert.Equal(t, lands+1, fake.CallCount("ListLands"))
}

// ── liveness and timers ──────────────────────────────────────────────────────

func TestMining_DropsResultsFromOldGeneration(t *testing.T) {
	s := testutil.NewTestSession("North Field")
	fake := &testutil.FakeAPI{Summary: testutil.NewTestSummary(s)}
	d := NewTestDriver(t, testApp(t, fake))
	d.State().Generation = 1
	d.Send(reloadAppMsg{gen: 1})
	require.Equal(t, 2, d.State().Generation)

	d.Send(startResultMsg{gen: 1, err: errors.New("late")})
	d.Send(dashboardLoadedMsg{gen: 1, err: errors.New("late")})

	text, _ := d.Toast()
	assert.Empty(t, text)
	assert.Nil(t, d.Mining().err)
	assert.Contains(t, d.View(), "North Field")
}

func TestMining_StaleReloadIsIgnored(t *testing.T) {
	d := NewTestDriver(t, testApp(t, &testutil.FakeAPI{Sessions: []domain.MiningSession{}}))
	d.State().Generation = 3

	d.Send(reloadAppMsg{gen: 2})
	assert.Equal(t, 3, d.State().Generation)
}

func TestMining_CountdownTicksEverySecond(t *testing.T) {
	now := testNow
	app := testApp(t, &testutil.FakeAPI{Sessions: []domain.MiningSession{}})
	app.Now = func() time.Time { return now }
	d := NewTestDriver(t, app)

	assert.Contains(t, d.View(), "15:00")
	assert.Contains(t, d.View(), "还有 23 分钟")

	now = now.Add(13 * time.Minute)
	require.Equal(t, 1, d.FireAfter(d.Timer, countdownInterval))

	assert.Contains(t, d.View(), "还有 10 分钟")
	assert.Len(t, d.Timer.Pending(countdownInterval), 1, "next tick scheduled")
}

func TestMining_UnmountedCountdownStops(t *testing.T) {
	d := NewTestDriver(t, testApp(t, &testutil.FakeAPI{Sessions: []domain.MiningSession{}}))
	d.Send(reloadAppMsg{gen: 0})

	// One tick from the discarded view, one from the new one.
	require.Len(t, d.Timer.Pending(countdownInterval), 2)
	d.FireAfter(d.Timer, countdownInterval)

	assert.Len(t, d.Timer.Pending(countdownInterval), 1)
}

func TestMining_CardTicksPerSession(t *testing.T) {
	a := testutil.NewTestSession("A")
	b := testutil.NewTestSession("B")
	fake := &testutil.FakeAPI{Summary: testutil.NewTestSummary(a, b)}
	d := NewTestDriver(t, testApp(t, fake))

	require.Len(t, d.Timer.Pending(cardRefreshInterval), 2)

	// B finishes; its card is unmounted and its tick chain ends.
	fake.Summary = testutil.NewTestSummary(a)
	d.PressKey('r')
	d.FireAfter(d.Timer, cardRefreshInterval)

	assert.Len(t, d.Timer.Pending(cardRefreshInterval), 1)
	assert.Equal(t, 1, d.Mining().cards[a.Key].renders)
	assert.NotContains(t, d.Mining().cards, b.Key)
}

func TestMining_PollReloads(t *testing.T) {
	fake := &testutil.FakeAPI{Sessions: []domain.MiningSession{}}
	d := NewTestDriver(t, testApp(t, fake))
	before := fake.CallCount("ListSessions")

	require.Equal(t, 1, d.FireAfter(d.Timer, defaultPollInterval))

	assert.Equal(t, before+1, fake.CallCount("ListSessions"))
	assert.Len(t, d.Timer.Pending(defaultPollInterval), 1)
}

// ── rendering ────────────────────────────────────────────────────────────────

func TestMining_DisplayPrefersSummarySessions(t *testing.T) {
	fake := &testutil.FakeAPI{
		Sessions: []domain.MiningSession{testutil.NewTestSession("Raw Field")},
		Summary:  testutil.NewTestSummary(testutil.NewTestSession("Summary Field")),
	}
	d := NewTestDriver(t, testApp(t, fake))

	assert.Contains(t, d.View(), "Summary Field")
	assert.NotContains(t, d.View(), "Raw Field")
}

func TestMining_EmptySummaryFallsThroughToRaw(t *testing.T) {
	fake := &testutil.FakeAPI{
		Sessions: []domain.MiningSession{testutil.NewTestSession("Raw Field")},
		Summary:  testutil.NewTestSummary(),
	}
	d := NewTestDriver(t, testApp(t, fake))

	assert.Contains(t, d.View(), "Raw Field")
	assert.Contains(t, d.View(), "进行中的会话 (1)")
}

func TestMining_RateHistoryModal(t *testing.T) {
	fake := &testutil.FakeAPI{
		Sessions: []domain.MiningSession{},
		RatePoints: []domain.RatePoint{
			{Hour: "13:00", Rate: decimal.RequireFromString("0.5"), ActiveUsers: 8, TotalOutput: decimal.NewFromInt(40)},
		},
	}
	d := NewTestDriver(t, testApp(t, fake))

	d.PressKey('y')
	assert.True(t, d.Mining().showRateHistory)
	assert.Contains(t, d.View(), "YLD 速率")
	assert.Contains(t, d.View(), "0.5000")

	d.PressEsc()
	assert.False(t, d.Mining().showRateHistory)
}

func TestMining_HistoryViewShowsJournal(t *testing.T) {
	s := testutil.NewTestSession("North Field")
	fake := &testutil.FakeAPI{
		Summary: testutil.NewTestSummary(s),
		StopErr: &api.Error{Status: 409, Message: "会话正在结算"},
	}
	d := NewTestDriver(t, testApp(t, fake))

	d.PressKey('s')
	d.PressEnter()
	d.PressKey('h')

	assert.Equal(t, ViewSessionHistory, d.ActiveViewID())
	assert.Contains(t, d.View(), "会话正在结算")
	assert.Contains(t, d.View(), "失败")

	d.PressEsc()
	assert.Equal(t, ViewMining, d.ActiveViewID())

	d.PressKey('h')
	d.SendKey(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, ViewMining, d.ActiveViewID())
}

func TestMining_CollectShowsAmount(t *testing.T) {
	s := testutil.NewTestSession("North Field")
	fake := &testutil.FakeAPI{
		Summary: testutil.NewTestSummary(s),
		CollectOut: domain.Outcome[domain.CollectResult]{Data: &domain.CollectResult{
			Collected: decimal.NewNullDecimal(decimal.RequireFromString("0.125")),
		}},
	}
	d := NewTestDriver(t, testApp(t, fake))

	d.PressKey('c')

	text, level := d.Toast()
	assert.Equal(t, toastSuccess, level)
	assert.Contains(t, text, "0.1250")
}

func TestMining_StaleSummaryNotice(t *testing.T) {
	fake := &testutil.FakeAPI{Summary: testutil.NewTestSummary(testutil.NewTestSession("North Field"))}
	app := testApp(t, fake)
	NewTestDriver(t, app)

	fake.SummaryErr = api.ErrUnavailable
	fake.SessionsErr = api.ErrUnavailable
	d := NewTestDriver(t, app)

	assert.True(t, d.Mining().dash.Stale)
	assert.Contains(t, d.View(), "本地快照")
	assert.Contains(t, d.View(), "快照中的会话")
	assert.Contains(t, d.View(), "North Field")
}

func TestMining_StaleSummaryKeepsLiveSessionList(t *testing.T) {
	fake := &testutil.FakeAPI{Summary: testutil.NewTestSummary(testutil.NewTestSession("North Field"))}
	app := testApp(t, fake)
	NewTestDriver(t, app)

	fake.Sessions = []domain.MiningSession{}
	fake.SummaryErr = api.ErrUnavailable
	d := NewTestDriver(t, app)

	assert.Contains(t, d.View(), "本地快照")
	assert.NotContains(t, d.View(), "快照中的会话")
	assert.NotContains(t, d.View(), "North Field")
	assert.Empty(t, d.Mining().sessions())
}

func TestMining_UnauthorizedLoadShowsError(t *testing.T) {
	fake := &testutil.FakeAPI{SessionsErr: &api.Error{Status: 401}}
	d := NewTestDriver(t, testApp(t, fake))

	assert.Contains(t, d.View(), "加载失败")
	_, level := d.Toast()
	assert.Equal(t, toastError, level)
}

func TestMining_NarrowTerminalUsesCompactCards(t *testing.T) {
	fake := &testutil.FakeAPI{Summary: testutil.NewTestSummary(testutil.NewTestSession("North Field"))}
	d := NewTestDriver(t, testApp(t, fake))

	assert.Contains(t, d.View(), "累计工时")

	d.Send(tea.WindowSizeMsg{Width: 60, Height: 40})
	assert.True(t, d.State().IsMobile())
	assert.NotContains(t, d.View(), "累计工时")
}
