package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/landminer/internal/api"
	"github.com/alexanderramin/landminer/internal/domain"
	"github.com/alexanderramin/landminer/internal/logger"
	"github.com/alexanderramin/landminer/internal/repository"
	"github.com/alexanderramin/landminer/internal/service"
	"github.com/alexanderramin/landminer/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testNow is 14:37 local, 23 minutes before the 15:00 settlement.
var testNow = time.Date(2025, 3, 10, 14, 37, 0, 0, time.Local)

// testApp wires a full App over the fake API and an in-memory DB.
func testApp(t *testing.T, fake *testutil.FakeAPI) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	clock := func() time.Time { return testNow }

	mining := service.NewMiningService(
		fake,
		repository.NewSQLiteActionRepo(database),
		repository.NewSQLiteSnapshotRepo(database),
		testutil.NewTestUoW(database),
		service.MiningOptions{Logger: logger.Discard(), Now: clock, CacheTTL: time.Minute},
	)
	return &App{
		Mining: mining,
		Logger: logger.Discard(),
		Now:    clock,
	}
}

// runCmd executes the root command with args and returns its output.
func runCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSessionsList_PrefersSummaryList(t *testing.T) {
	raw := testutil.NewTestSession("Raw Field")
	fromSummary := testutil.NewTestSession("Summary Field")
	fake := &testutil.FakeAPI{
		Sessions: []domain.MiningSession{raw},
		Summary:  testutil.NewTestSummary(fromSummary),
	}

	out, err := runCmd(t, testApp(t, fake), "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Summary Field")
	assert.NotContains(t, out, "Raw Field")
}

func TestSessionsList_EmptySummaryFallsThrough(t *testing.T) {
	raw := testutil.NewTestSession("Raw Field")
	fake := &testutil.FakeAPI{
		Sessions: []domain.MiningSession{raw},
		Summary:  testutil.NewTestSummary(),
	}

	out, err := runCmd(t, testApp(t, fake), "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Raw Field")
}

func TestSessionsList_NoSessions(t *testing.T) {
	fake := &testutil.FakeAPI{Sessions: []domain.MiningSession{}}

	out, err := runCmd(t, testApp(t, fake), "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No active mining sessions.")
}

func TestSessionsStop_FallsBackToPending(t *testing.T) {
	s := testutil.NewTestSession("North", testutil.WithPending("42"))
	fake := &testutil.FakeAPI{
		Summary: testutil.NewTestSummary(s),
		StopOut: domain.Outcome[domain.StopResult]{Data: &domain.StopResult{}},
	}

	out, err := runCmd(t, testApp(t, fake), "sessions", "stop", s.Key.String())
	require.NoError(t, err)
	assert.Contains(t, out, "collected 42.000")
	assert.Equal(t, []domain.SessionKey{s.Key}, fake.Stopped)
}

func TestSessionsStop_UnknownSession(t *testing.T) {
	fake := &testutil.FakeAPI{Summary: testutil.NewTestSummary(testutil.NewTestSession("North"))}

	_, err := runCmd(t, testApp(t, fake), "sessions", "stop", "999999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not active")
	assert.Equal(t, 0, fake.CallCount("StopSession"))
}

func TestSessionsStop_InvalidKey(t *testing.T) {
	_, err := runCmd(t, testApp(t, &testutil.FakeAPI{}), "sessions", "stop", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session key")
}

func TestSessionsStopAll_RequiresYes(t *testing.T) {
	fake := &testutil.FakeAPI{}

	_, err := runCmd(t, testApp(t, fake), "sessions", "stop-all")
	require.Error(t, err)
	assert.Equal(t, 0, fake.CallCount("StopAll"))
}

func TestSessionsStopAll_ReportsTotals(t *testing.T) {
	fake := &testutil.FakeAPI{
		StopAllOut: domain.Outcome[domain.StopAllResult]{Data: &domain.StopAllResult{
			StoppedCount:   3,
			TotalCollected: decimal.NewNullDecimal(decimal.NewFromInt(1500)),
		}},
	}

	out, err := runCmd(t, testApp(t, fake), "sessions", "stop-all", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Stopped 3 sessions, collected 1.50K")
}

func TestStart_Success(t *testing.T) {
	fake := &testutil.FakeAPI{
		StartOut: domain.Outcome[domain.StartResult]{Data: &domain.StartResult{SessionID: "MS-77", AlgorithmVersion: "v2"}},
	}

	out, err := runCmd(t, testApp(t, fake), "start", "--land", "4", "--tool", "10", "--tool", "11", "--tool", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "food 6/h, durability 3/h")
	assert.Contains(t, out, "session MS-77 (algorithm v2)")
	require.Len(t, fake.StartReqs, 1)
	assert.Equal(t, api.StartRequest{LandID: 4, ToolIDs: []int64{10, 11, 12}}, fake.StartReqs[0])
}

func TestStart_ServerMessage(t *testing.T) {
	fake := &testutil.FakeAPI{StartErr: &api.Error{Status: 400, Message: "粮食不足"}}

	_, err := runCmd(t, testApp(t, fake), "start", "--land", "4", "--tool", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "粮食不足")
}

func TestStart_RejectsDuplicateTools(t *testing.T) {
	fake := &testutil.FakeAPI{}

	_, err := runCmd(t, testApp(t, fake), "start", "--land", "4", "--tool", "10", "--tool", "10")
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidStartRequest))
	assert.Equal(t, 0, fake.CallCount("StartMining"))
}

func TestStart_EmptyOutcome(t *testing.T) {
	out, err := runCmd(t, testApp(t, &testutil.FakeAPI{}), "start", "--land", "4", "--tool", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "no session details")
}

func TestCountdown_UsesAppClock(t *testing.T) {
	out, err := runCmd(t, testApp(t, &testutil.FakeAPI{}), "countdown")
	require.NoError(t, err)
	assert.Equal(t, "Next settlement at 15:00 (23 min)\n", out)
}

func TestSummary_RendersCard(t *testing.T) {
	fake := &testutil.FakeAPI{Summary: testutil.NewTestSummary(testutil.NewTestSession("North"))}

	out, err := runCmd(t, testApp(t, fake), "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "800.00 / 1.00K")
}

func TestSummary_StaleSnapshot(t *testing.T) {
	fake := &testutil.FakeAPI{Summary: testutil.NewTestSummary(testutil.NewTestSession("North"))}
	app := testApp(t, fake)

	_, err := runCmd(t, app, "summary")
	require.NoError(t, err)

	fake.SummaryErr = api.ErrUnavailable
	out, err := runCmd(t, app, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Showing snapshot from")
	assert.Contains(t, out, "800.00 / 1.00K")
}

func TestSessionsStop_StoppedSessionNotRevivedBySnapshot(t *testing.T) {
	s := testutil.NewTestSession("North", testutil.WithKey(77))
	fake := &testutil.FakeAPI{Summary: testutil.NewTestSummary(s)}
	app := testApp(t, fake)
	_, err := runCmd(t, app, "summary")
	require.NoError(t, err)

	fake.Sessions = []domain.MiningSession{}
	fake.SummaryErr = api.ErrUnavailable

	out, err := runCmd(t, app, "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No active mining sessions.")

	_, err = runCmd(t, app, "sessions", "stop", "77")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not active")
	assert.Equal(t, 0, fake.CallCount("StopSession"))
}

func TestTools_EligibleFilter(t *testing.T) {
	fake := &testutil.FakeAPI{Tools: []domain.Tool{
		testutil.NewTestTool(10),
		testutil.NewTestTool(11, testutil.WithInUse()),
		testutil.NewTestTool(12, testutil.WithDurability(0)),
	}}

	out, err := runCmd(t, testApp(t, fake), "tools", "--eligible")
	require.NoError(t, err)
	assert.Contains(t, out, "T-0010")
	assert.NotContains(t, out, "T-0011")
	assert.NotContains(t, out, "T-0012")
}

func TestLands_List(t *testing.T) {
	fake := &testutil.FakeAPI{Lands: []domain.Land{testutil.NewTestLand(4)}}

	out, err := runCmd(t, testApp(t, fake), "lands")
	require.NoError(t, err)
	assert.Contains(t, out, "L-0004")
	assert.Contains(t, out, "铁矿山")
}

func TestHistory_ShowsJournaledActions(t *testing.T) {
	s := testutil.NewTestSession("North")
	fake := &testutil.FakeAPI{
		Summary: testutil.NewTestSummary(s),
		StopOut: domain.Outcome[domain.StopResult]{Data: &domain.StopResult{}},
	}
	app := testApp(t, fake)

	_, err := runCmd(t, app, "sessions", "stop", s.Key.String())
	require.NoError(t, err)

	out, err := runCmd(t, app, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "stop")
	assert.Contains(t, out, s.Key.String())

	out, err = runCmd(t, app, "sessions", "history", s.Key.String())
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestHistory_KindFilter(t *testing.T) {
	s := testutil.NewTestSession("North")
	fake := &testutil.FakeAPI{
		Summary:    testutil.NewTestSummary(s),
		StopOut:    domain.Outcome[domain.StopResult]{Data: &domain.StopResult{}},
		CollectOut: domain.Outcome[domain.CollectResult]{},
	}
	app := testApp(t, fake)

	_, err := runCmd(t, app, "sessions", "collect", s.Key.String())
	require.NoError(t, err)
	_, err = runCmd(t, app, "sessions", "stop", s.Key.String())
	require.NoError(t, err)

	out, err := runCmd(t, app, "history", "--kind", "collect")
	require.NoError(t, err)
	assert.Contains(t, out, "collect")
	assert.NotContains(t, out, "stop")

	_, err = runCmd(t, app, "history", "--kind", "dig")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action kind")
}

func TestRates_Table(t *testing.T) {
	fake := &testutil.FakeAPI{RatePoints: []domain.RatePoint{
		{Hour: "14:00", Rate: decimal.RequireFromString("0.25"), ActiveUsers: 12, TotalOutput: decimal.NewFromInt(300)},
	}}

	out, err := runCmd(t, testApp(t, fake), "rates")
	require.NoError(t, err)
	assert.Contains(t, out, "14:00")
	assert.Contains(t, out, "0.2500")
	assert.Contains(t, out, "300.00")
}

func TestRoot_NonInteractiveShowsHelp(t *testing.T) {
	app := testApp(t, &testutil.FakeAPI{})
	app.IsInteractive = func() bool { return false }

	out, err := runCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, out, "landminer")
	assert.Contains(t, out, "sessions")
}

func TestStatus_Reachable(t *testing.T) {
	s := testutil.NewTestSession("North Field")
	fake := &testutil.FakeAPI{
		Sessions:   []domain.MiningSession{s},
		CollectOut: domain.Outcome[domain.CollectResult]{},
	}
	app := testApp(t, fake)
	_, err := runCmd(t, app, "sessions", "collect", s.Key.String())
	require.NoError(t, err)

	out, err := runCmd(t, app, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "可用")
	assert.Contains(t, out, "15:00 (23 分钟)")
	assert.Contains(t, out, "领取")
}

func TestStatus_UnreachableFails(t *testing.T) {
	app := testApp(t, &testutil.FakeAPI{Unreachable: true})

	out, err := runCmd(t, app, "status")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnavailable)
	assert.Contains(t, out, "不可用")
	assert.Contains(t, out, "最近操作")
}
