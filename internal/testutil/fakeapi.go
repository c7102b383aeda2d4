package testutil

import (
	"context"
	"sync"

	"github.com/alexanderramin/landminer/internal/api"
	"github.com/alexanderramin/landminer/internal/domain"
)

// FakeAPI is an in-memory api.Client. Set the exported fields to script
// responses; call counts are recorded per method.
type FakeAPI struct {
	mu sync.Mutex

	Sessions    []domain.MiningSession
	Summary     *domain.MiningSummary
	Lands       []domain.Land
	Tools       []domain.Tool
	RatePoints  []domain.RatePoint
	StartOut    domain.Outcome[domain.StartResult]
	StopOut     domain.Outcome[domain.StopResult]
	StopAllOut  domain.Outcome[domain.StopAllResult]
	CollectOut  domain.Outcome[domain.CollectResult]
	Unreachable bool

	SessionsErr error
	SummaryErr  error
	LandsErr    error
	ToolsErr    error
	RateErr     error
	StartErr    error
	StopErr     error
	StopAllErr  error
	CollectErr  error

	Calls     map[string]int
	StartReqs []api.StartRequest
	Stopped   []domain.SessionKey
}

var _ api.Client = (*FakeAPI)(nil)

func (f *FakeAPI) record(name string) {
	if f.Calls == nil {
		f.Calls = map[string]int{}
	}
	f.Calls[name]++
}

// CallCount returns how many times method was invoked.
func (f *FakeAPI) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[method]
}

func (f *FakeAPI) ListSessions(context.Context) ([]domain.MiningSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListSessions")
	return f.Sessions, f.SessionsErr
}

func (f *FakeAPI) GetSummary(context.Context) (*domain.MiningSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetSummary")
	if f.SummaryErr != nil {
		return nil, f.SummaryErr
	}
	return f.Summary, nil
}

func (f *FakeAPI) ListLands(context.Context) ([]domain.Land, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListLands")
	return f.Lands, f.LandsErr
}

func (f *FakeAPI) ListTools(context.Context) ([]domain.Tool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTools")
	return f.Tools, f.ToolsErr
}

func (f *FakeAPI) RateHistory(context.Context, int) ([]domain.RatePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RateHistory")
	return f.RatePoints, f.RateErr
}

func (f *FakeAPI) StartMining(_ context.Context, req api.StartRequest) (domain.Outcome[domain.StartResult], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("StartMining")
	f.StartReqs = append(f.StartReqs, req)
	return f.StartOut, f.StartErr
}

func (f *FakeAPI) StopSession(_ context.Context, key domain.SessionKey) (domain.Outcome[domain.StopResult], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("StopSession")
	f.Stopped = append(f.Stopped, key)
	return f.StopOut, f.StopErr
}

func (f *FakeAPI) StopAll(context.Context) (domain.Outcome[domain.StopAllResult], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("StopAll")
	return f.StopAllOut, f.StopAllErr
}

func (f *FakeAPI) CollectOutput(_ context.Context, key domain.SessionKey) (domain.Outcome[domain.CollectResult], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CollectOutput")
	return f.CollectOut, f.CollectErr
}

func (f *FakeAPI) Available(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.Unreachable
}
