package service

import (
	"context"

	"github.com/alexanderramin/landminer/internal/api"
	"github.com/alexanderramin/landminer/internal/domain"
)

// MiningService is the client-side use-case layer over the mining API.
type MiningService interface {
	LoadDashboard(ctx context.Context) (*Dashboard, error)
	ListLands(ctx context.Context) ([]domain.Land, error)
	ListTools(ctx context.Context) ([]domain.Tool, error)
	RateHistory(ctx context.Context, hours int) ([]domain.RatePoint, error)

	StartMining(ctx context.Context, req api.StartRequest) (domain.Outcome[domain.StartResult], error)
	StopSession(ctx context.Context, session domain.MiningSession) (domain.Outcome[domain.StopResult], error)
	StopAll(ctx context.Context) (domain.Outcome[domain.StopAllResult], error)
	CollectOutput(ctx context.Context, session domain.MiningSession) (domain.Outcome[domain.CollectResult], error)

	SessionHistory(ctx context.Context, key domain.SessionKey) ([]*domain.ActionEntry, error)
	RecentActions(ctx context.Context, limit int) ([]*domain.ActionEntry, error)

	// Reachable checks that the API answers, without touching the cache or journal.
	Reachable(ctx context.Context) bool

	// Reset drops every cached lookup so the next load starts cold.
	Reset()
}
