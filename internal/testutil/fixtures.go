package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/landminer/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var testKeyCounter atomic.Int64

// Session options
type SessionOption func(*domain.MiningSession)

func WithPending(amount string) SessionOption {
	return func(s *domain.MiningSession) {
		s.PendingOutput = decimal.RequireFromString(amount)
	}
}

func WithResource(r domain.ResourceType) SessionOption {
	return func(s *domain.MiningSession) {
		s.ResourceType = r
	}
}

func WithHourMinutes(m int) SessionOption {
	return func(s *domain.MiningSession) {
		s.CurrentHourMinutes = m
	}
}

func WithKey(k domain.SessionKey) SessionOption {
	return func(s *domain.MiningSession) {
		s.Key = k
	}
}

func NewTestSession(landName string, opts ...SessionOption) domain.MiningSession {
	n := testKeyCounter.Add(1)
	s := domain.MiningSession{
		Key:                 domain.SessionKey(n),
		SessionID:           fmt.Sprintf("MS-%04d", n),
		LandID:              fmt.Sprintf("L-%04d", n),
		LandName:            landName,
		ResourceType:        domain.ResourceIron,
		AlgorithmVersion:    "v2",
		PendingOutput:       decimal.RequireFromString("12.5"),
		SettledHours:        3,
		TotalHoursWorked:    decimal.RequireFromString("3.4"),
		CurrentHourMinutes:  24,
		CurrentHourStatus:   "producing",
		StartedAt:           time.Now().Add(-3*time.Hour - 24*time.Minute).Format("2006-01-02T15:04:05"),
		ToolCount:           2,
		FoodConsumptionRate: decimal.NewFromInt(2 * domain.FoodConsumptionRate),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// NewTestSummary returns a summary whose active list holds sessions.
func NewTestSummary(sessions ...domain.MiningSession) *domain.MiningSummary {
	if sessions == nil {
		sessions = []domain.MiningSession{}
	}
	return &domain.MiningSummary{
		ActiveSessions: &domain.ActiveSessions{
			Count:    len(sessions),
			Sessions: sessions,
		},
		Resources: domain.Resources{Food: decimal.NewFromInt(120)},
		Tools:     domain.ToolCounts{Idle: 2, InUse: len(sessions), Total: 2 + len(sessions)},
		YLDStatus: domain.YLDStatus{
			Remaining:      decimal.NewFromInt(800),
			DailyLimit:     decimal.NewFromInt(1000),
			PercentageUsed: decimal.NewFromInt(20),
		},
		FoodSustainabilityHours: decimal.NewFromInt(30),
	}
}

func NewTestLand(id int64) domain.Land {
	return domain.Land{
		ID:              id,
		LandID:          fmt.Sprintf("L-%04d", id),
		LandType:        "iron_mine",
		LandTypeDisplay: "铁矿山",
		RegionName:      "北区",
	}
}

// Tool options
type ToolOption func(*domain.Tool)

func WithToolStatus(status string) ToolOption {
	return func(t *domain.Tool) {
		t.Status = status
	}
}

func WithInUse() ToolOption {
	return func(t *domain.Tool) {
		t.IsInUse = true
	}
}

func WithDurability(cur int) ToolOption {
	return func(t *domain.Tool) {
		t.CurrentDurability = cur
	}
}

func NewTestTool(id int64, opts ...ToolOption) domain.Tool {
	t := domain.Tool{
		ID:                id,
		ToolID:            fmt.Sprintf("T-%04d", id),
		ToolTypeDisplay:   "镐",
		Status:            domain.ToolStatusNormal,
		CurrentDurability: 100,
		MaxDurability:     100,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func NewTestAction(kind domain.ActionKind, key domain.SessionKey, at time.Time) *domain.ActionEntry {
	return &domain.ActionEntry{
		ID:         uuid.NewString(),
		Kind:       kind,
		SessionKey: key,
		Result:     domain.ResultOK,
		CreatedAt:  at,
	}
}
