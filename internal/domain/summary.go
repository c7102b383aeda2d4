package domain

import "github.com/shopspring/decimal"

// MiningSummary is the aggregate snapshot returned by the summary endpoint.
// Absent sub-objects decode to their zero values.
type MiningSummary struct {
	ActiveSessions          *ActiveSessions `json:"active_sessions"`
	Resources               Resources       `json:"resources"`
	Tools                   ToolCounts      `json:"tools"`
	YLDStatus               YLDStatus       `json:"yld_status"`
	TodayProduction         TodayProduction `json:"today_production"`
	FoodSustainabilityHours decimal.Decimal `json:"food_sustainability_hours"`
	RecentSettlements       []Settlement    `json:"recent_settlements"`
}

type ActiveSessions struct {
	Count                int             `json:"count"`
	Sessions             []MiningSession `json:"sessions"`
	TotalFoodConsumption decimal.Decimal `json:"total_food_consumption"`
	TotalPendingRewards  decimal.Decimal `json:"total_pending_rewards"`
}

type Resources struct {
	Food decimal.Decimal `json:"food"`
}

type ToolCounts struct {
	Idle  int `json:"idle"`
	InUse int `json:"in_use"`
	Total int `json:"total"`
}

type YLDStatus struct {
	Remaining         decimal.Decimal `json:"remaining"`
	DailyLimit        decimal.Decimal `json:"daily_limit"`
	PercentageUsed    decimal.Decimal `json:"percentage_used"`
	CurrentHourlyRate decimal.Decimal `json:"current_hourly_rate"`
}

type TodayProduction struct {
	Total       decimal.Decimal `json:"total"`
	Distributed AmountField     `json:"distributed"`
	Pending     PendingField    `json:"pending"`
}

type AmountField struct {
	Amount decimal.Decimal `json:"amount"`
}

type PendingField struct {
	Amount decimal.Decimal `json:"amount"`
	Hours  decimal.Decimal `json:"hours"`
}

// Settlement is one hourly settlement record.
type Settlement struct {
	Hour           string          `json:"hour"`
	NetOutput      decimal.Decimal `json:"net_output"`
	ResourceType   ResourceType    `json:"resource_type"`
	ToolCount      int             `json:"tool_count"`
	SettledMinutes int             `json:"settled_minutes"`
}

// Active returns the active-sessions block, or an empty one when absent.
func (s *MiningSummary) Active() ActiveSessions {
	if s == nil || s.ActiveSessions == nil {
		return ActiveSessions{}
	}
	return *s.ActiveSessions
}

// RatePoint is one entry of the YLD hourly rate history.
type RatePoint struct {
	Hour        string          `json:"hour"`
	Rate        decimal.Decimal `json:"rate"`
	ActiveUsers int             `json:"active_users"`
	TotalOutput decimal.Decimal `json:"total_output"`
}
