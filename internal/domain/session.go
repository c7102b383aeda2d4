package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// SessionKey is the effective identity of a mining session. The API reports it
// as session_pk on summary payloads and as id on the raw session list.
type SessionKey int64

func (k SessionKey) String() string {
	return strconv.FormatInt(int64(k), 10)
}

// ParseSessionKey parses a decimal session key.
func ParseSessionKey(s string) (SessionKey, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid session key %q", s)
	}
	return SessionKey(n), nil
}

// MiningSession is the display view of one active mining session.
type MiningSession struct {
	Key                 SessionKey      `json:"-"`
	SessionID           string          `json:"session_id"`
	LandID              string          `json:"land_id"`
	LandName            string          `json:"land_name"`
	ResourceType        ResourceType    `json:"resource_type"`
	AlgorithmVersion    string          `json:"algorithm_version"`
	PendingOutput       decimal.Decimal `json:"pending_output"`
	SettledHours        int             `json:"settled_hours"`
	TotalHoursWorked    decimal.Decimal `json:"total_hours_worked"`
	CurrentHourMinutes  int             `json:"current_hour_minutes"`
	CurrentHourStatus   string          `json:"current_hour_status"`
	LastSettlementHour  *string         `json:"last_settlement_hour"`
	StartedAt           string          `json:"started_at"`
	ToolCount           int             `json:"tool_count"`
	FoodConsumptionRate decimal.Decimal `json:"food_consumption_rate"`
}

type miningSessionJSON struct {
	SessionPK *int64         `json:"session_pk"`
	ID        *int64         `json:"id"`
	SessionID flexibleString `json:"session_id"`
	sessionFields
}

type sessionFields struct {
	LandID              flexibleString  `json:"land_id"`
	LandName            string          `json:"land_name"`
	ResourceType        ResourceType    `json:"resource_type"`
	AlgorithmVersion    string          `json:"algorithm_version"`
	PendingOutput       decimal.Decimal `json:"pending_output"`
	SettledHours        int             `json:"settled_hours"`
	TotalHoursWorked    decimal.Decimal `json:"total_hours_worked"`
	CurrentHourMinutes  int             `json:"current_hour_minutes"`
	CurrentHourStatus   string          `json:"current_hour_status"`
	LastSettlementHour  *string         `json:"last_settlement_hour"`
	StartedAt           string          `json:"started_at"`
	ToolCount           int             `json:"tool_count"`
	FoodConsumptionRate decimal.Decimal `json:"food_consumption_rate"`
}

// UnmarshalJSON decodes either payload shape and resolves Key once,
// preferring session_pk over id.
func (s *MiningSession) UnmarshalJSON(data []byte) error {
	var raw miningSessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f := raw.sessionFields
	*s = MiningSession{
		Key:                 SessionKey(Int64FromPtrWithDefault(0, raw.SessionPK, raw.ID)),
		SessionID:           string(raw.SessionID),
		LandID:              string(f.LandID),
		LandName:            f.LandName,
		ResourceType:        f.ResourceType,
		AlgorithmVersion:    f.AlgorithmVersion,
		PendingOutput:       f.PendingOutput,
		SettledHours:        f.SettledHours,
		TotalHoursWorked:    f.TotalHoursWorked,
		CurrentHourMinutes:  f.CurrentHourMinutes,
		CurrentHourStatus:   f.CurrentHourStatus,
		LastSettlementHour:  f.LastSettlementHour,
		StartedAt:           f.StartedAt,
		ToolCount:           f.ToolCount,
		FoodConsumptionRate: f.FoodConsumptionRate,
	}
	return nil
}

// MarshalJSON writes the normalized key as session_pk so snapshots decode
// back to the same identity.
func (s MiningSession) MarshalJSON() ([]byte, error) {
	type plain MiningSession
	body, err := json.Marshal(plain(s))
	if err != nil {
		return nil, err
	}
	key := []byte(`{"session_pk":` + s.Key.String())
	if len(body) > 2 {
		key = append(key, ',')
	}
	return append(key, body[1:]...), nil
}

// HourProgress returns the fraction of the current hour already worked,
// clamped to [0, 1].
func (s MiningSession) HourProgress() float64 {
	m := s.CurrentHourMinutes
	if m < 0 {
		m = 0
	}
	if m > 60 {
		m = 60
	}
	return float64(m) / 60
}

// FindSession returns the session with the given key.
func FindSession(sessions []MiningSession, key SessionKey) (MiningSession, bool) {
	for _, s := range sessions {
		if s.Key == key {
			return s, true
		}
	}
	return MiningSession{}, false
}

// flexibleString accepts a JSON string or number.
type flexibleString string

func (f *flexibleString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*f = flexibleString(n.String())
	return nil
}
