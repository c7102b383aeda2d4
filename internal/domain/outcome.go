package domain

import "github.com/shopspring/decimal"

// OutcomeKind distinguishes a resolved call that returned data from one that
// resolved with an empty body.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeEmpty
)

// Outcome is the result of a mutating call that did not fail.
type Outcome[T any] struct {
	Data    *T
	Message string
}

func (o Outcome[T]) Kind() OutcomeKind {
	if o.Data == nil {
		return OutcomeEmpty
	}
	return OutcomeOK
}

// Result maps the outcome onto the journal's result column.
func (o Outcome[T]) Result() ActionResult {
	if o.Kind() == OutcomeEmpty {
		return ResultEmpty
	}
	return ResultOK
}

type StartResult struct {
	SessionID        string `json:"session_id"`
	SessionPK        int64  `json:"session_pk"`
	AlgorithmVersion string `json:"algorithm_version"`
}

type StopResult struct {
	TotalCollected decimal.NullDecimal `json:"total_collected"`
}

type StopAllResult struct {
	StoppedCount   int                 `json:"stopped_count"`
	TotalCollected decimal.NullDecimal `json:"total_collected"`
}

type CollectResult struct {
	Collected decimal.NullDecimal `json:"collected"`
}

// CollectedOr returns the server-reported total, or fallback when omitted.
func (r *StopResult) CollectedOr(fallback decimal.Decimal) decimal.Decimal {
	if r == nil || !r.TotalCollected.Valid {
		return fallback
	}
	return r.TotalCollected.Decimal
}
