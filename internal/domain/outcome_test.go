package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOutcome_Kind(t *testing.T) {
	assert.Equal(t, OutcomeEmpty, Outcome[StartResult]{}.Kind())
	assert.Equal(t, ResultEmpty, Outcome[StartResult]{}.Result())

	ok := Outcome[StartResult]{Data: &StartResult{SessionID: "MS-1"}}
	assert.Equal(t, OutcomeOK, ok.Kind())
	assert.Equal(t, ResultOK, ok.Result())
}

func TestStopResult_CollectedOr(t *testing.T) {
	fallback := decimal.RequireFromString("3.5")

	var missing *StopResult
	assert.True(t, missing.CollectedOr(fallback).Equal(fallback))
	assert.True(t, (&StopResult{}).CollectedOr(fallback).Equal(fallback))

	r := &StopResult{TotalCollected: decimal.NewNullDecimal(decimal.NewFromInt(8))}
	assert.True(t, r.CollectedOr(fallback).Equal(decimal.NewFromInt(8)))
}

func TestActionEntry_Validate(t *testing.T) {
	assert.NoError(t, (&ActionEntry{Kind: ActionStart, Result: ResultOK}).Validate())
	assert.NoError(t, (&ActionEntry{Kind: ActionStop, SessionKey: 4, Result: ResultError}).Validate())
	assert.Error(t, (&ActionEntry{Kind: "dig", Result: ResultOK}).Validate())
	assert.Error(t, (&ActionEntry{Kind: ActionStop, Result: ResultOK}).Validate())
	assert.Error(t, (&ActionEntry{Kind: ActionStart, Result: "maybe"}).Validate())
}
