package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTool_Eligible(t *testing.T) {
	tests := []struct {
		name string
		tool Tool
		want bool
	}{
		{"normal idle durable", Tool{Status: "normal", CurrentDurability: 10}, true},
		{"in use", Tool{Status: "normal", IsInUse: true, CurrentDurability: 10}, false},
		{"broken durability", Tool{Status: "normal"}, false},
		{"negative durability", Tool{Status: "normal", CurrentDurability: -1}, false},
		{"repairing", Tool{Status: "repairing", CurrentDurability: 10}, false},
		{"empty status", Tool{CurrentDurability: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tool.Eligible())
		})
	}
}

func TestEligibleTools_MatchesPredicate(t *testing.T) {
	tools := []Tool{
		{ID: 1, Status: "normal", CurrentDurability: 5},
		{ID: 2, Status: "normal", IsInUse: true, CurrentDurability: 5},
		{ID: 3, Status: "damaged", CurrentDurability: 5},
		{ID: 4, Status: "normal", CurrentDurability: 0},
		{ID: 5, Status: "normal", CurrentDurability: 1},
	}
	got := EligibleTools(tools)

	ids := make(map[int64]bool)
	for _, tool := range got {
		ids[tool.ID] = true
	}
	for _, tool := range tools {
		assert.Equal(t, tool.Eligible(), ids[tool.ID], "tool %d", tool.ID)
	}
	assert.Len(t, got, 2)
}

func TestLand_TypeDisplayFallsBackToBlueprint(t *testing.T) {
	l := Land{ID: 9, LandID: "L-9", Blueprint: &Blueprint{LandTypeDisplay: "矿山"}}
	assert.Equal(t, "矿山", l.TypeDisplay())
	assert.Equal(t, "L-9 · 矿山", l.Label())

	l.LandTypeDisplay = "森林"
	assert.Equal(t, "森林", l.TypeDisplay())
}

func TestEstimateConsumption(t *testing.T) {
	assert.Equal(t, Consumption{Food: 6, Durability: 3}, EstimateConsumption(3))
	assert.Equal(t, Consumption{}, EstimateConsumption(0))
	assert.Equal(t, Consumption{}, EstimateConsumption(-2))
}
