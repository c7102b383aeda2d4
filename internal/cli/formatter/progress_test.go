package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderProgress(t *testing.T) {
	assert.Contains(t, RenderProgress(0.5, 10), "50%")
	assert.Contains(t, RenderProgress(1.5, 10), "100%")
	assert.Contains(t, RenderProgress(-1, 10), "0%")
}

func TestRenderHourProgress(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		want    string
	}{
		{"start of hour", 0, "0/60分钟"},
		{"mid hour", 24, "24/60分钟"},
		{"full hour", 60, "60/60分钟"},
		{"over clamps", 75, "60/60分钟"},
		{"negative clamps", -5, "0/60分钟"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, RenderHourProgress(tt.minutes, 10), tt.want)
		})
	}
}

func TestRenderCompactBar(t *testing.T) {
	tests := []struct {
		name  string
		pct   float64
		width int
		dim   bool
	}{
		{"0% normal", 0.0, 10, false},
		{"50% normal", 0.5, 10, false},
		{"100% normal", 1.0, 10, false},
		{"50% dimmed", 0.5, 10, true},
		{"over 100% clamps", 1.5, 10, false},
		{"negative clamps", -0.5, 10, false},
		{"tiny width clamps to 2", 0.5, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderCompactBar(tt.pct, tt.width, tt.dim)
			assert.NotEmpty(t, got)
			assert.NotContains(t, got, "[")
			assert.NotContains(t, got, "%")
		})
	}
}

func TestRenderCompactBarBlocks(t *testing.T) {
	assert.Contains(t, RenderCompactBar(0.0, 4, true), emptyBlock)
	assert.Contains(t, RenderCompactBar(1.0, 4, true), filledBlock)
}
