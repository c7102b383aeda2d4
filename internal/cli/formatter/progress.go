package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a progress bar like [████░░░░] 45%.
// The bar is colored based on percentage: green >66%, yellow 33-66%, red <33%.
func RenderProgress(pct float64, width int) string {
	pct = clampPct(pct)
	if width < 2 {
		width = 2
	}

	var style = StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}

	pctStr := fmt.Sprintf("%3.0f%%", pct*100)
	return fmt.Sprintf("[%s] %s", style.Render(bar(pct, width)), pctStr)
}

// RenderHourProgress renders the current-hour bar of a session card, e.g.
// [████░░░░] 24/60分钟. Minutes outside [0, 60] are clamped.
func RenderHourProgress(minutes int, width int) string {
	minutes = max(0, min(minutes, 60))
	if width < 2 {
		width = 2
	}
	return fmt.Sprintf("[%s] %d/60分钟", StyleGreen.Render(bar(float64(minutes)/60, width)), minutes)
}

// RenderCompactBar renders a bar without brackets or percentage text.
func RenderCompactBar(pct float64, width int, dim bool) string {
	pct = clampPct(pct)
	if width < 2 {
		width = 2
	}
	if dim {
		return StyleDim.Render(bar(pct, width))
	}
	return StylePurple.Render(bar(pct, width))
}

func bar(pct float64, width int) string {
	filled := min(int(pct*float64(width)), width)
	return strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
}

func clampPct(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}
