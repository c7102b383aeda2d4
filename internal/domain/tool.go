package domain

import "strconv"

// Tool is the selection view of a mining tool.
type Tool struct {
	ID                int64  `json:"id"`
	ToolID            string `json:"tool_id"`
	ToolTypeDisplay   string `json:"tool_type_display"`
	Status            string `json:"status"`
	IsInUse           bool   `json:"is_in_use"`
	CurrentDurability int    `json:"current_durability"`
	MaxDurability     int    `json:"max_durability"`
}

// Eligible reports whether the tool can join a new mining session.
func (t Tool) Eligible() bool {
	return t.Status == ToolStatusNormal && !t.IsInUse && t.CurrentDurability > 0
}

// Label is the one-line picker label for a tool.
func (t Tool) Label() string {
	label := CoalesceStr(t.ToolID, "#"+itoa(t.ID))
	if t.ToolTypeDisplay != "" {
		label += " · " + t.ToolTypeDisplay
	}
	return label + " · " + strconv.Itoa(t.CurrentDurability) + "/" + strconv.Itoa(t.MaxDurability)
}

// EligibleTools filters tools down to the ones that can start mining.
func EligibleTools(tools []Tool) []Tool {
	out := make([]Tool, 0, len(tools))
	for _, t := range tools {
		if t.Eligible() {
			out = append(out, t)
		}
	}
	return out
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
