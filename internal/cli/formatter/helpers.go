package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// RenderCompactBox is RenderBox with tight padding for narrow terminals.
func RenderCompactBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(1).
		PaddingRight(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(title) + "\n" + content)
	}
	return boxStyle.Render(content)
}

// AlgorithmBadge renders the algorithm version tag shown on session cards.
func AlgorithmBadge(version string) string {
	if version == "" {
		return StyleDim.Render("--")
	}
	return StyleBlue.Render("[" + version + "]")
}

// HourStatusPill renders the server-reported status of the current hour.
func HourStatusPill(status string) string {
	switch status {
	case "":
		return StyleDim.Render("○ --")
	case "producing", "active", "mining":
		return StyleGreen.Render("● " + status)
	case "settling", "pending":
		return StyleYellow.Render("◐ " + status)
	default:
		return StyleDim.Render("○ " + status)
	}
}

// KeyValue renders a dim label followed by a value.
func KeyValue(label, value string) string {
	return fmt.Sprintf("%s %s", StyleDim.Render(label+":"), value)
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// Toast renders a one-line transient notice.
func Toast(text string, isErr bool) string {
	if isErr {
		return StyleRed.Render("✖ " + text)
	}
	return StyleGreen.Render("✔ " + text)
}

// Notice renders a neutral one-line notice.
func Notice(text string) string {
	return StyleYellow.Render("ℹ " + text)
}
