package cli

import (
	"github.com/alexanderramin/landminer/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// landminerHuhTheme returns a custom huh theme using the existing Gruvbox palette.
func landminerHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// newConfirmForm builds the single-question dialog used before every
// mutating action. accepted starts true so Enter confirms.
func newConfirmForm(title, description string, accepted *bool) *huh.Form {
	*accepted = true
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("确认").
				Negative("取消").
				Value(accepted),
		),
	).WithTheme(landminerHuhTheme()).WithShowHelp(false)
}
