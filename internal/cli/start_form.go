package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/landminer/internal/cli/formatter"
	"github.com/alexanderramin/landminer/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	landRequiredMsg  = "请选择土地"
	toolsRequiredMsg = "请至少选择一个工具"
)

type startField int

const (
	fieldLand startField = iota
	fieldTools
	fieldSubmit
	startFieldCount
)

// formAction is what a key press asked the start form's owner to do.
type formAction int

const (
	formNone formAction = iota
	formSubmit
	formCancel
)

// startForm collects one land and a set of eligible tools. Errors are
// raised only on submit and hidden again only by a passing submit.
type startForm struct {
	lands      *dropdown[int64]
	tools      []domain.Tool
	chosen     map[int64]bool
	toolCursor int
	focus      startField

	showLandError  bool
	showToolsError bool
}

func newStartForm(lands []domain.Land, tools []domain.Tool) *startForm {
	opts := make([]dropdownOption[int64], 0, len(lands))
	for _, l := range lands {
		opts = append(opts, dropdownOption[int64]{Label: l.Label(), Value: l.ID})
	}
	return &startForm{
		lands:  newDropdown("选择土地", opts),
		tools:  domain.EligibleTools(tools),
		chosen: make(map[int64]bool),
	}
}

// LandID returns the selected land, if any.
func (f *startForm) LandID() (int64, bool) {
	return f.lands.Selected()
}

// ToggleTool adds or removes a tool from the selection.
func (f *startForm) ToggleTool(id int64) {
	if f.chosen[id] {
		delete(f.chosen, id)
		return
	}
	f.chosen[id] = true
}

// SelectedToolIDs returns the chosen tools in list order.
func (f *startForm) SelectedToolIDs() []int64 {
	ids := make([]int64, 0, len(f.chosen))
	for _, t := range f.tools {
		if f.chosen[t.ID] {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Estimate projects the hourly cost of the current selection.
func (f *startForm) Estimate() domain.Consumption {
	return domain.EstimateConsumption(len(f.chosen))
}

// Validate runs the submit-time checks.
func (f *startForm) Validate() bool {
	_, hasLand := f.LandID()
	hasTools := len(f.chosen) > 0
	if hasLand && hasTools {
		f.showLandError = false
		f.showToolsError = false
		return true
	}
	if !hasLand {
		f.showLandError = true
	}
	if !hasTools {
		f.showToolsError = true
	}
	return false
}

func (f *startForm) Update(msg tea.KeyMsg) formAction {
	if f.lands.Update(msg) {
		return formNone
	}

	switch msg.String() {
	case "esc":
		return formCancel
	case "tab":
		f.focus = (f.focus + 1) % startFieldCount
		return formNone
	case "shift+tab":
		f.focus = (f.focus + startFieldCount - 1) % startFieldCount
		return formNone
	}

	switch f.focus {
	case fieldLand:
		switch msg.String() {
		case "enter", " ":
			f.lands.Open()
		case "down", "j":
			f.focus = fieldTools
		}
	case fieldTools:
		switch msg.String() {
		case "up", "k":
			if f.toolCursor > 0 {
				f.toolCursor--
			} else {
				f.focus = fieldLand
			}
		case "down", "j":
			if f.toolCursor < len(f.tools)-1 {
				f.toolCursor++
			} else {
				f.focus = fieldSubmit
			}
		case " ", "x":
			if f.toolCursor < len(f.tools) {
				f.ToggleTool(f.tools[f.toolCursor].ID)
			}
		case "a":
			f.toggleAll()
		case "enter":
			return f.submit()
		}
	case fieldSubmit:
		switch msg.String() {
		case "up", "k":
			f.focus = fieldTools
		case "enter", " ":
			return f.submit()
		}
	}
	return formNone
}

func (f *startForm) submit() formAction {
	if f.Validate() {
		return formSubmit
	}
	return formNone
}

// toggleAll selects every tool, or clears the selection when all are chosen.
func (f *startForm) toggleAll() {
	if len(f.chosen) == len(f.tools) {
		f.chosen = make(map[int64]bool)
		return
	}
	for _, t := range f.tools {
		f.chosen[t.ID] = true
	}
}

func (f *startForm) View() string {
	var b strings.Builder

	b.WriteString(formatter.KeyValue("土地", f.lands.View(f.focus == fieldLand)))
	b.WriteString("\n")
	if f.showLandError {
		b.WriteString(formatter.StyleRed.Render("  ⚠ " + landRequiredMsg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formatter.Dim(fmt.Sprintf("工具 (已选 %d/%d)", len(f.chosen), len(f.tools))))
	b.WriteString("\n")
	if len(f.tools) == 0 {
		b.WriteString(formatter.Dim("  没有可用的工具"))
		b.WriteString("\n")
	}
	for i, t := range f.tools {
		box := "[ ]"
		if f.chosen[t.ID] {
			box = formatter.StyleGreen.Render("[x]")
		}
		line := fmt.Sprintf("%s %s", box, t.Label())
		if f.focus == fieldTools && i == f.toolCursor {
			b.WriteString(formatter.StyleHeader.Render("› ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if f.showToolsError {
		b.WriteString(formatter.StyleRed.Render("  ⚠ " + toolsRequiredMsg))
		b.WriteString("\n")
	}

	est := f.Estimate()
	b.WriteString("\n")
	b.WriteString(formatter.KeyValue("预计消耗", fmt.Sprintf("粮食 %d/小时 · 耐久 %d/小时", est.Food, est.Durability)))
	b.WriteString("\n\n")

	button := "[ 下一步 ]"
	if f.focus == fieldSubmit {
		button = formatter.StyleHeader.Render(button)
	} else {
		button = formatter.Dim(button)
	}
	b.WriteString(button)

	return b.String()
}
