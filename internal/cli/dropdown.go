package cli

import (
	"strings"

	"github.com/alexanderramin/landminer/internal/cli/formatter"
	tea "github.com/charmbracelet/bubbletea"
)

type dropdownOption[T any] struct {
	Label string
	Value T
}

// dropdown is a single-select list. It listens to keys only while open:
// its own navigation keys are consumed, and any other key closes it and is
// handed back to the caller.
type dropdown[T any] struct {
	placeholder string
	options     []dropdownOption[T]
	cursor      int
	selected    int
	open        bool
}

func newDropdown[T any](placeholder string, options []dropdownOption[T]) *dropdown[T] {
	return &dropdown[T]{placeholder: placeholder, options: options, selected: -1}
}

func (d *dropdown[T]) IsOpen() bool { return d.open }

func (d *dropdown[T]) Open() {
	if len(d.options) == 0 {
		return
	}
	d.open = true
	if d.selected >= 0 {
		d.cursor = d.selected
	}
}

func (d *dropdown[T]) Close() { d.open = false }

// Selected returns the chosen value, if any.
func (d *dropdown[T]) Selected() (T, bool) {
	if d.selected < 0 || d.selected >= len(d.options) {
		var zero T
		return zero, false
	}
	return d.options[d.selected].Value, true
}

func (d *dropdown[T]) SelectedLabel() string {
	if d.selected < 0 || d.selected >= len(d.options) {
		return ""
	}
	return d.options[d.selected].Label
}

// Update handles a key and reports whether the dropdown consumed it. A
// closed dropdown never consumes anything.
func (d *dropdown[T]) Update(msg tea.KeyMsg) bool {
	if !d.open {
		return false
	}
	switch msg.String() {
	case "up", "k":
		if d.cursor > 0 {
			d.cursor--
		}
		return true
	case "down", "j":
		if d.cursor < len(d.options)-1 {
			d.cursor++
		}
		return true
	case "enter", " ":
		d.selected = d.cursor
		d.open = false
		return true
	case "esc":
		d.open = false
		return true
	}
	d.open = false
	return false
}

func (d *dropdown[T]) View(focused bool) string {
	label := d.SelectedLabel()
	if label == "" {
		label = formatter.Dim(d.placeholder)
	}
	arrow := "▾"
	if d.open {
		arrow = "▴"
	}
	field := "[ " + label + " " + arrow + " ]"
	if focused {
		field = formatter.StyleHeader.Render("[ ") + label + formatter.StyleHeader.Render(" "+arrow+" ]")
	}
	if !d.open {
		return field
	}

	var b strings.Builder
	b.WriteString(field)
	for i, opt := range d.options {
		b.WriteString("\n")
		switch {
		case i == d.cursor:
			b.WriteString(formatter.StyleHeader.Render("  › " + opt.Label))
		case i == d.selected:
			b.WriteString(formatter.StyleGreen.Render("    " + opt.Label))
		default:
			b.WriteString("    " + opt.Label)
		}
	}
	return b.String()
}
