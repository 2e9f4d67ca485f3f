package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingoquiz/internal/ui/theme"
)

// MenuItem is one entry in a Menu. Description renders dimmed beside the
// label and is usually used for status such as a remaining cooldown.
type MenuItem struct {
	Label       string
	Description string
	Action      func() tea.Cmd
	Disabled    bool
}

// Menu is a vertical list of actions. The cursor never rests on a
// disabled item unless every item is disabled.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	if !m.move(1) {
		m.Selected = 0
	}
	return m
}

// move steps the cursor to the next enabled item in direction dir and
// reports whether one was found.
func (m *Menu) move(dir int) bool {
	for i := m.Selected + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			m.Selected = i
			return true
		}
	}
	return false
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "enter":
		if m.Selected < 0 || m.Selected >= len(m.Items) {
			break
		}
		if it := m.Items[m.Selected]; !it.Disabled && it.Action != nil {
			return m, it.Action()
		}
	}
	return m, nil
}

func (m Menu) View() string {
	dim := theme.Hint.UnsetItalic()
	var b strings.Builder
	for i, it := range m.Items {
		switch {
		case it.Disabled:
			b.WriteString(dim.Render("    " + it.Label))
		case i == m.Selected:
			b.WriteString(theme.Selected.Render("  ▸ " + it.Label))
		default:
			b.WriteString(theme.Unselected.Render("    " + it.Label))
		}
		if it.Description != "" {
			b.WriteString("  " + theme.Hint.Render(it.Description))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
