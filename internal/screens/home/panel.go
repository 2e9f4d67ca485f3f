package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingoquiz/internal/ui/theme"
)

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 28

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 64)
}

func renderGreeting(name string, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render(fmt.Sprintf("Hi %s! Ready for a quiz?", name))
}

// renderStatusBar shows the player's track record and plan.
func renderStatusBar(st status, cw int) string {
	strong := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := []string{strong.Render(fmt.Sprintf("%d TESTS", st.stats.TestsTaken))}
	if st.stats.TestsTaken > 0 {
		parts = append(parts,
			strong.Render(fmt.Sprintf("BEST %d", st.stats.HighestScore)),
			strong.Render("LEVEL "+st.stats.LastLevel))
	}
	if st.premium {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.Success).Bold(true).Render("★ PREMIUM"))
	} else {
		parts = append(parts, dim.Render("FREE PLAN"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(strings.Join(parts, "  ·  "))
}

// renderButtons renders each menu item as a fixed-width button with its
// description underneath.
func renderButtons(labels, descriptions []string, selected int, disabled map[int]bool, cw int) string {
	base := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	selectedBtn := base.
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.Primary).
		BorderForeground(theme.Primary)
	normalBtn := base.
		Foreground(theme.Text).
		BorderForeground(theme.Border)
	disabledBtn := base.
		Foreground(theme.TextDim).
		BorderForeground(theme.Border)

	var buttons []string
	for i, label := range labels {
		var btn string
		switch {
		case disabled[i]:
			btn = disabledBtn.Render(label)
		case i == selected:
			btn = selectedBtn.Render("▸ " + label)
		default:
			btn = normalBtn.Render(label)
		}
		if d := descriptions[i]; d != "" {
			btn = lipgloss.JoinVertical(lipgloss.Center, btn, theme.Hint.Render(d))
		}
		buttons = append(buttons, btn)
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderFrame wraps content in a double-border frame, centered in the
// given area.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
