// Package layout draws the chrome around the active screen.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingoquiz/internal/ui/theme"
)

const (
	MinWidth  = 60
	MinHeight = 20

	// Below this width chat bubbles span the whole pane.
	compactBelow = 100
)

const brand = "LingoQuiz"

// KeyHint is one "key action" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsCompactWidth(width int) bool { return width < compactBelow }

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage fills the terminal with a centered resize request.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("Please enlarge the terminal to %dx%d.\nIt is %dx%d now.",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(msg))
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// RenderHeader puts the brand on the left, title in the middle and
// status on the right.
func RenderHeader(title, status string, width int) string {
	inner := max(width-4, 0)
	third := inner / 3

	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).
		Width(third).Render(" " + brand)
	right := lipgloss.NewStyle().Foreground(theme.Accent).
		Width(third).Align(lipgloss.Right).Render(status)
	mid := lipgloss.NewStyle().Foreground(theme.Text).
		Width(inner - 2*third).Align(lipgloss.Center).Render(title)

	return bar(width).Render(lipgloss.JoinHorizontal(lipgloss.Top, left, mid, right))
}

func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	b.WriteString(" ")
	for i, h := range hints {
		if i > 0 {
			b.WriteString(desc.Render("  ·  "))
		}
		b.WriteString(key.Render(h.Key) + " " + desc.Render(h.Description))
	}
	return bar(width).Render(b.String())
}

// RenderFrame stacks header, content and footer, giving content whatever
// height is left.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	pane := lipgloss.NewStyle().Width(width).Height(body).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, pane, footer)
}
