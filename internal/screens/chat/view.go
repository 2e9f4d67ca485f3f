package chat

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingoquiz/internal/notify"
	"github.com/abhisek/lingoquiz/internal/ui/components"
	"github.com/abhisek/lingoquiz/internal/ui/layout"
	"github.com/abhisek/lingoquiz/internal/ui/theme"
)

func (c *ChatScreen) View(width, height int) string {
	var footer []string
	if c.prompt != nil {
		remaining := c.deadline.Sub(c.svc.Clock())
		footer = append(footer,
			components.Countdown(remaining, c.window, width-4),
			"",
			c.choice.View(),
		)
	} else if c.summary != nil {
		footer = append(footer, theme.Hint.Render("press enter to see your results"))
	} else if c.busy {
		footer = append(footer, theme.Hint.Render("..."))
	}
	bottom := strings.Join(footer, "\n")

	logHeight := max(height-lipgloss.Height(bottom)-1, 0)
	log := c.renderLog(width, logHeight)

	return lipgloss.NewStyle().Padding(0, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, log, bottom))
}

// renderLog renders the newest entries that fit in height, bottom-aligned.
func (c *ChatScreen) renderLog(width, height int) string {
	bubbleWidth := min(width*3/4, 72)
	if layout.IsCompactWidth(width) {
		bubbleWidth = width - 6
	}
	inner := width - 4

	var blocks []string
	used := 0
	for i := len(c.entries) - 1; i >= 0; i-- {
		block := renderEntry(c.entries[i], bubbleWidth, inner)
		h := lipgloss.Height(block)
		if used+h > height && len(blocks) > 0 {
			break
		}
		blocks = append(blocks, block)
		used += h
	}
	for i, j := 0, len(blocks)-1; i < j; i, j = i+1, j-1 {
		blocks[i], blocks[j] = blocks[j], blocks[i]
	}

	return lipgloss.NewStyle().
		Height(height).
		AlignVertical(lipgloss.Bottom).
		Render(strings.Join(blocks, "\n"))
}

func renderEntry(e entry, bubbleWidth, width int) string {
	switch {
	case e.fromUser:
		return lipgloss.PlaceHorizontal(width, lipgloss.Right,
			theme.UserBubble.MaxWidth(bubbleWidth).Render(e.text))
	case e.kind == kindError:
		return theme.ErrorText.Width(bubbleWidth).Render("⚠ " + e.text)
	case e.kind == notify.KindNotice:
		return theme.Notice.Width(bubbleWidth).Render(e.text)
	}
	text := e.text
	if e.kind == notify.KindQuestion {
		// The options are rendered interactively below the log.
		if i := strings.Index(text, "\n\n1) "); i >= 0 {
			text = text[:i]
		}
	}
	return theme.BotBubble.Width(bubbleWidth).Render(text)
}

// String renders the entry without styling.
func (e entry) String() string {
	who := "bot"
	if e.fromUser {
		who = "you"
	}
	return fmt.Sprintf("[%s/%s] %s", who, e.kind, e.text)
}
