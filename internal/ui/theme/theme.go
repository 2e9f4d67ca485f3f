// Package theme holds the colors and text styles of the chat client.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

var (
	Primary   = lipgloss.Color("#2563EB")
	Secondary = lipgloss.Color("#0EA5E9")
	Accent    = lipgloss.Color("#EAB308")
	Success   = lipgloss.Color("#16A34A")
	Error     = lipgloss.Color("#DC2626")

	Text    = lipgloss.Color("#E2E8F0")
	TextDim = lipgloss.Color("#64748B")

	BgDark = lipgloss.Color("#020617")
	BgCard = lipgloss.Color("#111827")
	BgUser = lipgloss.Color("#172554")
	Border = lipgloss.Color("#1F2937")
)

func bold(c color.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

func bubble(bg, edge color.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(Text).
		Background(bg).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(edge).
		Padding(0, 1)
}

var (
	Title     = bold(Primary).Align(lipgloss.Center)
	Body      = lipgloss.NewStyle().Foreground(Text)
	Hint      = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	ErrorText = bold(Error)

	// BotBubble frames quiz-bot messages; UserBubble frames the player's.
	BotBubble  = bubble(BgCard, Border)
	UserBubble = bubble(BgUser, Primary)
	Notice     = lipgloss.NewStyle().Foreground(Accent).Italic(true)

	Selected   = bold(Primary)
	Unselected = Body
	Correct    = bold(Success)
	Incorrect  = bold(Error)
)
