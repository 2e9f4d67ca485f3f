package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/router"
	"github.com/abhisek/lingoquiz/internal/screen"
	"github.com/abhisek/lingoquiz/internal/ui/components"
	"github.com/abhisek/lingoquiz/internal/ui/layout"
	"github.com/abhisek/lingoquiz/internal/ui/theme"
)

// SummaryScreen shows the scored result of a finished quiz.
type SummaryScreen struct {
	summary *engine.Summary
}

var (
	_ screen.Screen          = (*SummaryScreen)(nil)
	_ screen.KeyHintProvider = (*SummaryScreen)(nil)
	_ screen.EscapeHandler   = (*SummaryScreen)(nil)
)

// New creates a new SummaryScreen.
func New(summary *engine.Summary) *SummaryScreen {
	return &SummaryScreen{summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quiz Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Home"},
		{Key: "Esc", Description: "Home"},
	}
}

// HandlesEscape is always true: Esc returns home like Enter does.
func (s *SummaryScreen) HandlesEscape() bool {
	return true
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	center := func(st lipgloss.Style, text string) string {
		return st.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder

	headline := "Quiz complete!"
	if sum.Outcome == engine.OutcomeExpired {
		headline = "Time is up!"
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), headline))
	b.WriteString("\n\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), sum.LevelLabel))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Score: %d/%d        Answered: %d        %d%%",
		sum.Score, sum.Total, sum.Answered, sum.Percentage)
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text), statsLine))
	b.WriteString("\n\n")

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true), "Your level: "+sum.Tier))
	b.WriteString("\n")

	if len(sum.Skills) > 0 {
		barWidth := min(width-8, 60)
		divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", barWidth))

		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("By skill")))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n\n")

		for _, sk := range sum.Skills {
			label := fmt.Sprintf("%-13s %d/%d", sk.Skill.DisplayName(), sk.Correct, sk.Total)
			bar := components.NewProgressBar(label, sk.Ratio(), true, barWidth)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
			b.WriteString("\n")
		}
	}

	return b.String()
}
