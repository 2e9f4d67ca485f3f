// Package results shows the local player's statistics and quiz history.
package results

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingoquiz/internal/quiz"
	"github.com/abhisek/lingoquiz/internal/screen"
	"github.com/abhisek/lingoquiz/internal/store"
	"github.com/abhisek/lingoquiz/internal/ui/components"
	"github.com/abhisek/lingoquiz/internal/ui/layout"
	"github.com/abhisek/lingoquiz/internal/ui/theme"
)

// HistoryLimit caps how many past quizzes are listed.
const HistoryLimit = 50

type loadedMsg struct {
	stats   store.UserStats
	history []quiz.HistoricalResult
	err     error
}

// ResultsScreen displays stats and past quizzes.
type ResultsScreen struct {
	svc      *screen.Services
	stats    store.UserStats
	history  []quiz.HistoricalResult
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a new ResultsScreen.
func New(svc *screen.Services) *ResultsScreen {
	return &ResultsScreen{svc: svc}
}

func (s *ResultsScreen) Init() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		stats, err := svc.Results.Stats(ctx, svc.Identity)
		if err != nil {
			return loadedMsg{err: err}
		}
		history, err := svc.Results.History(ctx, svc.Identity, HistoryLimit)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{stats: stats, history: history}
	}
}

func (s *ResultsScreen) Title() string {
	return "My Results"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			s.errMsg = msg.err.Error()
		} else {
			s.stats = msg.stats
			s.history = msg.history
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.history)-1 {
				s.selected++
			}
		}
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	centered := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return centered.Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return centered.Foreground(theme.TextDim).
			Render("\n\n  Loading results...")
	}
	if len(s.history) == 0 {
		return centered.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No quizzes yet. Take your first test!")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centered.Foreground(theme.Text).Bold(true).Render(fmt.Sprintf(
		"Tests: %d    Total: %d    Best: %d    Average: %.1f    Level: %s",
		s.stats.TestsTaken, s.stats.TotalScore, s.stats.HighestScore, s.stats.AverageScore, s.stats.LastLevel)))
	b.WriteString("\n\n")

	barWidth := min(width-8, 70)
	// Reserve the stats block and leave a line of slack.
	visible := max(height-5, 1)
	start := 0
	if s.selected >= visible {
		start = s.selected - visible + 1
	}

	for i := start; i < len(s.history) && i < start+visible; i++ {
		r := s.history[i]
		label := fmt.Sprintf("%s  %-13s %3d/%-3d %-3s",
			r.FinishedAt.Local().Format("Jan 02 15:04"), modeName(r.Mode), r.Score, r.Total, r.Level)
		bar := components.NewProgressBar(label, float64(quiz.Percentage(r.Score, r.Total))/100, true, barWidth)

		line := bar.View()
		if i == s.selected {
			line = theme.Selected.Render("▸ ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
		b.WriteString("\n")
	}

	return b.String()
}

func modeName(m quiz.Mode) string {
	if m == quiz.ModeComprehensive {
		return quiz.ComprehensiveLabel
	}
	return "Practice"
}
