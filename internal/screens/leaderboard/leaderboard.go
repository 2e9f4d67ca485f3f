// Package leaderboard ranks players by their summed score.
package leaderboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingoquiz/internal/screen"
	"github.com/abhisek/lingoquiz/internal/store"
	"github.com/abhisek/lingoquiz/internal/ui/layout"
	"github.com/abhisek/lingoquiz/internal/ui/theme"
)

// Size is the number of rows shown.
const Size = 10

type loadedMsg struct {
	rows []store.LeaderboardEntry
	err  error
}

// LeaderboardScreen lists the top players.
type LeaderboardScreen struct {
	svc    *screen.Services
	rows   []store.LeaderboardEntry
	loaded bool
	errMsg string
}

var _ screen.Screen = (*LeaderboardScreen)(nil)
var _ screen.KeyHintProvider = (*LeaderboardScreen)(nil)

func New(svc *screen.Services) *LeaderboardScreen {
	return &LeaderboardScreen{svc: svc}
}

func (s *LeaderboardScreen) Init() tea.Cmd {
	results := s.svc.Results
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rows, err := results.Leaderboard(ctx, Size)
		return loadedMsg{rows: rows, err: err}
	}
}

func (s *LeaderboardScreen) Title() string {
	return "Leaderboard"
}

func (s *LeaderboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *LeaderboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(loadedMsg); ok {
		s.loaded = true
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.rows = msg.rows
	}
	return s, nil
}

var medals = []string{"🥇", "🥈", "🥉"}

func (s *LeaderboardScreen) View(width, height int) string {
	centered := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	switch {
	case s.errMsg != "":
		return centered.Foreground(theme.Error).Render("\n\nError: " + s.errMsg)
	case !s.loaded:
		return centered.Foreground(theme.TextDim).Render("\n\n  Loading leaderboard...")
	case len(s.rows) == 0:
		return centered.Foreground(theme.TextDim).Italic(true).Render("\n\n  Nobody has finished a quiz yet.")
	}

	var lines []string
	for i, row := range s.rows {
		rank := fmt.Sprintf("%2d.", i+1)
		if i < len(medals) {
			rank = medals[i] + " "
		}
		name := row.DisplayName
		if name == "" {
			name = row.Identity
		}
		line := fmt.Sprintf("%s %-24s %6d pts  %3d tests", rank, name, row.TotalScore, row.Tests)

		style := theme.Unselected
		if row.Identity == s.svc.Identity {
			style = theme.Selected
		}
		lines = append(lines, style.Render(line))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		strings.Join(lines, "\n"))
}
