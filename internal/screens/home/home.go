package home

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/notify"
	"github.com/abhisek/lingoquiz/internal/quiz"
	"github.com/abhisek/lingoquiz/internal/router"
	"github.com/abhisek/lingoquiz/internal/screen"
	"github.com/abhisek/lingoquiz/internal/screens/chat"
	"github.com/abhisek/lingoquiz/internal/screens/leaderboard"
	"github.com/abhisek/lingoquiz/internal/screens/results"
	"github.com/abhisek/lingoquiz/internal/screens/skillpick"
	"github.com/abhisek/lingoquiz/internal/store"
	"github.com/abhisek/lingoquiz/internal/ui/components"
	"github.com/abhisek/lingoquiz/internal/ui/layout"
	"github.com/abhisek/lingoquiz/internal/ui/theme"
)

const (
	itemComprehensive = iota
	itemSkill
	itemResults
	itemLeaderboard
	itemQuit
)

type status struct {
	stats    store.UserStats
	premium  bool
	decision engine.Decision
	active   bool
}

type statusMsg struct {
	status       status
	premiumUntil time.Time
	err          error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	svc    *screen.Services
	menu   components.Menu
	status status
	loaded bool
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a HomeScreen.
func New(svc *screen.Services) *HomeScreen {
	h := &HomeScreen{svc: svc}
	h.menu = components.NewMenu(h.items())
	return h
}

func (h *HomeScreen) items() []components.MenuItem {
	svc := h.svc
	push := func(s func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: s()} }
		}
	}

	comprehensive := components.MenuItem{
		Label: "Comprehensive test",
		Action: push(func() screen.Screen {
			return chat.New(svc, quiz.ModeComprehensive, nil)
		}),
	}
	switch {
	case h.status.active:
		comprehensive.Description = "a quiz is in progress, pick it up here"
	case h.loaded && !h.status.decision.Allowed:
		comprehensive.Description = "next test in " + notify.FormatWait(h.status.decision.Remaining)
		comprehensive.Disabled = true
	}

	return []components.MenuItem{
		comprehensive,
		{Label: "Skill practice", Action: push(func() screen.Screen { return skillpick.New(svc) })},
		{Label: "My results", Action: push(func() screen.Screen { return results.New(svc) })},
		{Label: "Leaderboard", Action: push(func() screen.Screen { return leaderboard.New(svc) })},
		{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	svc := h.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		now := svc.Clock()

		var st status
		var err error
		if st.stats, err = svc.Results.Stats(ctx, svc.Identity); err != nil {
			return statusMsg{err: err}
		}
		until, ok, err := svc.Users.PremiumExpiry(ctx, svc.Identity)
		if err != nil {
			return statusMsg{err: err}
		}
		if !ok {
			until = time.Time{}
		}
		st.premium = until.After(now)
		if st.decision, err = svc.Engine.CanStart(ctx, svc.Identity, quiz.ModeComprehensive, now); err != nil {
			return statusMsg{err: err}
		}
		s, err := svc.Engine.Active(ctx, svc.Identity)
		if err != nil {
			return statusMsg{err: err}
		}
		st.active = s != nil && s.Mode == quiz.ModeComprehensive && !engine.IsExpired(s, now)
		return statusMsg{status: st, premiumUntil: until}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(statusMsg); ok {
		if msg.err != nil {
			h.errMsg = msg.err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.status = msg.status
		h.svc.PremiumUntil = msg.premiumUntil
		h.loaded = true
		selected := h.menu.Selected
		h.menu = components.NewMenu(h.items())
		if !h.menu.Items[selected].Disabled {
			h.menu.Selected = selected
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := contentWidth(width)

	labels := make([]string, len(h.menu.Items))
	descriptions := make([]string, len(h.menu.Items))
	disabled := make(map[int]bool)
	for i, item := range h.menu.Items {
		labels[i] = item.Label
		descriptions[i] = item.Description
		disabled[i] = item.Disabled
	}

	sections := []string{renderGreeting(h.svc.DisplayName, cw)}
	if h.loaded {
		sections = append(sections, renderStatusBar(h.status, cw))
	}
	if h.errMsg != "" {
		sections = append(sections, theme.ErrorText.Render(h.errMsg))
	}
	sections = append(sections, renderButtons(labels, descriptions, h.menu.Selected, disabled, cw))

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
