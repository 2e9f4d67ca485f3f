package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingoquiz/internal/router"
	"github.com/abhisek/lingoquiz/internal/screen"
	"github.com/abhisek/lingoquiz/internal/screens/home"
	"github.com/abhisek/lingoquiz/internal/screens/welcome"
	"github.com/abhisek/lingoquiz/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	svc    *screen.Services
	router *router.Router
	width  int
	height int
}

// newAppModel starts at the welcome screen, which hands over to home once
// the player is known. A player named on the command line starts at home.
func newAppModel(svc *screen.Services) AppModel {
	homeFactory := func() screen.Screen { return home.New(svc) }
	root := homeFactory()
	if svc.Identity == "" {
		root = welcome.New(svc, homeFactory)
	}
	return AppModel{
		svc:    svc,
		router: router.New(root),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	switch {
	case m.width == 0 || m.height == 0:
		return v
	case layout.IsTooSmall(m.width, m.height):
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	var title string
	if active != nil {
		title = active.Title()
	}
	header := layout.RenderHeader(title, m.playerBadge(), m.width)
	footer := layout.RenderFooter(m.hints(active), m.width)

	pane := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	v.SetContent(layout.RenderFrame(header, m.router.View(m.width, pane), footer, m.width, m.height))
	return v
}

// playerBadge is the header status: the player's name, starred while
// premium is active.
func (m AppModel) playerBadge() string {
	name := m.svc.DisplayName
	if name != "" && m.svc.IsPremium() {
		return "★ " + name
	}
	return name
}

func (m AppModel) hints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	first := layout.KeyHint{Key: "Enter", Description: "Continue"}
	if m.router.Depth() > 1 {
		first = layout.KeyHint{Key: "Esc", Description: "Back"}
	}
	return []layout.KeyHint{first, {Key: "Ctrl+C", Description: "Quit"}}
}

// Run starts the terminal client.
func Run(svc *screen.Services) error {
	if _, err := tea.NewProgram(newAppModel(svc)).Run(); err != nil {
		return fmt.Errorf("terminal client: %w", err)
	}
	return nil
}
