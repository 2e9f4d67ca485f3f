// Package skillpick lets the player choose a skill and a level for a
// practice quiz.
package skillpick

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingoquiz/internal/engine"
	"github.com/abhisek/lingoquiz/internal/quiz"
	"github.com/abhisek/lingoquiz/internal/router"
	"github.com/abhisek/lingoquiz/internal/screen"
	"github.com/abhisek/lingoquiz/internal/screens/chat"
	"github.com/abhisek/lingoquiz/internal/ui/components"
	"github.com/abhisek/lingoquiz/internal/ui/layout"
	"github.com/abhisek/lingoquiz/internal/ui/theme"
)

var skillBlurbs = map[quiz.Skill]string{
	quiz.SkillGrammar:      "tenses, articles, word order",
	quiz.SkillVocabulary:   "meanings, synonyms, collocations",
	quiz.SkillReading:      "short passages and their details",
	quiz.SkillConversation: "natural replies in everyday dialogue",
}

// SkillPickScreen walks through two menus: skill, then level.
type SkillPickScreen struct {
	svc   *screen.Services
	menu  components.Menu
	skill quiz.Skill
}

var (
	_ screen.Screen          = (*SkillPickScreen)(nil)
	_ screen.KeyHintProvider = (*SkillPickScreen)(nil)
	_ screen.EscapeHandler   = (*SkillPickScreen)(nil)
)

// New creates a SkillPickScreen showing the skill menu.
func New(svc *screen.Services) *SkillPickScreen {
	s := &SkillPickScreen{svc: svc}
	s.menu = s.skillMenu()
	return s
}

type skillChosenMsg struct{ skill quiz.Skill }

func (s *SkillPickScreen) skillMenu() components.Menu {
	var items []components.MenuItem
	for _, sk := range quiz.AllSkills() {
		items = append(items, components.MenuItem{
			Label:       sk.DisplayName(),
			Description: skillBlurbs[sk],
			Action: func() tea.Cmd {
				return func() tea.Msg { return skillChosenMsg{skill: sk} }
			},
		})
	}
	return components.NewMenu(items)
}

func (s *SkillPickScreen) levelMenu() components.Menu {
	var items []components.MenuItem
	for _, lvl := range quiz.AllLevels() {
		sel := &engine.Selection{Skill: s.skill, Level: lvl}
		svc := s.svc
		items = append(items, components.MenuItem{
			Label: lvl.DisplayName(),
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.ReplaceScreenMsg{Screen: chat.New(svc, quiz.ModeSkill, sel)}
				}
			},
		})
	}
	return components.NewMenu(items)
}

func (s *SkillPickScreen) Init() tea.Cmd {
	return nil
}

func (s *SkillPickScreen) Title() string {
	if s.skill != "" {
		return s.skill.DisplayName() + " practice"
	}
	return "Skill practice"
}

// HandlesEscape is true while the level menu is shown; Esc then goes back
// to the skill menu.
func (s *SkillPickScreen) HandlesEscape() bool {
	return s.skill != ""
}

func (s *SkillPickScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SkillPickScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case skillChosenMsg:
		s.skill = msg.skill
		s.menu = s.levelMenu()
		return s, nil
	case tea.KeyPressMsg:
		if msg.String() == "esc" && s.skill != "" {
			s.skill = ""
			s.menu = s.skillMenu()
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *SkillPickScreen) View(width, height int) string {
	prompt := "Which skill do you want to practice?"
	if s.skill != "" {
		prompt = fmt.Sprintf("How hard should the %s questions be?", s.skill.DisplayName())
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render(prompt),
		"",
		s.menu.View(),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
