package welcome

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingoquiz/internal/router"
	"github.com/abhisek/lingoquiz/internal/screen"
	"github.com/abhisek/lingoquiz/internal/ui/components"
	"github.com/abhisek/lingoquiz/internal/ui/theme"
)

const (
	tickInterval = 150 * time.Millisecond
	maxNameLen   = 32

	// IdentityPrefix namespaces terminal players in the shared store.
	IdentityPrefix = "tui:"
)

var sparkleFrames = []string{"★", "✦", "✧"}

type tickMsg time.Time

type ensuredMsg struct {
	err error
}

// WelcomeScreen greets the player and asks for a name. The name becomes
// the identity every quiz is recorded under.
type WelcomeScreen struct {
	svc          *screen.Services
	homeFactory  func() screen.Screen
	input        components.TextInput
	tickCount    int
	saving       bool
	errMsg       string
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that replaces itself with the screen
// produced by homeFactory once the player is known.
func New(svc *screen.Services, homeFactory func() screen.Screen) *WelcomeScreen {
	input := components.NewTextInput("your name", maxNameLen)
	input.Validate = ValidateName
	if svc.DisplayName != "" {
		input.Model.SetValue(svc.DisplayName)
	}
	return &WelcomeScreen{
		svc:         svc,
		homeFactory: homeFactory,
		input:       input,
	}
}

// ValidateName accepts names of letters, digits, spaces, dots, dashes and
// underscores.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("please enter a name")
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune(" ._-", r) {
			return errors.New("names may only use letters, digits, spaces and . _ -")
		}
	}
	return nil
}

// IdentityFor derives the stored identity from a display name.
func IdentityFor(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	return IdentityPrefix + strings.Join(fields, "-")
}

func (w *WelcomeScreen) Title() string {
	return "Welcome"
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Batch(w.input.Init(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		w.tickCount++
		return w, tick()

	case ensuredMsg:
		w.saving = false
		if msg.err != nil {
			w.errMsg = msg.err.Error()
			return w, nil
		}
		return w, w.transition()

	case tea.KeyPressMsg:
		if w.saving || w.transitioned {
			return w, nil
		}
		if msg.String() == "enter" {
			return w, w.submit()
		}
	}

	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	return w, cmd
}

func (w *WelcomeScreen) submit() tea.Cmd {
	if err := w.input.Submit(); err != nil {
		return nil
	}
	name := strings.TrimSpace(w.input.Value())
	w.svc.DisplayName = name
	w.svc.Identity = IdentityFor(name)
	w.saving = true
	w.errMsg = ""

	svc := w.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return ensuredMsg{err: svc.Users.Ensure(ctx, svc.Identity, svc.DisplayName, svc.Clock())}
	}
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	home := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: home}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	sparkle := sparkleFrames[w.tickCount%len(sparkleFrames)]
	accent := lipgloss.NewStyle().Foreground(theme.Accent)

	sections := []string{
		RenderBanner(width),
		"",
		accent.Render(sparkle) + "  " +
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("How good is your English? Let's find out.") +
			"  " + accent.Render(sparkle),
		"",
		theme.Body.Render("What should we call you?"),
		w.input.View(),
	}

	switch {
	case w.saving:
		sections = append(sections, "", theme.Hint.Render("saving..."))
	case w.errMsg != "":
		sections = append(sections, "", theme.ErrorText.Render(w.errMsg))
	default:
		sections = append(sections, "", theme.Hint.Render("press enter to continue"))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, sections...))
}
