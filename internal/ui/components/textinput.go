package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingoquiz/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with the app styling and an optional
// validation hook.
type TextInput struct {
	Model    textinput.Model
	Validate func(string) error
	MaxWidth int
	err      error
}

// NewTextInput creates a focused text input.
func NewTextInput(placeholder string, maxWidth int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if maxWidth > 0 {
		ti.CharLimit = maxWidth
	}

	return TextInput{
		Model:    ti,
		MaxWidth: maxWidth,
	}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update forwards the message to the underlying model and clears any
// previous validation error.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		t.err = nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the input and the last validation error, if any.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.err != nil {
		view += "\n" + lipgloss.NewStyle().Foreground(theme.Error).Render(t.err.Error())
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Submit runs Validate against the current value and remembers the error
// for rendering.
func (t *TextInput) Submit() error {
	t.err = nil
	if t.Validate != nil {
		t.err = t.Validate(t.Model.Value())
	}
	return t.err
}

// Err returns the last validation error.
func (t TextInput) Err() error {
	return t.err
}
