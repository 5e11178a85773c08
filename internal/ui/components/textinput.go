package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizplay/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with quizplay styling.
type TextInput struct {
	Model   textinput.Model
	locked  bool
	verdict *bool
}

// NewTextInput creates a focused text input.
func NewTextInput(placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	ti.Focus()
	return TextInput{Model: ti}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. A locked input ignores them.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.locked {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	if !t.locked {
		return t.Model.View()
	}
	value := t.Model.Value()
	switch {
	case t.verdict == nil:
		return theme.Warning.Render(value)
	case *t.verdict:
		return theme.Correct.Render(value) + " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
	default:
		return theme.Incorrect.Render(value) + " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
	}
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the input value.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
}

// Lock blurs the input. A nil verdict renders the value as unscored.
func (t *TextInput) Lock(verdict *bool) {
	t.locked = true
	t.verdict = verdict
	t.Model.Blur()
}

// Locked reports whether the input accepts keys.
func (t TextInput) Locked() bool {
	return t.locked
}
