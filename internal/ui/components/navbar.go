package components

import (
	"strings"

	"github.com/abhisek/quizplay/internal/ui/theme"
)

// Button is a labelled action that is either enabled or greyed out.
type Button struct {
	Key     string
	Label   string
	Enabled bool
}

// View renders the button.
func (b Button) View() string {
	label := b.Label
	if b.Key != "" {
		label = b.Key + " " + label
	}
	if b.Enabled {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonDisabled.Render(label)
}

// NavBar renders buttons side by side.
func NavBar(buttons ...Button) string {
	parts := make([]string, len(buttons))
	for i, b := range buttons {
		parts[i] = b.View()
	}
	return strings.Join(parts, "  ")
}
