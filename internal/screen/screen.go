package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizplay/internal/ui/layout"
)

// Screen is one page of the TUI.
type Screen interface {
	// Init returns an initial command when the screen is first shown.
	Init() tea.Cmd

	// Update handles messages and returns the updated screen and command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content, excluding header and footer.
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show a status in the
// header's right corner.
type StatusProvider interface {
	Status() string
}

// Closer is implemented by screens holding resources. Close is called once
// when the screen leaves the stack.
type Closer interface {
	Close()
}
