package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizplay/internal/ui/theme"
)

// ChoiceList is a single-select list of options, used for multiple-choice
// and true/false questions.
type ChoiceList struct {
	Options []string
	Cursor  int

	// Chosen is the selected option, or "" when nothing is selected.
	Chosen string

	// Locked disables input. Verdict, when set, colors the chosen option.
	Locked  bool
	Verdict *bool
}

// NewChoiceList creates a list with the cursor on the first option. A
// non-empty chosen value moves the cursor to it.
func NewChoiceList(options []string, chosen string) ChoiceList {
	c := ChoiceList{Options: options, Chosen: chosen}
	for i, opt := range options {
		if opt == chosen {
			c.Cursor = i
			break
		}
	}
	return c
}

// Update handles arrow keys, space and number keys. Space and number keys
// select; arrows only move the cursor.
func (c ChoiceList) Update(msg tea.Msg) (ChoiceList, tea.Cmd) {
	if c.Locked || len(c.Options) == 0 {
		return c, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	case "space", " ":
		c.Chosen = c.Options[c.Cursor]
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(c.Options) {
				c.Cursor = i
				c.Chosen = c.Options[i]
			}
		}
	}
	return c, nil
}

// View renders the list.
func (c ChoiceList) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		mark := "( )"
		if opt == c.Chosen {
			mark = "(•)"
		}
		cursor := "  "
		if i == c.Cursor && !c.Locked {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%d. %s %s", cursor, i+1, mark, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case c.Locked && opt == c.Chosen && c.Verdict != nil && *c.Verdict:
			style = theme.Correct
		case c.Locked && opt == c.Chosen && c.Verdict != nil:
			style = theme.Incorrect
		case c.Locked && opt == c.Chosen:
			style = theme.Warning
		case c.Locked:
			style = theme.Dim
		case i == c.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
