package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizplay/internal/quiz"
	"github.com/abhisek/quizplay/internal/ui/theme"
)

// MatchBoard pairs terms with definitions. A number key picks one of the
// first nine terms and a letter key picks its definition. Up, down and
// space do the same through a cursor, which reaches every row. Backspace
// removes the last pair.
type MatchBoard struct {
	Terms       []string
	Definitions []string
	Answer      quiz.Answer

	// Pending is the index of the picked term, or -1.
	Pending int

	// TermCursor moves over Terms until a term is picked, then DefCursor
	// moves over Definitions.
	TermCursor int
	DefCursor  int

	Locked  bool
	Verdict *bool
}

// NewMatchBoard creates a board for q seeded with a previous answer.
func NewMatchBoard(q *quiz.Matching, answer quiz.Answer) MatchBoard {
	return MatchBoard{
		Terms:       q.Terms(),
		Definitions: q.Definitions(),
		Answer:      answer.Clone(),
		Pending:     -1,
	}
}

// Update handles term, definition and backspace keys.
func (m MatchBoard) Update(msg tea.Msg) (MatchBoard, tea.Cmd) {
	if m.Locked {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch {
	case key == "up":
		if m.Pending < 0 {
			m.TermCursor = max(m.TermCursor-1, 0)
		} else {
			m.DefCursor = max(m.DefCursor-1, 0)
		}
	case key == "down":
		if m.Pending < 0 {
			m.TermCursor = min(m.TermCursor+1, len(m.Terms)-1)
		} else {
			m.DefCursor = min(m.DefCursor+1, len(m.Definitions)-1)
		}
	case key == "space" || key == " ":
		switch {
		case m.Pending < 0 && m.TermCursor < len(m.Terms):
			m.Pending = m.TermCursor
		case m.Pending >= 0 && m.DefCursor < len(m.Definitions):
			m = m.pair(m.DefCursor)
		}
	case key == "backspace":
		if m.Pending >= 0 {
			m.Pending = -1
		} else {
			m.Answer = m.Answer.WithoutLastPair()
		}
	case len(key) == 1 && key[0] >= '1' && key[0] <= '9':
		if i := int(key[0] - '1'); i < len(m.Terms) {
			m.Pending = i
			m.TermCursor = i
		}
	case len(key) == 1 && key[0] >= 'a' && key[0] <= 'z':
		if i := int(key[0] - 'a'); m.Pending >= 0 && i < len(m.Definitions) {
			m = m.pair(i)
		}
	}
	return m, nil
}

// pair records the pending term with definition i and moves the term
// cursor to the next row.
func (m MatchBoard) pair(i int) MatchBoard {
	m.Answer = m.Answer.WithPair(quiz.Pair{Term: m.Terms[m.Pending], Definition: m.Definitions[i]})
	m.Pending = -1
	m.DefCursor = 0
	m.TermCursor = min(m.TermCursor+1, len(m.Terms)-1)
	return m
}

func (m MatchBoard) pairedWith(term string) (string, bool) {
	for _, p := range m.Answer.Pairs {
		if p.Term == term {
			return p.Definition, true
		}
	}
	return "", false
}

// View renders terms and definitions in two columns, then the pairs made
// so far.
func (m MatchBoard) View() string {
	var left, right strings.Builder
	for i, term := range m.Terms {
		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case i == m.Pending:
			style = theme.Selected
		case m.Locked:
			style = theme.Dim
		}
		line := rowLabel(fmt.Sprintf("%d", i+1), i, 9) + term
		if !m.Locked && m.Pending < 0 && i == m.TermCursor {
			line = "▸ " + line
		} else {
			line = "  " + line
		}
		if def, ok := m.pairedWith(term); ok {
			line += theme.Dim.Render(" → " + def)
		}
		left.WriteString(style.Render(line) + "\n")
	}
	for i, def := range m.Definitions {
		marker := "  "
		if !m.Locked && m.Pending >= 0 && i == m.DefCursor {
			marker = "▸ "
		}
		right.WriteString(theme.Body.Render(marker+rowLabel(string(rune('a'+i)), i, 26)+def) + "\n")
	}

	cols := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().PaddingRight(6).Render(left.String()),
		right.String())

	status := fmt.Sprintf("%d of %d paired", len(m.Answer.Pairs), len(m.Terms))
	switch {
	case m.Locked && m.Verdict == nil:
		status = theme.Warning.Render(status)
	case m.Locked && *m.Verdict:
		status = theme.Correct.Render(status + " ✓")
	case m.Locked:
		status = theme.Incorrect.Render(status + " ✗")
	case m.Pending >= 0:
		status = theme.Hint.Render(fmt.Sprintf("Pick a definition for %q", m.Terms[m.Pending]))
	default:
		status = theme.Hint.Render(status)
	}
	return cols + "\n" + status
}

// rowLabel renders the shortcut for row i, or blank padding for rows that
// only the cursor can reach.
func rowLabel(shortcut string, i, limit int) string {
	if i >= limit {
		return "   "
	}
	return shortcut + ". "
}
