package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizplay/internal/router"
	"github.com/abhisek/quizplay/internal/screen"
	"github.com/abhisek/quizplay/internal/screens/summary"
	"github.com/abhisek/quizplay/internal/store"
	"github.com/abhisek/quizplay/internal/ui/layout"
	"github.com/abhisek/quizplay/internal/ui/theme"
)

// Limit is the number of sessions loaded.
const Limit = 50

type historyLoadedMsg struct {
	Sessions []store.SessionSummary
	Err      error
}

type answersLoadedMsg struct {
	SessionID string
	Answers   []store.AnswerEvent
	Err       error
}

// HistoryScreen lists past sessions. Enter expands a session into its
// answers.
type HistoryScreen struct {
	eventRepo store.EventRepo
	sessions  []store.SessionSummary
	answers   map[string][]store.AnswerEvent
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		answers:   make(map[string][]store.AnswerEvent),
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		sessions, err := repo.QuerySessionSummaries(context.Background(), store.QueryOpts{Limit: Limit})
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Answers"},
		{Key: "↑↓", Description: "Navigate"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case answersLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.answers[msg.SessionID] = msg.Answers
		return s, nil

	case tea.KeyMsg:
		if s.errMsg != "" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
		case "enter":
			return s, s.toggle()
		}
	}
	return s, nil
}

// toggle expands or collapses the selected session, loading its answers
// the first time.
func (s *HistoryScreen) toggle() tea.Cmd {
	if s.selected >= len(s.sessions) {
		return nil
	}
	s.expanded[s.selected] = !s.expanded[s.selected]
	id := s.sessions[s.selected].SessionID
	if _, ok := s.answers[id]; ok || !s.expanded[s.selected] {
		return nil
	}
	repo := s.eventRepo
	return func() tea.Msg {
		answers, err := repo.QueryAnswers(context.Background(), id)
		return answersLoadedMsg{SessionID: id, Answers: answers, Err: err}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.RenderError(s.errMsg, width)
	}
	if !s.loaded {
		return layout.RenderMessage("Loading history...", theme.Dim, width)
	}
	if len(s.sessions) == 0 {
		return layout.RenderMessage("No sessions yet. Pick a test to get started!", theme.Hint, width)
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, sess := range s.sessions {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, sessionStyle(sess, i == s.selected).Render(prefix+FormatSession(sess))))
		b.WriteString("\n")

		if !s.expanded[i] {
			continue
		}
		answers, ok := s.answers[sess.SessionID]
		switch {
		case !ok:
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render("    Loading answers...")))
			b.WriteString("\n")
		case len(answers) == 0:
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Hint.Render("    No answers recorded")))
			b.WriteString("\n")
		}
		for _, a := range answers {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, answerStyle(a).Render("    "+FormatAnswer(a))))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FormatSession renders one history row.
func FormatSession(sess store.SessionSummary) string {
	status := ""
	if !sess.Completed {
		status = "  (unfinished)"
	}
	return fmt.Sprintf("%s  %-28s  %d/%d answered  %d correct  %.0f%%  %s%s",
		sess.Timestamp.Local().Format("Jan 02 15:04"),
		truncate(sess.TestName, 28),
		sess.Answered, sess.Questions, sess.Correct, sess.Accuracy*100,
		summary.FormatDuration(sess.DurationSecs), status)
}

// FormatAnswer renders one recorded answer.
func FormatAnswer(a store.AnswerEvent) string {
	mark := "✗"
	switch {
	case !a.Scoreable:
		mark = "?"
	case a.Correct:
		mark = "✓"
	}
	return fmt.Sprintf("%s %s: %s", mark, truncate(a.Prompt, 40), a.LearnerAnswer)
}

func sessionStyle(sess store.SessionSummary, selected bool) lipgloss.Style {
	if selected {
		return theme.Selected
	}
	if !sess.Completed {
		return theme.Dim
	}
	return theme.Body
}

func answerStyle(a store.AnswerEvent) lipgloss.Style {
	switch {
	case !a.Scoreable:
		return theme.Warning
	case a.Correct:
		return lipgloss.NewStyle().Foreground(theme.Success)
	default:
		return lipgloss.NewStyle().Foreground(theme.Error)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
