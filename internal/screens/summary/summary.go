package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizplay/internal/router"
	"github.com/abhisek/quizplay/internal/screen"
	"github.com/abhisek/quizplay/internal/session"
	"github.com/abhisek/quizplay/internal/ui/layout"
	"github.com/abhisek/quizplay/internal/ui/theme"
)

// SummaryScreen displays the results of a finished test.
type SummaryScreen struct {
	summary *session.Summary
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary *session.Summary) *SummaryScreen {
	return &SummaryScreen{summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Done"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "enter" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(theme.Title.Render(sum.TestName + " complete!")))
	b.WriteString("\n\n")
	b.WriteString(center(theme.Dim.Render("Duration: " + FormatDuration(int(sum.Duration.Seconds())))))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Answered: %d/%d      Correct: %d      Accuracy: %.0f%%",
		sum.Answered, sum.TotalQuestions, sum.TotalCorrect, sum.Accuracy*100)
	b.WriteString(center(theme.Body.Render(stats)))
	b.WriteString("\n")
	if sum.Unscoreable > 0 {
		b.WriteString(center(theme.Warning.Render(fmt.Sprintf("%d question(s) could not be scored", sum.Unscoreable))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	divider := theme.Dim.Render(strings.Repeat("─", max(min(width-8, 60), 0)))
	b.WriteString(center(divider))
	b.WriteString("\n")

	promptWidth := max(min(width-20, 50), 10)
	for _, r := range sum.Results {
		mark, style := resultMark(r)
		line := fmt.Sprintf("%s %2d. %s", mark, r.Index+1, truncate(r.Prompt, promptWidth))
		b.WriteString(center(style.Width(promptWidth + 8).Render(line)))
		b.WriteString("\n")
	}

	return b.String()
}

func resultMark(r session.QuestionResult) (string, lipgloss.Style) {
	switch {
	case !r.Answered:
		return "·", theme.Dim
	case !r.Scoreable:
		return "?", theme.Warning
	case r.Correct:
		return "✓", theme.Correct
	default:
		return "✗", theme.Incorrect
	}
}

// FormatDuration renders seconds as m:ss.
func FormatDuration(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func truncate(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
