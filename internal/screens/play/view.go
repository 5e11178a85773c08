package play

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizplay/internal/quiz"
	"github.com/abhisek/quizplay/internal/session"
	"github.com/abhisek/quizplay/internal/ui/components"
	"github.com/abhisek/quizplay/internal/ui/layout"
	"github.com/abhisek/quizplay/internal/ui/theme"
)

func (s *PlayScreen) View(width, height int) string {
	if !s.loaded {
		return layout.RenderMessage(s.spin.View()+" Loading test "+s.testID+"...", theme.Dim, width)
	}

	switch s.ctrl.Phase() {
	case session.PhaseLoadFailed:
		return layout.RenderError(errorText(s.ctrl.Err()), width)
	case session.PhaseEmpty:
		return layout.RenderMessage("This test has no questions.\n\nPress any key to go back.", theme.Dim, width)
	}

	q, ok := s.ctrl.Current()
	if !ok {
		return ""
	}
	cw := min(width-4, 76)

	var b strings.Builder

	progress := components.ProgressBar{
		Label: fmt.Sprintf("Question %d of %d", s.ctrl.Index()+1, s.ctrl.Len()),
		Done:  s.ctrl.Submissions(),
		Total: s.ctrl.Len(),
		Width: cw,
	}
	b.WriteString(progress.View())
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(q.Kind().Title()))
	b.WriteString("\n\n")
	b.WriteString(theme.Prompt.Width(cw).Render(q.Prompt()))
	b.WriteString("\n\n")

	switch q.Kind() {
	case quiz.KindMultipleChoice, quiz.KindTrueFalse:
		b.WriteString(s.choices.View())
	case quiz.KindFillBlank:
		b.WriteString("Answer: " + s.text.View())
		b.WriteString("\n")
	case quiz.KindMatching:
		b.WriteString(s.board.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if s.ctrl.KeyError(q.ID()) != nil && !s.ctrl.Locked() {
		b.WriteString(theme.Warning.Render("This question cannot be scored. Your answer will still be recorded."))
		b.WriteString("\n")
	}
	if text, ok := s.hintText[q.ID()]; ok {
		b.WriteString(theme.Hint.Width(cw).Render("Hint: " + text))
		b.WriteString("\n")
	} else if s.hintPending == q.ID() {
		b.WriteString(theme.Hint.Render("Thinking of a hint..."))
		b.WriteString("\n")
	}
	if s.notice != "" {
		b.WriteString(s.noticeStyle().Render(s.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	submitLabel := "Submit"
	if s.ctrl.Complete() {
		submitLabel = "Finish"
	}
	b.WriteString(components.NavBar(
		components.Button{Key: "←", Label: "Previous", Enabled: s.ctrl.CanPrevious()},
		components.Button{Key: "⏎", Label: submitLabel, Enabled: s.ctrl.CanSubmit() || s.ctrl.Complete()},
		components.Button{Key: "→", Label: "Next", Enabled: s.ctrl.CanNext()},
	))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (s *PlayScreen) noticeStyle() lipgloss.Style {
	switch s.noticeKind {
	case noticeCorrect:
		return theme.Correct
	case noticeWrong:
		return theme.Incorrect
	case noticeWarn:
		return theme.Warning
	case noticeError:
		return theme.ErrorText
	default:
		return theme.Dim
	}
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
