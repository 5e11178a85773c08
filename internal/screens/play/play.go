package play

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/abhisek/quizplay/internal/hint"
	"github.com/abhisek/quizplay/internal/quiz"
	"github.com/abhisek/quizplay/internal/router"
	"github.com/abhisek/quizplay/internal/screen"
	"github.com/abhisek/quizplay/internal/screens/summary"
	"github.com/abhisek/quizplay/internal/session"
	"github.com/abhisek/quizplay/internal/store"
	"github.com/abhisek/quizplay/internal/ui/components"
	"github.com/abhisek/quizplay/internal/ui/layout"
)

const hintTimeout = 20 * time.Second

// Options holds the play screen's collaborators. Only Controller and
// TestID are required.
type Options struct {
	Controller *session.Controller
	TestID     string

	Events store.EventRepo
	Hints  *hint.Service
	Logger *slog.Logger

	// SessionID defaults to a random UUID.
	SessionID string
}

// PlayScreen runs one test through a session.Controller.
type PlayScreen struct {
	ctrl      *session.Controller
	testID    string
	sessionID string
	events    store.EventRepo
	hints     *hint.Service
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	spin     spinner.Model
	loaded   bool
	finished bool

	// Widgets bound to the current question.
	choices components.ChoiceList
	text    components.TextInput
	board   components.MatchBoard

	notice      string
	noticeKind  noticeKind
	hintText    map[string]string
	hintPending string
}

type noticeKind int

const (
	noticeInfo noticeKind = iota
	noticeCorrect
	noticeWrong
	noticeWarn
	noticeError
)

var _ screen.Screen = (*PlayScreen)(nil)
var _ screen.KeyHintProvider = (*PlayScreen)(nil)
var _ screen.StatusProvider = (*PlayScreen)(nil)
var _ screen.Closer = (*PlayScreen)(nil)

// New creates a PlayScreen. The test is fetched when the screen is shown.
func New(opts Options) *PlayScreen {
	s := &PlayScreen{
		ctrl:      opts.Controller,
		testID:    opts.TestID,
		sessionID: opts.SessionID,
		events:    opts.Events,
		hints:     opts.Hints,
		logger:    opts.Logger,
		spin:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		hintText:  make(map[string]string),
	}
	if s.sessionID == "" {
		s.sessionID = uuid.NewString()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	s.logger = s.logger.With("session_id", s.sessionID)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

func (s *PlayScreen) Init() tea.Cmd {
	ctrl, ctx, testID := s.ctrl, s.ctx, s.testID
	load := func() tea.Msg {
		_, err := ctrl.Load(ctx, testID)
		return loadedMsg{Err: err}
	}
	return tea.Batch(s.spin.Tick, load)
}

func (s *PlayScreen) Title() string {
	if t := s.ctrl.Test(); t != nil && t.Name != "" {
		return t.Name
	}
	return "Play"
}

func (s *PlayScreen) Status() string {
	if !s.active() {
		return ""
	}
	return pluralize(s.ctrl.Submissions(), "answer") + " submitted"
}

// SessionID returns the identifier the answers are recorded under.
func (s *PlayScreen) SessionID() string {
	return s.sessionID
}

func (s *PlayScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		if msg.Err != nil {
			return s, nil
		}
		return s, s.bind()

	case hintMsg:
		return s.handleHint(msg)

	case spinner.TickMsg:
		if s.loaded {
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	// Cursor blink and other input messages.
	if s.active() && s.kind() == quiz.KindFillBlank {
		var cmd tea.Cmd
		s.text, cmd = s.text.Update(msg)
		return s, cmd
	}
	return s, nil
}

// active reports whether a question is on screen.
func (s *PlayScreen) active() bool {
	if !s.loaded {
		return false
	}
	p := s.ctrl.Phase()
	return p == session.PhaseAnswering || p == session.PhaseLocked
}

func (s *PlayScreen) kind() quiz.Kind {
	q, ok := s.ctrl.Current()
	if !ok {
		return -1
	}
	return q.Kind()
}

func (s *PlayScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if !s.loaded {
		return s, nil
	}
	if !s.active() {
		// Load failure or empty test: any key goes back.
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	editing := s.kind() == quiz.KindFillBlank && !s.ctrl.Locked()

	switch key := msg.String(); {
	case key == "enter":
		if s.ctrl.Complete() {
			return s.finish()
		}
		return s.submit()
	case key == "ctrl+n", key == "right" && !editing:
		if s.ctrl.Next() {
			return s, s.arrive()
		}
		if !s.ctrl.Locked() && s.ctrl.CanSubmit() {
			s.setNotice(noticeInfo, "Submit this answer before moving on.")
		}
		return s, nil
	case key == "ctrl+p", key == "left" && !editing:
		if s.ctrl.Previous() {
			return s, s.arrive()
		}
		return s, nil
	case key == "tab":
		return s.requestHint()
	}

	return s, s.edit(msg)
}

// edit forwards a key to the current widget and mirrors the result into
// the controller.
func (s *PlayScreen) edit(msg tea.Msg) tea.Cmd {
	if s.ctrl.Locked() {
		return nil
	}
	var cmd tea.Cmd
	var answer quiz.Answer
	switch s.kind() {
	case quiz.KindMultipleChoice:
		s.choices, cmd = s.choices.Update(msg)
		answer = quiz.Text(s.choices.Chosen)
	case quiz.KindTrueFalse:
		s.choices, cmd = s.choices.Update(msg)
		answer = quiz.Text(strings.ToLower(s.choices.Chosen))
	case quiz.KindFillBlank:
		s.text, cmd = s.text.Update(msg)
		answer = quiz.Text(s.text.Value())
	case quiz.KindMatching:
		s.board, cmd = s.board.Update(msg)
		answer = s.board.Answer
	}
	if err := s.ctrl.SelectAnswer(answer); err != nil {
		s.logger.Debug("select answer rejected", "error", err)
	}
	return cmd
}

func (s *PlayScreen) submit() (screen.Screen, tea.Cmd) {
	q, _ := s.ctrl.Current()
	sub, err := s.ctrl.Submit()

	var keyErr *quiz.AnswerValidationError
	switch {
	case err == nil && sub.Correct:
		s.setNotice(noticeCorrect, "Correct!")
	case err == nil:
		s.setNotice(noticeWrong, "Incorrect.")
	case errors.As(err, &keyErr) && sub.QuestionID != "":
		s.setNotice(noticeWarn, "Answer recorded. This question cannot be scored.")
	case errors.Is(err, session.ErrNoAnswer):
		s.setNotice(noticeInfo, "Choose an answer first.")
		return s, nil
	case errors.Is(err, session.ErrLocked):
		s.noteUnanswered()
		return s, nil
	default:
		s.setNotice(noticeError, err.Error())
		return s, nil
	}

	s.recordAnswer(q, sub)
	switch {
	case s.ctrl.Complete():
		s.notice += "  Press Enter to see your results."
	case !s.ctrl.CanNext():
		if n := s.ctrl.Unanswered(); n > 0 {
			s.notice += "  " + unansweredText(n)
		}
	}
	return s, s.bind()
}

// noteUnanswered tells the learner why Enter on a locked question does
// nothing.
func (s *PlayScreen) noteUnanswered() {
	if n := s.ctrl.Unanswered(); n > 0 {
		s.setNotice(noticeInfo, unansweredText(n))
	}
}

func unansweredText(n int) string {
	return pluralize(n, "question") + " still unanswered."
}

// finish records the session and replaces this screen with the summary.
func (s *PlayScreen) finish() (screen.Screen, tea.Cmd) {
	sum := s.ctrl.Summary()
	s.recordSession(sum, true)
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(sum)}
	}
}

// Close cancels an in-flight load and records an unfinished session that
// has at least one answer.
func (s *PlayScreen) Close() {
	s.cancel()
	if s.finished || !s.active() || s.ctrl.Submissions() == 0 {
		return
	}
	s.recordSession(s.ctrl.Summary(), false)
}

// arrive rebinds the widgets after navigation.
func (s *PlayScreen) arrive() tea.Cmd {
	s.notice = ""
	return s.bind()
}

// bind rebuilds the widgets from the controller's current question.
func (s *PlayScreen) bind() tea.Cmd {
	q, ok := s.ctrl.Current()
	if !ok {
		return nil
	}
	answer := s.ctrl.Answer()
	locked := s.ctrl.Locked()

	var verdict *bool
	if sub, ok := s.ctrl.Submitted(q.ID()); ok && sub.Scoreable {
		correct := sub.Correct
		verdict = &correct
	}

	switch q := q.(type) {
	case *quiz.MultipleChoice:
		s.choices = components.NewChoiceList(q.Options, answer.Value)
		s.choices.Locked, s.choices.Verdict = locked, verdict
	case *quiz.TrueFalse:
		s.choices = components.NewChoiceList([]string{"True", "False"}, tfLabel(answer.Value))
		s.choices.Locked, s.choices.Verdict = locked, verdict
	case *quiz.FillBlank:
		s.text = components.NewTextInput("Type your answer", 200)
		s.text.SetValue(answer.Value)
		if locked {
			s.text.Lock(verdict)
			return nil
		}
		return s.text.Init()
	case *quiz.Matching:
		s.board = components.NewMatchBoard(q, answer)
		s.board.Locked, s.board.Verdict = locked, verdict
	}
	return nil
}

func (s *PlayScreen) requestHint() (screen.Screen, tea.Cmd) {
	q, ok := s.ctrl.Current()
	if !ok || s.ctrl.Locked() {
		return s, nil
	}
	if !s.hints.Enabled() {
		s.setNotice(noticeInfo, "Hints are not configured.")
		return s, nil
	}
	if _, ok := s.hintText[q.ID()]; ok || s.hintPending == q.ID() {
		return s, nil
	}

	s.hintPending = q.ID()
	hints, ctx := s.hints, s.ctx
	return s, func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, hintTimeout)
		defer cancel()
		text, err := hints.Hint(ctx, q)
		return hintMsg{QuestionID: q.ID(), Text: text, Err: err}
	}
}

func (s *PlayScreen) handleHint(msg hintMsg) (screen.Screen, tea.Cmd) {
	if s.hintPending == msg.QuestionID {
		s.hintPending = ""
	}
	if msg.Err != nil {
		s.logger.Warn("hint request failed", "question_id", msg.QuestionID, "error", msg.Err)
		if q, ok := s.ctrl.Current(); ok && q.ID() == msg.QuestionID {
			s.setNotice(noticeError, "Could not get a hint right now.")
		}
		return s, nil
	}
	s.hintText[msg.QuestionID] = msg.Text
	return s, nil
}

func (s *PlayScreen) recordAnswer(q quiz.Question, sub session.SubmittedAnswer) {
	if s.events == nil || q == nil {
		return
	}
	err := s.events.AppendAnswerEvent(context.Background(), store.AnswerEventData{
		SessionID:     s.sessionID,
		TestID:        s.ctrl.Test().ID,
		QuestionID:    sub.QuestionID,
		QuestionKind:  q.Kind().String(),
		Prompt:        q.Prompt(),
		LearnerAnswer: sub.Answer.String(),
		Correct:       sub.Correct,
		Scoreable:     sub.Scoreable,
		TimeMs:        sub.TimeSpent.Milliseconds(),
	})
	if err != nil {
		s.logger.Warn("failed to record answer", "question_id", sub.QuestionID, "error", err)
	}
}

func (s *PlayScreen) recordSession(sum *session.Summary, completed bool) {
	if s.finished || sum == nil {
		return
	}
	s.finished = true
	if s.events == nil {
		return
	}
	err := s.events.AppendSessionEvent(context.Background(), store.SessionEventData{
		SessionID:    s.sessionID,
		TestID:       sum.TestID,
		TestName:     sum.TestName,
		Questions:    sum.TotalQuestions,
		Answered:     sum.Answered,
		Correct:      sum.TotalCorrect,
		Unscoreable:  sum.Unscoreable,
		Accuracy:     sum.Accuracy,
		DurationSecs: int(sum.Duration.Seconds()),
		Completed:    completed,
	})
	if err != nil {
		s.logger.Warn("failed to record session", "error", err)
		return
	}
	s.logger.Info("session recorded", "test_id", sum.TestID, "completed", completed,
		"answered", sum.Answered, "correct", sum.TotalCorrect)
}

func (s *PlayScreen) setNotice(kind noticeKind, text string) {
	s.noticeKind = kind
	s.notice = text
}

func (s *PlayScreen) KeyHints() []layout.KeyHint {
	if !s.loaded {
		return nil
	}
	if !s.active() {
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	}

	var hints []layout.KeyHint
	switch s.kind() {
	case quiz.KindMultipleChoice, quiz.KindTrueFalse:
		hints = append(hints, layout.KeyHint{Key: "1-9/Space", Description: "Choose"})
	case quiz.KindMatching:
		hints = append(hints,
			layout.KeyHint{Key: "1-9", Description: "Term"},
			layout.KeyHint{Key: "a-z", Description: "Definition"},
			layout.KeyHint{Key: "↑↓/Space", Description: "Pick"},
			layout.KeyHint{Key: "⌫", Description: "Undo"})
	}
	if s.ctrl.Complete() {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Finish"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Submit"})
	}
	if s.kind() == quiz.KindFillBlank {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+P/N", Description: "Prev/Next"})
	} else {
		hints = append(hints, layout.KeyHint{Key: "←→", Description: "Prev/Next"})
	}
	if s.hints.Enabled() {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Hint"})
	}
	return hints
}

func tfLabel(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true":
		return "True"
	case "false":
		return "False"
	default:
		return ""
	}
}
