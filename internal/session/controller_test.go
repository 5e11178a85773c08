package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizplay/internal/quiz"
)

type stubFetcher struct {
	test  *quiz.Test
	err   error
	calls []string
}

func (f *stubFetcher) FetchTest(_ context.Context, testID string) (*quiz.Test, error) {
	f.calls = append(f.calls, testID)
	return f.test, f.err
}

type recordingFeedback struct {
	cues []bool
}

func (r *recordingFeedback) Play(correct bool) {
	r.cues = append(r.cues, correct)
}

func testQuiz() *quiz.Test {
	return &quiz.Test{
		ID:   "t1",
		Name: "Basics",
		Questions: []quiz.Question{
			quiz.NewMultipleChoice("q1", "Pick B", []string{"A", "B", "C"}, "B"),
			quiz.NewTrueFalse("q2", "Water is wet", true),
			quiz.NewMatching("q3", "Match", quiz.Pair{Term: "x", Definition: "1"}, quiz.Pair{Term: "y", Definition: "2"}),
			quiz.NewFillBlank("q4", "Capital of France", "Paris"),
		},
	}
}

func newLoaded(t *testing.T, test *quiz.Test, mutate ...func(*Config)) (*Controller, *recordingFeedback) {
	t.Helper()
	fb := &recordingFeedback{}
	cfg := DefaultConfig()
	cfg.Feedback = fb
	clock := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	cfg.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	for _, m := range mutate {
		m(&cfg)
	}
	c := New(&stubFetcher{test: test}, cfg)
	_, err := c.Load(context.Background(), test.ID)
	require.NoError(t, err)
	return c, fb
}

func answerAndSubmit(t *testing.T, c *Controller, a quiz.Answer) SubmittedAnswer {
	t.Helper()
	require.NoError(t, c.SelectAnswer(a))
	sub, err := c.Submit()
	require.NoError(t, err)
	return sub
}

func TestLoad_Success(t *testing.T) {
	c, _ := newLoaded(t, testQuiz())

	assert.Equal(t, PhaseAnswering, c.Phase())
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, 0, c.Submissions())
	assert.True(t, c.Answer().IsEmpty())

	q, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "q1", q.ID())
}

func TestLoad_FetchFailure(t *testing.T) {
	cause := errors.New("connection refused")
	c := New(&stubFetcher{err: cause}, DefaultConfig())

	test, err := c.Load(context.Background(), "t1")
	assert.Nil(t, test)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "t1", fe.TestID)
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, PhaseLoadFailed, c.Phase())
	assert.Equal(t, err, c.Err())

	// Nothing else works, and nothing panics.
	assert.ErrorIs(t, c.SelectAnswer(quiz.Text("A")), ErrNotLoaded)
	_, err = c.Submit()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.False(t, c.Next())
	assert.False(t, c.Previous())
	assert.False(t, c.CanSubmit())
	assert.Nil(t, c.Summary())
}

func TestLoad_NilTestIsFetchError(t *testing.T) {
	c := New(&stubFetcher{}, DefaultConfig())
	_, err := c.Load(context.Background(), "t1")

	var fe *FetchError
	assert.ErrorAs(t, err, &fe)
}

func TestBeforeLoad(t *testing.T) {
	c := New(&stubFetcher{}, DefaultConfig())
	assert.Equal(t, PhaseNotLoaded, c.Phase())
	_, ok := c.Current()
	assert.False(t, ok)
	assert.False(t, c.Locked())
	assert.False(t, c.Complete())
}

func TestEmptyTest_ControlsDisabled(t *testing.T) {
	c, fb := newLoaded(t, &quiz.Test{ID: "empty", Name: "Empty"})

	assert.Equal(t, PhaseEmpty, c.Phase())
	assert.False(t, c.CanSubmit())
	assert.False(t, c.CanNext())
	assert.False(t, c.CanPrevious())

	assert.False(t, c.Next())
	assert.False(t, c.Previous())
	assert.ErrorIs(t, c.SelectAnswer(quiz.Text("A")), ErrNoQuestions)
	_, err := c.Submit()
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Equal(t, 0, c.Index())
	assert.False(t, c.Complete())
	assert.Empty(t, fb.cues)

	sum := c.Summary()
	require.NotNil(t, sum)
	assert.Equal(t, 0, sum.TotalQuestions)
	assert.Zero(t, sum.Accuracy)
}

func TestSubmit_MultipleChoice(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"B", true},
		{"A", false},
	}

	for _, tc := range tests {
		t.Run(tc.answer, func(t *testing.T) {
			c, fb := newLoaded(t, testQuiz())
			sub := answerAndSubmit(t, c, quiz.Text(tc.answer))

			assert.Equal(t, tc.want, sub.Correct)
			assert.True(t, sub.Scoreable)
			assert.Equal(t, "q1", sub.QuestionID)
			assert.Equal(t, []bool{tc.want}, fb.cues)
			assert.Equal(t, PhaseLocked, c.Phase())
		})
	}
}

func TestSubmit_Matching(t *testing.T) {
	tests := []struct {
		name  string
		pairs []quiz.Pair
		want  bool
	}{
		{"exact", []quiz.Pair{{Term: "x", Definition: "1"}, {Term: "y", Definition: "2"}}, true},
		{"swapped", []quiz.Pair{{Term: "x", Definition: "2"}, {Term: "y", Definition: "1"}}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			test := &quiz.Test{ID: "t", Questions: []quiz.Question{
				quiz.NewMatching("m", "Match", quiz.Pair{Term: "x", Definition: "1"}, quiz.Pair{Term: "y", Definition: "2"}),
			}}
			c, _ := newLoaded(t, test)
			sub := answerAndSubmit(t, c, quiz.Matches(tc.pairs...))
			assert.Equal(t, tc.want, sub.Correct)
		})
	}
}

func TestSubmit_RequiresAnswer(t *testing.T) {
	c, fb := newLoaded(t, testQuiz())

	assert.False(t, c.CanSubmit())
	_, err := c.Submit()
	assert.ErrorIs(t, err, ErrNoAnswer)

	require.NoError(t, c.SelectAnswer(quiz.Text("   ")))
	_, err = c.Submit()
	assert.ErrorIs(t, err, ErrNoAnswer)

	assert.Empty(t, fb.cues)
	assert.Equal(t, PhaseAnswering, c.Phase())
}

func TestSubmit_AtMostOncePerQuestion(t *testing.T) {
	c, fb := newLoaded(t, testQuiz())
	first := answerAndSubmit(t, c, quiz.Text("A"))

	_, err := c.Submit()
	assert.ErrorIs(t, err, ErrLocked)
	assert.False(t, c.CanSubmit())

	got, ok := c.Submitted("q1")
	require.True(t, ok)
	assert.Equal(t, first, got)
	assert.Len(t, fb.cues, 1)
}

func TestLockedQuestion_RejectsEdits(t *testing.T) {
	c, _ := newLoaded(t, testQuiz())
	answerAndSubmit(t, c, quiz.Text("A"))

	assert.ErrorIs(t, c.SelectAnswer(quiz.Text("B")), ErrLocked)
	assert.Equal(t, "A", c.Answer().Value)

	// Still locked after leaving and coming back.
	require.True(t, c.Next())
	require.True(t, c.Previous())
	assert.True(t, c.Locked())
	assert.ErrorIs(t, c.SelectAnswer(quiz.Text("B")), ErrLocked)
	_, err := c.Submit()
	assert.ErrorIs(t, err, ErrLocked)

	sub, _ := c.Submitted("q1")
	assert.Equal(t, "A", sub.Answer.Value)
	assert.False(t, sub.Correct)
}

func TestSubmittedAnswer_IsImmutable(t *testing.T) {
	key := []quiz.Pair{{Term: "x", Definition: "1"}, {Term: "y", Definition: "2"}}
	test := &quiz.Test{ID: "t", Questions: []quiz.Question{
		quiz.NewMatching("m", "Match", key...),
	}}
	c, _ := newLoaded(t, test)

	answer := quiz.Matches(quiz.Pair{Term: "x", Definition: "1"}, quiz.Pair{Term: "y", Definition: "2"})
	answerAndSubmit(t, c, answer)
	answer.Pairs[0].Definition = "tampered"

	a := c.Answer()
	a.Pairs[1].Definition = "tampered"

	sub, _ := c.Submitted("m")
	assert.Equal(t, []quiz.Pair{{Term: "x", Definition: "1"}, {Term: "y", Definition: "2"}}, sub.Answer.Pairs)
	assert.True(t, sub.Correct)
}

func TestNavigation_ForwardThenBackRestoresState(t *testing.T) {
	c, _ := newLoaded(t, testQuiz())
	answers := []quiz.Answer{
		quiz.Text("B"),
		quiz.Text("false"),
		quiz.Matches(quiz.Pair{Term: "x", Definition: "1"}, quiz.Pair{Term: "y", Definition: "2"}),
	}

	for i, a := range answers {
		answerAndSubmit(t, c, a)
		require.True(t, c.Next(), "next from %d", i)
		require.True(t, c.Previous(), "previous to %d", i)

		assert.Equal(t, i, c.Index())
		assert.True(t, c.Locked())
		assert.Equal(t, a, c.Answer())

		require.True(t, c.Next())
	}

	// Arrived at the unanswered last question with a clean slate.
	assert.Equal(t, 3, c.Index())
	assert.False(t, c.Locked())
	assert.True(t, c.Answer().IsEmpty())
}

func TestNavigation_LockStepBlocksNextUntilSubmitted(t *testing.T) {
	c, _ := newLoaded(t, testQuiz())

	require.NoError(t, c.SelectAnswer(quiz.Text("B")))
	assert.False(t, c.CanNext())
	assert.False(t, c.Next())
	assert.Equal(t, 0, c.Index())

	_, err := c.Submit()
	require.NoError(t, err)
	assert.True(t, c.CanNext())
}

func TestNavigation_FreeModeClearsDrafts(t *testing.T) {
	c, _ := newLoaded(t, testQuiz(), func(cfg *Config) { cfg.LockStep = false })

	require.NoError(t, c.SelectAnswer(quiz.Text("B")))
	require.True(t, c.Next())
	assert.True(t, c.Answer().IsEmpty())

	require.True(t, c.Previous())
	assert.True(t, c.Answer().IsEmpty(), "unsubmitted draft is discarded on leave")
	assert.False(t, c.Locked())
}

func TestNavigation_Clamps(t *testing.T) {
	c, _ := newLoaded(t, testQuiz(), func(cfg *Config) { cfg.LockStep = false })

	assert.False(t, c.CanPrevious())
	assert.False(t, c.Previous())
	assert.Equal(t, 0, c.Index())

	for c.Next() {
	}
	assert.Equal(t, 3, c.Index())
	assert.False(t, c.CanNext())
	assert.False(t, c.Next())
	assert.Equal(t, 3, c.Index())
}

func TestComplete(t *testing.T) {
	c, fb := newLoaded(t, testQuiz())

	answerAndSubmit(t, c, quiz.Text("B"))
	require.True(t, c.Next())
	answerAndSubmit(t, c, quiz.Text("true"))
	require.True(t, c.Next())
	answerAndSubmit(t, c, quiz.Matches(quiz.Pair{Term: "x", Definition: "2"}))
	require.True(t, c.Next())
	assert.False(t, c.Complete())
	answerAndSubmit(t, c, quiz.Text(" paris "))

	assert.True(t, c.Complete())
	assert.False(t, c.CanNext())
	assert.Equal(t, []bool{true, true, false, true}, fb.cues)

	sum := c.Summary()
	require.NotNil(t, sum)
	assert.Equal(t, "t1", sum.TestID)
	assert.Equal(t, "Basics", sum.TestName)
	assert.Equal(t, 4, sum.TotalQuestions)
	assert.Equal(t, 4, sum.Answered)
	assert.Equal(t, 3, sum.TotalCorrect)
	assert.InDelta(t, 0.75, sum.Accuracy, 1e-9)
	assert.Positive(t, sum.Duration)
	require.Len(t, sum.Results, 4)
	assert.False(t, sum.Results[2].Correct)
	assert.Equal(t, quiz.KindFillBlank, sum.Results[3].Kind)
}

func TestComplete_DuplicateQuestionIDs(t *testing.T) {
	test := &quiz.Test{ID: "t", Questions: []quiz.Question{
		quiz.NewTrueFalse("same", "First", true),
		quiz.NewTrueFalse("same", "Second", false),
	}}
	c, _ := newLoaded(t, test)
	assert.Equal(t, 2, c.Unanswered())

	answerAndSubmit(t, c, quiz.Text("true"))
	require.True(t, c.Next())

	// The second position shares the first one's submission.
	assert.True(t, c.Locked())
	assert.Equal(t, 0, c.Unanswered())
	assert.True(t, c.Complete())

	sum := c.Summary()
	assert.Equal(t, 2, sum.Answered)
}

func TestUnanswered_CountsSkippedQuestions(t *testing.T) {
	test := &quiz.Test{ID: "t", Questions: []quiz.Question{
		&quiz.TrueFalse{Header: quiz.Header{QuestionID: "keyless", Ask: "No key"}},
		quiz.NewTrueFalse("q2", "Water is wet", true),
	}}
	c, _ := newLoaded(t, test)

	// Lock-step lets the learner walk past the unscoreable question.
	require.True(t, c.Next())
	answerAndSubmit(t, c, quiz.Text("true"))

	assert.Equal(t, 1, c.Unanswered())
	assert.False(t, c.Complete())

	require.True(t, c.Previous())
	require.NoError(t, c.SelectAnswer(quiz.Text("false")))
	_, err := c.Submit()
	var ave *quiz.AnswerValidationError
	require.ErrorAs(t, err, &ave)
	require.True(t, c.Next())

	assert.Equal(t, 0, c.Unanswered())
	assert.True(t, c.Complete())
}

func TestLoad_SkipsNilQuestions(t *testing.T) {
	test := &quiz.Test{ID: "t", Questions: []quiz.Question{
		nil,
		quiz.NewTrueFalse("q1", "Water is wet", true),
		(*quiz.MultipleChoice)(nil),
	}}
	c, _ := newLoaded(t, test)

	assert.Equal(t, 1, c.Len())
	assert.Len(t, test.Questions, 3, "the fetched test is not modified")
	q, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "q1", q.ID())

	answerAndSubmit(t, c, quiz.Text("true"))
	assert.True(t, c.Complete())
	assert.Equal(t, 1, c.Summary().TotalQuestions)
}

func TestLoad_OnlyNilQuestionsIsEmpty(t *testing.T) {
	test := &quiz.Test{ID: "t", Questions: []quiz.Question{nil, (*quiz.FillBlank)(nil)}}
	c, _ := newLoaded(t, test)

	assert.Equal(t, PhaseEmpty, c.Phase())
	assert.Equal(t, 0, c.Len())
}

func TestUnscoreableQuestion(t *testing.T) {
	test := &quiz.Test{ID: "t", Questions: []quiz.Question{
		quiz.NewMultipleChoice("bad", "Broken", []string{"A", "B"}),
		quiz.NewFillBlank("good", "Say hi", "hi"),
	}}
	c, fb := newLoaded(t, test)

	require.Error(t, c.KeyError("bad"))
	assert.NoError(t, c.KeyError("good"))

	// Next is allowed past an unscoreable question.
	assert.True(t, c.CanNext())

	require.NoError(t, c.SelectAnswer(quiz.Text("A")))
	sub, err := c.Submit()
	var ave *quiz.AnswerValidationError
	require.ErrorAs(t, err, &ave)
	assert.Equal(t, "bad", ave.QuestionID)
	assert.False(t, sub.Scoreable)
	assert.False(t, sub.Correct)
	assert.True(t, c.Locked())
	assert.Empty(t, fb.cues, "no cue for an unscoreable answer")

	require.True(t, c.Next())
	answerAndSubmit(t, c, quiz.Text("HI"))

	sum := c.Summary()
	assert.Equal(t, 1, sum.Unscoreable)
	assert.Equal(t, 2, sum.Answered)
	assert.InDelta(t, 1.0, sum.Accuracy, 1e-9)
}

func TestMalformedAnswer_LeavesQuestionOpen(t *testing.T) {
	test := &quiz.Test{ID: "t", Questions: []quiz.Question{
		quiz.NewTrueFalse("tf", "Water is wet", true),
	}}
	c, _ := newLoaded(t, test)

	require.NoError(t, c.SelectAnswer(quiz.Text("maybe")))
	_, err := c.Submit()
	var ave *quiz.AnswerValidationError
	require.ErrorAs(t, err, &ave)
	assert.False(t, c.Locked())

	answerAndSubmit(t, c, quiz.Text("true"))
	assert.True(t, c.Locked())
}

func TestLegacyTrueFalsePolicy(t *testing.T) {
	test := &quiz.Test{ID: "t", Questions: []quiz.Question{
		quiz.NewTrueFalse("tf", "Fire is cold", false),
	}}

	strict, _ := newLoaded(t, test)
	assert.False(t, answerAndSubmit(t, strict, quiz.Text("true")).Correct)

	legacy, _ := newLoaded(t, test, func(cfg *Config) { cfg.Policy.TrueFalse = quiz.TrueFalseLegacy })
	assert.True(t, answerAndSubmit(t, legacy, quiz.Text("true")).Correct)
}

func TestSubmit_RecordsTimeSpent(t *testing.T) {
	c, _ := newLoaded(t, testQuiz())
	require.NoError(t, c.SelectAnswer(quiz.Text("B")))
	sub, err := c.Submit()
	require.NoError(t, err)
	assert.Positive(t, sub.TimeSpent)
	assert.False(t, sub.SubmittedAt.IsZero())
}

func TestReload_ResetsState(t *testing.T) {
	fetcher := &stubFetcher{test: testQuiz()}
	c := New(fetcher, DefaultConfig())
	_, err := c.Load(context.Background(), "t1")
	require.NoError(t, err)

	require.NoError(t, c.SelectAnswer(quiz.Text("B")))
	_, err = c.Submit()
	require.NoError(t, err)

	_, err = c.Load(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 0, c.Submissions())
	assert.False(t, c.Locked())
	assert.Equal(t, []string{"t1", "t1"}, fetcher.calls)
}
