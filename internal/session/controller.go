package session

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/abhisek/quizplay/internal/quiz"
)

// Fetcher resolves a test identifier to a test.
type Fetcher interface {
	FetchTest(ctx context.Context, testID string) (*quiz.Test, error)
}

// Feedback plays the correct or incorrect cue. Play must not block and
// handles its own failures.
type Feedback interface {
	Play(correct bool)
}

// Config holds the controller's collaborators and policies.
type Config struct {
	// Policy decides answer correctness.
	Policy quiz.Policy

	// LockStep keeps Next disabled until the current question is submitted.
	LockStep bool

	// Feedback receives a cue for every scored submission. Optional.
	Feedback Feedback

	// Logger receives diagnostics. Optional.
	Logger *slog.Logger

	// Now returns the current time. Optional, defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the default policy with lock-step navigation.
func DefaultConfig() Config {
	return Config{
		Policy:   quiz.DefaultPolicy(),
		LockStep: true,
	}
}

// Controller drives one learner through one test. It is safe to call Load
// from a goroutine while the other methods are called from the UI loop.
type Controller struct {
	mu sync.Mutex

	fetcher  Fetcher
	policy   quiz.Policy
	lockStep bool
	feedback Feedback
	logger   *slog.Logger
	now      func() time.Time

	phase     Phase
	loadErr   error
	testID    string
	test      *quiz.Test
	keyErrors map[string]error
	index     int
	draft     quiz.Answer
	submitted map[string]SubmittedAnswer
	startedAt time.Time
	arrivedAt time.Time
}

// New creates a Controller that loads tests through fetcher.
func New(fetcher Fetcher, cfg Config) *Controller {
	c := &Controller{
		fetcher:  fetcher,
		policy:   cfg.Policy,
		lockStep: cfg.LockStep,
		feedback: cfg.Feedback,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Load fetches the test and starts the session at the first question. On
// failure the controller enters PhaseLoadFailed and a *FetchError is
// returned.
func (c *Controller) Load(ctx context.Context, testID string) (*quiz.Test, error) {
	c.mu.Lock()
	c.phase = PhaseLoading
	c.testID = testID
	c.loadErr = nil
	c.mu.Unlock()

	test, err := c.fetcher.FetchTest(ctx, testID)
	if err == nil && test == nil {
		err = errors.New("empty response")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			fe = &FetchError{TestID: testID, Err: err}
		}
		c.phase = PhaseLoadFailed
		c.loadErr = fe
		c.logger.Error("load test failed", "test_id", testID, "error", err)
		return nil, fe
	}

	c.start(test)
	c.logger.Info("test loaded",
		"test_id", c.test.ID,
		"questions", len(c.test.Questions),
		"unscoreable", len(c.keyErrors))
	return c.test, nil
}

// start resets the session state for test. Nil questions are dropped.
// Caller holds mu.
func (c *Controller) start(test *quiz.Test) {
	if slices.ContainsFunc(test.Questions, quiz.IsNil) {
		kept := make([]quiz.Question, 0, len(test.Questions))
		for i, q := range test.Questions {
			if quiz.IsNil(q) {
				c.logger.Warn("skipping nil question", "test_id", test.ID, "index", i)
				continue
			}
			kept = append(kept, q)
		}
		t := *test
		t.Questions = kept
		test = &t
	}

	c.test = test
	c.index = 0
	c.draft = quiz.Answer{}
	c.submitted = make(map[string]SubmittedAnswer, len(test.Questions))
	c.keyErrors = make(map[string]error)
	c.startedAt = c.now()
	c.arrivedAt = c.startedAt

	for _, q := range test.Questions {
		if err := c.policy.Check(q); err != nil {
			c.keyErrors[q.ID()] = err
			c.logger.Warn("question cannot be scored", "question_id", q.ID(), "error", err)
		}
	}

	if len(test.Questions) == 0 {
		c.phase = PhaseEmpty
		return
	}
	c.phase = PhaseAnswering
}

// SelectAnswer sets the in-progress answer for the current question.
func (c *Controller) SelectAnswer(a quiz.Answer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActive(); err != nil {
		return err
	}
	if c.isLocked() {
		return ErrLocked
	}
	c.draft = a.Clone()
	return nil
}

// Submit scores the in-progress answer, records it and locks the current
// question. A question with an unusable key is recorded as unscoreable and
// its *quiz.AnswerValidationError is returned alongside the record.
func (c *Controller) Submit() (SubmittedAnswer, error) {
	c.mu.Lock()

	if err := c.checkActive(); err != nil {
		c.mu.Unlock()
		return SubmittedAnswer{}, err
	}
	if c.isLocked() {
		c.mu.Unlock()
		return SubmittedAnswer{}, ErrLocked
	}
	if c.draft.IsEmpty() {
		c.mu.Unlock()
		return SubmittedAnswer{}, ErrNoAnswer
	}

	q := c.test.Questions[c.index]
	now := c.now()
	sub := SubmittedAnswer{
		QuestionID:  q.ID(),
		Answer:      c.draft.Clone(),
		Scoreable:   true,
		SubmittedAt: now,
		TimeSpent:   now.Sub(c.arrivedAt),
	}

	if keyErr, ok := c.keyErrors[q.ID()]; ok {
		sub.Scoreable = false
		c.submitted[q.ID()] = sub
		c.mu.Unlock()
		c.logger.Warn("recorded unscoreable answer", "question_id", q.ID(), "error", keyErr)
		return sub, keyErr
	}

	correct, err := c.policy.Score(q, c.draft)
	if err != nil {
		// The key is usable, so the answer itself is malformed. Leave the
		// question open.
		c.mu.Unlock()
		c.logger.Warn("answer rejected", "question_id", q.ID(), "error", err)
		return SubmittedAnswer{}, err
	}
	sub.Correct = correct
	c.submitted[q.ID()] = sub
	feedback := c.feedback
	c.mu.Unlock()

	c.logger.Debug("answer submitted", "question_id", q.ID(), "correct", correct)
	if feedback != nil {
		feedback.Play(correct)
	}
	return sub, nil
}

// Next moves to the following question. It reports whether the index
// changed.
func (c *Controller) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.canNext() {
		return false
	}
	c.moveTo(c.index + 1)
	return true
}

// Previous moves to the preceding question. It reports whether the index
// changed.
func (c *Controller) Previous() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.canPrevious() {
		return false
	}
	c.moveTo(c.index - 1)
	return true
}

// moveTo sets the index and restores the question's submitted answer, if
// any. Caller holds mu.
func (c *Controller) moveTo(i int) {
	c.index = i
	c.arrivedAt = c.now()
	if sub, ok := c.submitted[c.test.Questions[i].ID()]; ok {
		c.draft = sub.Answer.Clone()
		return
	}
	c.draft = quiz.Answer{}
}

// Phase returns the controller's current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseAnswering && c.isLocked() {
		return PhaseLocked
	}
	return c.phase
}

// Err returns the load error while in PhaseLoadFailed.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// TestID returns the identifier passed to the last Load.
func (c *Controller) TestID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.testID
}

// Test returns the loaded test, or nil.
func (c *Controller) Test() *quiz.Test {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.test
}

// Index returns the 0-based index of the current question.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Len returns the number of questions in the loaded test.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.test == nil {
		return 0
	}
	return len(c.test.Questions)
}

// Current returns the current question.
func (c *Controller) Current() (quiz.Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.checkActive() != nil {
		return nil, false
	}
	return c.test.Questions[c.index], true
}

// Answer returns the in-progress answer, or the submitted answer when the
// current question is locked.
func (c *Controller) Answer() quiz.Answer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

// Locked reports whether the current question has a submitted answer.
func (c *Controller) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkActive() == nil && c.isLocked()
}

// Submitted returns the submitted answer for a question.
func (c *Controller) Submitted(questionID string) (SubmittedAnswer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub, ok := c.submitted[questionID]
	return sub, ok
}

// KeyError returns the reason a question cannot be scored, or nil.
func (c *Controller) KeyError(questionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyErrors[questionID]
}

// CanSubmit reports whether Submit would be accepted.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkActive() == nil && !c.isLocked() && !c.draft.IsEmpty()
}

// CanNext reports whether Next would move.
func (c *Controller) CanNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canNext()
}

// CanPrevious reports whether Previous would move.
func (c *Controller) CanPrevious() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canPrevious()
}

// Complete reports whether every question is submitted and the learner has
// reached the last one.
func (c *Controller) Complete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.checkActive() != nil {
		return false
	}
	return c.index == len(c.test.Questions)-1 && c.unanswered() == 0
}

// Unanswered returns the number of questions not yet submitted. Questions
// sharing an ID are answered together.
func (c *Controller) Unanswered() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.checkActive() != nil {
		return 0
	}
	return c.unanswered()
}

func (c *Controller) unanswered() int {
	n := 0
	for _, q := range c.test.Questions {
		if _, ok := c.submitted[q.ID()]; !ok {
			n++
		}
	}
	return n
}

// Submissions returns the number of submitted questions.
func (c *Controller) Submissions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.submitted)
}

func (c *Controller) checkActive() error {
	switch c.phase {
	case PhaseAnswering:
		return nil
	case PhaseEmpty:
		return ErrNoQuestions
	default:
		return ErrNotLoaded
	}
}

func (c *Controller) isLocked() bool {
	_, ok := c.submitted[c.test.Questions[c.index].ID()]
	return ok
}

func (c *Controller) canNext() bool {
	if c.checkActive() != nil || c.index >= len(c.test.Questions)-1 {
		return false
	}
	if !c.lockStep {
		return true
	}
	if c.isLocked() {
		return true
	}
	_, unscoreable := c.keyErrors[c.test.Questions[c.index].ID()]
	return unscoreable
}

func (c *Controller) canPrevious() bool {
	return c.checkActive() == nil && c.index > 0
}
