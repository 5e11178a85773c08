package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/quizplay/internal/quiz"
)

// Phase represents where the controller is in its lifecycle.
type Phase int

const (
	PhaseNotLoaded  Phase = iota // No test requested yet
	PhaseLoading                 // Fetch in flight
	PhaseLoadFailed              // Fetch failed, see Controller.Err
	PhaseEmpty                   // Test loaded but has no questions
	PhaseAnswering               // Current question accepts answers
	PhaseLocked                  // Current question has a submitted answer
)

func (p Phase) String() string {
	switch p {
	case PhaseNotLoaded:
		return "not-loaded"
	case PhaseLoading:
		return "loading"
	case PhaseLoadFailed:
		return "load-failed"
	case PhaseEmpty:
		return "empty"
	case PhaseAnswering:
		return "answering"
	case PhaseLocked:
		return "locked"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

var (
	// ErrNotLoaded is returned when an operation needs a loaded test.
	ErrNotLoaded = errors.New("no test loaded")

	// ErrNoQuestions is returned when the loaded test has no questions.
	ErrNoQuestions = errors.New("test has no questions")

	// ErrLocked is returned when the current question was already submitted.
	ErrLocked = errors.New("question already submitted")

	// ErrNoAnswer is returned by Submit when no answer has been selected.
	ErrNoAnswer = errors.New("no answer selected")
)

// FetchError reports that a test could not be loaded.
type FetchError struct {
	TestID string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("load test %s: %v", e.TestID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubmittedAnswer is the write-once record of a learner's answer to one
// question.
type SubmittedAnswer struct {
	QuestionID string
	Answer     quiz.Answer

	// Correct is false whenever Scoreable is false.
	Correct bool

	// Scoreable is false when the question's answer key was unusable.
	Scoreable bool

	SubmittedAt time.Time

	// TimeSpent is the time between arriving at the question and submitting.
	TimeSpent time.Duration
}
