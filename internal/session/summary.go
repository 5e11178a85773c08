package session

import (
	"time"

	"github.com/abhisek/quizplay/internal/quiz"
)

// QuestionResult is one row of the summary.
type QuestionResult struct {
	Index      int
	QuestionID string
	Prompt     string
	Kind       quiz.Kind
	Answered   bool
	Correct    bool
	Scoreable  bool
	Answer     quiz.Answer
}

// Summary holds the data displayed on the summary screen and persisted to
// the history log.
type Summary struct {
	TestID         string
	TestName       string
	Duration       time.Duration
	TotalQuestions int
	Answered       int
	TotalCorrect   int
	Unscoreable    int

	// Accuracy is TotalCorrect over the scoreable answered questions.
	Accuracy float64

	Results []QuestionResult
}

// Summary builds a Summary from the current state. It returns nil before a
// test is loaded.
func (c *Controller) Summary() *Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.test == nil || c.phase == PhaseLoading || c.phase == PhaseLoadFailed {
		return nil
	}

	sum := &Summary{
		TestID:         c.test.ID,
		TestName:       c.test.Name,
		Duration:       c.now().Sub(c.startedAt),
		TotalQuestions: len(c.test.Questions),
	}

	scored := 0
	for i, q := range c.test.Questions {
		r := QuestionResult{
			Index:      i,
			QuestionID: q.ID(),
			Prompt:     q.Prompt(),
			Kind:       q.Kind(),
			Scoreable:  c.keyErrors[q.ID()] == nil,
		}
		if sub, ok := c.submitted[q.ID()]; ok {
			r.Answered = true
			r.Correct = sub.Correct
			r.Answer = sub.Answer.Clone()
			sum.Answered++
			if sub.Scoreable {
				scored++
			}
			if sub.Correct {
				sum.TotalCorrect++
			}
		}
		if !r.Scoreable {
			sum.Unscoreable++
		}
		sum.Results = append(sum.Results, r)
	}

	if scored > 0 {
		sum.Accuracy = float64(sum.TotalCorrect) / float64(scored)
	}
	return sum
}
