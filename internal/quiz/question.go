package quiz

import (
	"fmt"
	"slices"
)

// Kind identifies a question variant. Values match the backend's
// questionType codes.
type Kind int

const (
	KindMultipleChoice Kind = 0
	KindTrueFalse      Kind = 1
	KindMatching       Kind = 2
	KindFillBlank      Kind = 3
)

// String returns a human-readable label for the kind.
func (k Kind) String() string {
	switch k {
	case KindMultipleChoice:
		return "multiple-choice"
	case KindTrueFalse:
		return "true/false"
	case KindMatching:
		return "matching"
	case KindFillBlank:
		return "fill-in-blank"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Title returns the heading shown above a question of this kind.
func (k Kind) Title() string {
	switch k {
	case KindMultipleChoice:
		return "Multiple Choice Question"
	case KindTrueFalse:
		return "True/False Question"
	case KindMatching:
		return "Matching Question"
	case KindFillBlank:
		return "Fill In The Blank Question"
	default:
		return "Question"
	}
}

// Question is one of *MultipleChoice, *TrueFalse, *Matching or *FillBlank.
type Question interface {
	// ID returns the backend identifier of the question.
	ID() string

	// Prompt returns the text shown to the learner.
	Prompt() string

	// Kind returns the variant tag.
	Kind() Kind

	isQuestion()
}

// Header carries the fields shared by every question variant.
type Header struct {
	QuestionID string
	Ask        string
}

func (h Header) ID() string     { return h.QuestionID }
func (h Header) Prompt() string { return h.Ask }

// MultipleChoice offers a list of options, one or more of which are correct.
type MultipleChoice struct {
	Header
	Options []string
	Correct []string
}

// NewMultipleChoice creates a multiple-choice question.
func NewMultipleChoice(id, ask string, options []string, correct ...string) *MultipleChoice {
	return &MultipleChoice{
		Header:  Header{QuestionID: id, Ask: ask},
		Options: options,
		Correct: correct,
	}
}

func (q *MultipleChoice) Kind() Kind { return KindMultipleChoice }
func (q *MultipleChoice) isQuestion() {}

// TrueFalse expects the learner to pick true or false.
type TrueFalse struct {
	Header
	// Expected is nil when the backend sent no usable key.
	Expected *bool
}

// NewTrueFalse creates a true/false question.
func NewTrueFalse(id, ask string, expected bool) *TrueFalse {
	return &TrueFalse{
		Header:   Header{QuestionID: id, Ask: ask},
		Expected: &expected,
	}
}

func (q *TrueFalse) Kind() Kind { return KindTrueFalse }
func (q *TrueFalse) isQuestion() {}

// Pair associates a term with its definition.
type Pair struct {
	Term       string `json:"leftColumn" validate:"required"`
	Definition string `json:"rightColumn" validate:"required"`
}

// Matching asks the learner to pair every term with its definition.
type Matching struct {
	Header
	Pairs []Pair
}

// NewMatching creates a matching question.
func NewMatching(id, ask string, pairs ...Pair) *Matching {
	return &Matching{
		Header: Header{QuestionID: id, Ask: ask},
		Pairs:  pairs,
	}
}

func (q *Matching) Kind() Kind { return KindMatching }
func (q *Matching) isQuestion() {}

// Terms returns the left column in key order.
func (q *Matching) Terms() []string {
	terms := make([]string, len(q.Pairs))
	for i, p := range q.Pairs {
		terms[i] = p.Term
	}
	return terms
}

// Definitions returns the right column sorted, so that the display order
// does not mirror the key.
func (q *Matching) Definitions() []string {
	defs := make([]string, len(q.Pairs))
	for i, p := range q.Pairs {
		defs[i] = p.Definition
	}
	slices.Sort(defs)
	return defs
}

// FillBlank expects a free-text answer.
type FillBlank struct {
	Header
	Expected string
}

// NewFillBlank creates a fill-in-blank question.
func NewFillBlank(id, ask, expected string) *FillBlank {
	return &FillBlank{
		Header:   Header{QuestionID: id, Ask: ask},
		Expected: expected,
	}
}

func (q *FillBlank) Kind() Kind { return KindFillBlank }
func (q *FillBlank) isQuestion() {}

// IsNil reports whether q is nil or a nil pointer to one of the question
// types.
func IsNil(q Question) bool {
	switch q := q.(type) {
	case nil:
		return true
	case *MultipleChoice:
		return q == nil
	case *TrueFalse:
		return q == nil
	case *Matching:
		return q == nil
	case *FillBlank:
		return q == nil
	}
	return false
}

// Test is an ordered list of questions. The order is fixed for a session.
type Test struct {
	ID        string
	Name      string
	Status    int
	Questions []Question
}

// TestInfo is the listing view of a test.
type TestInfo struct {
	ID            string
	Name          string
	Status        int
	QuestionCount int
}
