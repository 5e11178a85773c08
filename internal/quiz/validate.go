package quiz

import (
	"fmt"
	"slices"
	"strings"
)

// AnswerValidationError reports a malformed or missing answer key, or an
// answer that cannot be interpreted for the question's kind. The question
// cannot be scored but the session carries on.
type AnswerValidationError struct {
	QuestionID string
	Kind       Kind
	Reason     string
}

func (e *AnswerValidationError) Error() string {
	return fmt.Sprintf("question %s (%s): %s", e.QuestionID, e.Kind, e.Reason)
}

func invalid(q Question, format string, args ...any) *AnswerValidationError {
	return &AnswerValidationError{
		QuestionID: q.ID(),
		Kind:       q.Kind(),
		Reason:     fmt.Sprintf(format, args...),
	}
}

// Validate checks that q carries a usable answer key.
// It returns nil or an *AnswerValidationError.
func Validate(q Question) error {
	if IsNil(q) {
		return &AnswerValidationError{Reason: "missing question"}
	}
	var err *AnswerValidationError
	switch q := q.(type) {
	case *MultipleChoice:
		err = validateMultipleChoice(q)
	case *TrueFalse:
		err = validateTrueFalse(q)
	case *Matching:
		err = validateMatching(q)
	case *FillBlank:
		err = validateFillBlank(q)
	default:
		err = invalid(q, "unsupported question type")
	}
	if err != nil {
		return err
	}
	return nil
}

func validateMultipleChoice(q *MultipleChoice) *AnswerValidationError {
	if len(q.Options) == 0 {
		return invalid(q, "no options")
	}
	if len(q.Correct) == 0 {
		return invalid(q, "no option marked correct")
	}
	for _, c := range q.Correct {
		if !slices.Contains(q.Options, c) {
			return invalid(q, "correct option %q is not among the options", c)
		}
	}
	return nil
}

func validateTrueFalse(q *TrueFalse) *AnswerValidationError {
	if q.Expected == nil {
		return invalid(q, "missing expected value")
	}
	return nil
}

func validateMatching(q *Matching) *AnswerValidationError {
	if len(q.Pairs) == 0 {
		return invalid(q, "no pairs")
	}
	terms := make(map[string]bool, len(q.Pairs))
	defs := make(map[string]bool, len(q.Pairs))
	for _, p := range q.Pairs {
		if p.Term == "" || p.Definition == "" {
			return invalid(q, "pair with empty term or definition")
		}
		if terms[p.Term] {
			return invalid(q, "duplicate term %q", p.Term)
		}
		if defs[p.Definition] {
			return invalid(q, "duplicate definition %q", p.Definition)
		}
		terms[p.Term] = true
		defs[p.Definition] = true
	}
	return nil
}

func validateFillBlank(q *FillBlank) *AnswerValidationError {
	if strings.TrimSpace(q.Expected) == "" {
		return invalid(q, "empty expected answer")
	}
	return nil
}
