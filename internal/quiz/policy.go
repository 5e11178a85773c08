package quiz

import (
	"fmt"
	"slices"
	"strings"
)

// TrueFalseMode selects how true/false answers are scored.
type TrueFalseMode int

const (
	// TrueFalseStrict compares the answer with the question's expected value.
	TrueFalseStrict TrueFalseMode = iota

	// TrueFalseLegacy marks an answer correct iff it is the literal "true",
	// ignoring the expected value. It exists to reproduce the scoring of the
	// web player.
	TrueFalseLegacy
)

func (m TrueFalseMode) String() string {
	switch m {
	case TrueFalseStrict:
		return "strict"
	case TrueFalseLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseTrueFalseMode parses "strict" or "legacy".
func ParseTrueFalseMode(s string) (TrueFalseMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return TrueFalseStrict, nil
	case "legacy":
		return TrueFalseLegacy, nil
	default:
		return TrueFalseStrict, fmt.Errorf("unknown true/false mode %q", s)
	}
}

// Policy decides whether an answer is correct. Each question kind has its
// own comparison function.
type Policy struct {
	TrueFalse TrueFalseMode

	// FillBlankCaseSensitive makes fill-in-blank comparison case-sensitive.
	// Whitespace is always normalized.
	FillBlankCaseSensitive bool
}

// DefaultPolicy returns strict true/false scoring with case-insensitive
// fill-in-blank comparison.
func DefaultPolicy() Policy {
	return Policy{TrueFalse: TrueFalseStrict}
}

// Check reports whether q can be scored under p. Legacy true/false scoring
// never reads the key, so a missing key is not an error in that mode.
func (p Policy) Check(q Question) error {
	if IsNil(q) {
		return Validate(q)
	}
	if _, ok := q.(*TrueFalse); ok && p.TrueFalse == TrueFalseLegacy {
		return nil
	}
	return Validate(q)
}

// Score reports whether a is a correct answer to q. It returns an
// *AnswerValidationError when q's key is unusable or a cannot be
// interpreted for q's kind.
func (p Policy) Score(q Question, a Answer) (bool, error) {
	if IsNil(q) {
		return false, Validate(q)
	}
	switch q := q.(type) {
	case *MultipleChoice:
		return p.scoreMultipleChoice(q, a)
	case *TrueFalse:
		return p.scoreTrueFalse(q, a)
	case *Matching:
		return p.scoreMatching(q, a)
	case *FillBlank:
		return p.scoreFillBlank(q, a)
	}
	return false, Validate(q)
}

func (p Policy) scoreMultipleChoice(q *MultipleChoice, a Answer) (bool, error) {
	if err := validateMultipleChoice(q); err != nil {
		return false, err
	}
	return slices.Contains(q.Correct, a.Value), nil
}

func (p Policy) scoreTrueFalse(q *TrueFalse, a Answer) (bool, error) {
	if p.TrueFalse == TrueFalseLegacy {
		return a.Value == "true", nil
	}
	if err := validateTrueFalse(q); err != nil {
		return false, err
	}
	var got bool
	switch strings.ToLower(strings.TrimSpace(a.Value)) {
	case "true":
		got = true
	case "false":
		got = false
	default:
		return false, invalid(q, "answer %q is neither true nor false", a.Value)
	}
	return got == *q.Expected, nil
}

func (p Policy) scoreMatching(q *Matching, a Answer) (bool, error) {
	if err := validateMatching(q); err != nil {
		return false, err
	}
	if len(a.Pairs) != len(q.Pairs) {
		return false, nil
	}
	key := make(map[string]string, len(q.Pairs))
	for _, pair := range q.Pairs {
		key[pair.Term] = pair.Definition
	}
	seen := make(map[string]bool, len(a.Pairs))
	for _, pair := range a.Pairs {
		if seen[pair.Term] {
			return false, nil
		}
		seen[pair.Term] = true
		def, ok := key[pair.Term]
		if !ok || def != pair.Definition {
			return false, nil
		}
	}
	return true, nil
}

func (p Policy) scoreFillBlank(q *FillBlank, a Answer) (bool, error) {
	if err := validateFillBlank(q); err != nil {
		return false, err
	}
	got := normalizeText(a.Value)
	want := normalizeText(q.Expected)
	if p.FillBlankCaseSensitive {
		return got == want, nil
	}
	return strings.EqualFold(got, want), nil
}

// normalizeText trims the string and collapses inner whitespace runs.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
