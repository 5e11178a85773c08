package quiz

import (
	"fmt"
	"strings"
)

// Answer is the learner's raw answer. Value holds the answer for
// multiple-choice, true/false and fill-in-blank questions; Pairs holds it
// for matching questions.
type Answer struct {
	Value string
	Pairs []Pair
}

// Text returns an Answer holding a single value.
func Text(v string) Answer {
	return Answer{Value: v}
}

// Matches returns an Answer holding term/definition pairs.
func Matches(pairs ...Pair) Answer {
	return Answer{Pairs: pairs}
}

// IsEmpty reports whether no answer has been given.
func (a Answer) IsEmpty() bool {
	return strings.TrimSpace(a.Value) == "" && len(a.Pairs) == 0
}

// Clone returns a copy that shares no memory with a.
func (a Answer) Clone() Answer {
	out := Answer{Value: a.Value}
	if a.Pairs != nil {
		out.Pairs = append([]Pair(nil), a.Pairs...)
	}
	return out
}

// String renders the answer for display and logging.
func (a Answer) String() string {
	if len(a.Pairs) == 0 {
		return a.Value
	}
	parts := make([]string, len(a.Pairs))
	for i, p := range a.Pairs {
		parts[i] = fmt.Sprintf("%s → %s", p.Term, p.Definition)
	}
	return strings.Join(parts, ", ")
}

// WithPair returns a copy of a with p appended. An existing pair for the
// same term or the same definition is replaced.
func (a Answer) WithPair(p Pair) Answer {
	out := Answer{Value: a.Value}
	for _, existing := range a.Pairs {
		if existing.Term == p.Term || existing.Definition == p.Definition {
			continue
		}
		out.Pairs = append(out.Pairs, existing)
	}
	out.Pairs = append(out.Pairs, p)
	return out
}

// WithoutLastPair returns a copy of a with the most recent pair removed.
func (a Answer) WithoutLastPair() Answer {
	out := a.Clone()
	if len(out.Pairs) > 0 {
		out.Pairs = out.Pairs[:len(out.Pairs)-1]
	}
	if len(out.Pairs) == 0 {
		out.Pairs = nil
	}
	return out
}
