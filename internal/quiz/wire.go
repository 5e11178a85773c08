package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// QuestionRecord is the backend's JSON shape of a question.
type QuestionRecord struct {
	ID           string          `json:"_id" validate:"required"`
	Ask          string          `json:"ask" validate:"required"`
	QuestionType int             `json:"questionType" validate:"min=0,max=3"`
	Options      []string        `json:"options,omitempty"`
	Answer       json.RawMessage `json:"answer,omitempty"`
}

// TestRecord is the backend's JSON shape of a test with its questions
// populated.
type TestRecord struct {
	ID        string           `json:"_id" validate:"required"`
	Name      string           `json:"name" validate:"required"`
	Status    int              `json:"status"`
	Questions []QuestionRecord `json:"questionsId" validate:"dive"`
}

// Question converts the record into its variant. Key data that cannot be
// decoded is left empty so that Validate reports it; only records without
// an identifier or with an unknown type are rejected.
func (r QuestionRecord) Question() (Question, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("question record without _id")
	}
	h := Header{QuestionID: r.ID, Ask: r.Ask}

	switch Kind(r.QuestionType) {
	case KindMultipleChoice:
		return &MultipleChoice{Header: h, Options: r.Options, Correct: decodeStrings(r.Answer)}, nil
	case KindTrueFalse:
		return &TrueFalse{Header: h, Expected: decodeBool(r.Answer)}, nil
	case KindMatching:
		var pairs []Pair
		if err := json.Unmarshal(r.Answer, &pairs); err != nil {
			pairs = nil
		}
		return &Matching{Header: h, Pairs: pairs}, nil
	case KindFillBlank:
		var s string
		if err := json.Unmarshal(r.Answer, &s); err != nil {
			s = ""
		}
		return &FillBlank{Header: h, Expected: s}, nil
	default:
		return nil, fmt.Errorf("question %s: unknown questionType %d", r.ID, r.QuestionType)
	}
}

// Test converts the record into a Test. Questions that cannot be converted
// are skipped and reported in the returned slice.
func (r TestRecord) Test() (*Test, []error) {
	t := &Test{ID: r.ID, Name: r.Name, Status: r.Status}
	var skipped []error
	for _, qr := range r.Questions {
		q, err := qr.Question()
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		t.Questions = append(t.Questions, q)
	}
	return t, skipped
}

// NewQuestionRecord converts a question back to its wire shape.
func NewQuestionRecord(q Question) QuestionRecord {
	r := QuestionRecord{ID: q.ID(), Ask: q.Prompt(), QuestionType: int(q.Kind())}
	var answer any
	switch q := q.(type) {
	case *MultipleChoice:
		r.Options = q.Options
		if len(q.Correct) == 1 {
			answer = q.Correct[0]
		} else {
			answer = q.Correct
		}
	case *TrueFalse:
		if q.Expected != nil {
			answer = *q.Expected
		}
	case *Matching:
		answer = q.Pairs
	case *FillBlank:
		answer = q.Expected
	}
	if answer != nil {
		r.Answer, _ = json.Marshal(answer)
	}
	return r
}

// decodeStrings accepts a JSON string or a list of strings.
func decodeStrings(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		if one == "" {
			return nil
		}
		return []string{one}
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}

// decodeBool accepts a JSON bool or the strings "true" and "false".
func decodeBool(raw json.RawMessage) *bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return &b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s {
		case "true":
			b = true
			return &b
		case "false":
			return &b
		}
	}
	return nil
}
