package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTest = `{
	"_id": "t1",
	"name": "Basics",
	"status": 1,
	"questionsId": [
		{"_id": "q1", "ask": "Pick B", "questionType": 0, "options": ["A", "B", "C"], "answer": "B"},
		{"_id": "q2", "ask": "Water is wet", "questionType": 1, "answer": true},
		{"_id": "q3", "ask": "Match", "questionType": 2, "answer": [
			{"leftColumn": "x", "rightColumn": "1"},
			{"leftColumn": "y", "rightColumn": "2"}
		]},
		{"_id": "q4", "ask": "Capital of France", "questionType": 3, "answer": "Paris"},
		{"_id": "q5", "ask": "Essay", "questionType": 9},
		{"_id": "q6", "ask": "Sun is cold", "questionType": 1, "answer": "false"}
	]
}`

func TestTestRecord_Decode(t *testing.T) {
	var rec TestRecord
	require.NoError(t, json.Unmarshal([]byte(sampleTest), &rec))

	test, skipped := rec.Test()
	assert.Equal(t, "t1", test.ID)
	assert.Equal(t, "Basics", test.Name)
	assert.Equal(t, 1, test.Status)
	require.Len(t, skipped, 1, "unknown questionType should be skipped")
	require.Len(t, test.Questions, 5)

	mc, ok := test.Questions[0].(*MultipleChoice)
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, mc.Options)
	assert.Equal(t, []string{"B"}, mc.Correct)

	tf, ok := test.Questions[1].(*TrueFalse)
	require.True(t, ok)
	require.NotNil(t, tf.Expected)
	assert.True(t, *tf.Expected)

	m, ok := test.Questions[2].(*Matching)
	require.True(t, ok)
	assert.Equal(t, []Pair{{"x", "1"}, {"y", "2"}}, m.Pairs)

	fb, ok := test.Questions[3].(*FillBlank)
	require.True(t, ok)
	assert.Equal(t, "Paris", fb.Expected)

	tf2, ok := test.Questions[4].(*TrueFalse)
	require.True(t, ok)
	require.NotNil(t, tf2.Expected)
	assert.False(t, *tf2.Expected)
}

func TestQuestionRecord_MalformedKeyStillDecodes(t *testing.T) {
	rec := QuestionRecord{ID: "q1", Ask: "?", QuestionType: int(KindTrueFalse), Answer: json.RawMessage(`"perhaps"`)}
	q, err := rec.Question()
	require.NoError(t, err)

	tf := q.(*TrueFalse)
	assert.Nil(t, tf.Expected)
	assert.Error(t, Validate(q))
}

func TestQuestionRecord_MultipleCorrectOptions(t *testing.T) {
	rec := QuestionRecord{ID: "q1", Ask: "?", QuestionType: 0, Options: []string{"2", "3", "4"}, Answer: json.RawMessage(`["2","3"]`)}
	q, err := rec.Question()
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, q.(*MultipleChoice).Correct)
}

func TestQuestionRecord_MissingID(t *testing.T) {
	_, err := QuestionRecord{Ask: "?"}.Question()
	assert.Error(t, err)
}

func TestNewQuestionRecord_RoundTrip(t *testing.T) {
	questions := []Question{
		NewMultipleChoice("q1", "Pick B", []string{"A", "B"}, "B"),
		NewTrueFalse("q2", "Water is wet", true),
		NewMatching("q3", "Match", Pair{"x", "1"}),
		NewFillBlank("q4", "Capital", "Paris"),
	}
	for _, q := range questions {
		back, err := NewQuestionRecord(q).Question()
		require.NoError(t, err)
		assert.Equal(t, q, back, "question %s", q.ID())
	}
}

func TestMatching_DefinitionsDoNotMirrorKey(t *testing.T) {
	q := NewMatching("q1", "Match", Pair{"dog", "woof"}, Pair{"cat", "meow"}, Pair{"cow", "moo"})
	assert.Equal(t, []string{"dog", "cat", "cow"}, q.Terms())
	assert.Equal(t, []string{"meow", "moo", "woof"}, q.Definitions())
}

func TestAnswer_WithPair(t *testing.T) {
	a := Matches()
	a = a.WithPair(Pair{"x", "1"})
	a = a.WithPair(Pair{"y", "2"})
	a = a.WithPair(Pair{"x", "3"})
	assert.Equal(t, []Pair{{"y", "2"}, {"x", "3"}}, a.Pairs)

	// Reusing a definition moves it to the new term.
	a = a.WithPair(Pair{"z", "2"})
	assert.Equal(t, []Pair{{"x", "3"}, {"z", "2"}}, a.Pairs)

	a = a.WithoutLastPair().WithoutLastPair()
	assert.True(t, a.IsEmpty())
}
