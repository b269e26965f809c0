package questions

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mc(text string) *MultipleChoice {
	return &MultipleChoice{
		Question:      text,
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: 1,
	}
}

func parse(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestMerge_Append(t *testing.T) {
	q1, q2, q3 := mc("q1"), mc("q2"), mc("q3")
	existing := Set{q1, q2}
	incoming := Set{q3}

	got := Merge(existing, incoming, true)

	assert.Equal(t, Set{q1, q2, q3}, got)
	assert.Equal(t, Set{q1, q2}, existing)
	assert.Equal(t, Set{q3}, incoming)
}

func TestMerge_Fresh(t *testing.T) {
	q1, q2, q3 := mc("q1"), mc("q2"), mc("q3")
	incoming := Set{q2, q3}

	got := Merge(Set{q1}, incoming, false)
	assert.Equal(t, Set{q2, q3}, got)

	// The result does not alias the incoming slice.
	got[0] = q1
	assert.Same(t, q2, incoming[0])
}

func TestMerge_NoDeduplication(t *testing.T) {
	q := mc("same")
	got := Merge(Set{q}, Set{q}, true)
	assert.Len(t, got, 2)
}

func TestValidate_MissingKey(t *testing.T) {
	for _, in := range []string{`{"foo": []}`, `[]`, `{"questions": {}}`, `"questions"`} {
		_, err := Validate(parse(t, in))
		var missing *ErrMissingQuestionsKey
		require.True(t, errors.As(err, &missing), "input %s", in)
		assert.Equal(t, QuestionsKey, missing.Key)
	}
}

func TestValidate_Empty(t *testing.T) {
	batch, err := Validate(parse(t, `{"questions": []}`))
	require.NoError(t, err)
	assert.Empty(t, batch.Questions)
	assert.Empty(t, batch.Issues)
}

func TestValidate_DecodesVariantsInOrder(t *testing.T) {
	in := `{"questions": [
		{"type": "multiple-choice", "question": "2+2?", "options": ["1","2","3","4"], "correctAnswer": 3, "explanation": "sum", "imagePrompt": "apples"},
		{"type": "fill-in-the-blank", "question": "Water is H_O", "options": [], "correctAnswer": "2"},
		{"type": "essay", "question": "Discuss.", "options": [], "correctAnswer": "Mentions causes"}
	]}`

	batch, err := Validate(parse(t, in))
	require.NoError(t, err)
	require.Len(t, batch.Questions, 3)
	assert.Empty(t, batch.Issues)

	m, ok := batch.Questions[0].(*MultipleChoice)
	require.True(t, ok)
	assert.Equal(t, 3, m.CorrectAnswer)
	assert.Equal(t, "apples", m.ImagePrompt)

	f, ok := batch.Questions[1].(*FillInBlank)
	require.True(t, ok)
	assert.Equal(t, "2", f.CorrectAnswer)

	e, ok := batch.Questions[2].(*Essay)
	require.True(t, ok)
	assert.Equal(t, "Mentions causes", e.GradingGuidance)
}

func TestValidate_PermissiveItems(t *testing.T) {
	in := `{"questions": [
		{"type": "multiple-choice", "question": "short", "options": ["a","b"], "correctAnswer": 0},
		{"type": "essay", "question": "Explain", "options": ["x"], "correctAnswer": "guide"},
		{"type": "true-false", "question": "Sky is blue", "correctAnswer": true},
		{"type": "fill-in-the-blank", "question": "ok", "options": [], "correctAnswer": "fine"}
	]}`

	batch, err := Validate(parse(t, in))
	require.NoError(t, err)
	require.Len(t, batch.Questions, 4)

	// Shape violations are reported but the item is still kept.
	assert.IsType(t, &MultipleChoice{}, batch.Questions[0])
	assert.IsType(t, &Essay{}, batch.Questions[1])
	assert.IsType(t, &Unrecognized{}, batch.Questions[2])
	assert.IsType(t, &FillInBlank{}, batch.Questions[3])

	require.Len(t, batch.Issues, 3)
	assert.Equal(t, 0, batch.Issues[0].Index)
	assert.Equal(t, 1, batch.Issues[1].Index)
	assert.Equal(t, 2, batch.Issues[2].Index)
	assert.Contains(t, batch.Issues[2].Message, "true-false")
}

func TestDecode_WrongAnswerShape(t *testing.T) {
	q := Decode(json.RawMessage(`{"type":"multiple-choice","question":"q","options":["a","b","c","d"],"correctAnswer":"B"}`))
	u, ok := q.(*Unrecognized)
	require.True(t, ok)
	assert.Equal(t, TypeMultipleChoice, u.Kind())
	assert.Equal(t, "q", u.Prompt())
}

func TestSet_JSONRoundTrip(t *testing.T) {
	set := Set{
		mc("pick one"),
		&FillInBlank{Question: "The capital of France is ___", CorrectAnswer: "Paris"},
		&Essay{Question: "Why?", GradingGuidance: "Because", Explanation: "e"},
	}

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"options":[]`)

	var back Set
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, set, back)
}

func TestSet_MarshalKeepsUnrecognizedRaw(t *testing.T) {
	raw := json.RawMessage(`{"type":"matching","question":"pair them"}`)
	data, err := json.Marshal(Set{&Unrecognized{TypeName: "matching", Raw: raw}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"matching","question":"pair them"}]`, string(data))
}

func TestRender(t *testing.T) {
	set := Set{
		mc("Pick B"),
		&FillInBlank{Question: "Fill ___", CorrectAnswer: "in", Explanation: "phrase"},
		&Essay{Question: "Discuss", GradingGuidance: "Two points"},
		&Unrecognized{TypeName: "matching", Raw: json.RawMessage(`{"question":"Match"}`)},
	}

	var plain strings.Builder
	require.NoError(t, Render(&plain, set, RenderOptions{}))
	out := plain.String()
	assert.Contains(t, out, "1. Pick B\n   A) A\n   B) B\n")
	assert.Contains(t, out, "2. Fill ___\n")
	assert.Contains(t, out, "4. Match\n   (unrecognized question type \"matching\")")
	assert.NotContains(t, out, "(correct)")
	assert.NotContains(t, out, "Answer: in")

	var key strings.Builder
	require.NoError(t, Render(&key, set, RenderOptions{AnswerKey: true}))
	out = key.String()
	assert.Contains(t, out, "B) B  (correct)")
	assert.Contains(t, out, "Answer: in\n   Explanation: phrase")
	assert.Contains(t, out, "Grading guidance: Two points")
}
