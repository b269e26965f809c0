// Package questions defines the generated question variants and the
// validation and merge rules applied to a batch returned by the model.
package questions

import "encoding/json"

// Type is the closed set of question kinds the model may return.
type Type string

const (
	TypeMultipleChoice Type = "multiple-choice"
	TypeFillInBlank    Type = "fill-in-the-blank"
	TypeEssay          Type = "essay"
)

// Types lists every known Type in display order.
var Types = []Type{TypeMultipleChoice, TypeFillInBlank, TypeEssay}

// Valid reports whether t is one of the known question types.
func (t Type) Valid() bool {
	switch t {
	case TypeMultipleChoice, TypeFillInBlank, TypeEssay:
		return true
	}
	return false
}

// Question is one generated question. The concrete type is always one of
// *MultipleChoice, *FillInBlank, *Essay or *Unrecognized; callers switch
// over all four.
type Question interface {
	// Kind returns the variant tag. Unrecognized returns the raw tag the
	// model sent, which may be empty.
	Kind() Type

	// Prompt returns the question text shown to the student.
	Prompt() string

	isQuestion()
}

// MultipleChoice has exactly four options; CorrectAnswer indexes into them.
type MultipleChoice struct {
	Question      string
	Options       []string
	CorrectAnswer int
	Explanation   string

	// ImagePrompt optionally describes an illustration for the question.
	ImagePrompt string
}

// FillInBlank carries the expected answer as text.
type FillInBlank struct {
	Question      string
	CorrectAnswer string
	Explanation   string
}

// Essay carries grading guidance in place of a single answer.
type Essay struct {
	Question        string
	GradingGuidance string
	Explanation     string
}

// Unrecognized preserves an item that could not be decoded into a known
// variant. It is kept, in order, rather than dropping the batch.
type Unrecognized struct {
	TypeName string
	Raw      json.RawMessage
}

func (q *MultipleChoice) Kind() Type { return TypeMultipleChoice }
func (q *FillInBlank) Kind() Type    { return TypeFillInBlank }
func (q *Essay) Kind() Type          { return TypeEssay }
func (q *Unrecognized) Kind() Type   { return Type(q.TypeName) }

func (q *MultipleChoice) Prompt() string { return q.Question }
func (q *FillInBlank) Prompt() string    { return q.Question }
func (q *Essay) Prompt() string          { return q.Question }

func (q *Unrecognized) Prompt() string {
	var w struct {
		Question string `json:"question"`
	}
	_ = json.Unmarshal(q.Raw, &w)
	return w.Question
}

func (*MultipleChoice) isQuestion() {}
func (*FillInBlank) isQuestion()    {}
func (*Essay) isQuestion()          {}
func (*Unrecognized) isQuestion()   {}

// Set is an ordered list of questions.
type Set []Question

// Batch is a validated model response.
type Batch struct {
	Questions Set

	// Issues lists per-item schema violations. They are reported, never
	// fatal.
	Issues []Issue
}

// Issue describes one item that did not match its variant's shape.
type Issue struct {
	Index   int
	Type    string
	Message string
}
