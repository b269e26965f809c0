// Package prompt assembles the instruction text sent to the question
// generation service from the teacher's form inputs.
package prompt

import (
	"fmt"
	"strings"
)

// Difficulty levels accepted by Build.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// TypeMixed asks for a blend of every question type.
const TypeMixed = "mixed"

// DefaultCount is used when Params.Count is not positive.
const DefaultCount = 5

var difficultyLabels = map[string]string{
	DifficultyEasy:   "Easy (recall and basic understanding)",
	DifficultyMedium: "Medium (application and analysis)",
	DifficultyHard:   "Hard (evaluation, synthesis and multi-step reasoning)",
}

var typeLabels = map[string]string{
	"multiple-choice":   "multiple-choice questions with exactly four options",
	"fill-in-the-blank": "fill-in-the-blank questions",
	"essay":             "essay questions with grading guidance",
	TypeMixed:           "a mix of multiple-choice, fill-in-the-blank and essay questions",
}

// Params are the structured inputs to Build.
type Params struct {
	Subject      string
	Grade        string
	Difficulty   string
	QuestionType string
	Topic        string
	Count        int

	// MaterialText is extracted source text. When non-empty the questions
	// must be drawn from it.
	MaterialText string

	// Append, when set, asks for additional questions on top of an
	// existing set.
	Append *AppendConfig
}

// AppendConfig describes an "add more questions" request.
type AppendConfig struct {
	Count       int
	Type        string
	Instruction string
}

// DifficultyLabel maps a difficulty level to its human-readable label.
// Unknown levels are returned unchanged.
func DifficultyLabel(level string) string {
	if l, ok := difficultyLabels[strings.ToLower(level)]; ok {
		return l
	}
	return level
}

// TypeLabel maps a question type to its human-readable label.
// Unknown types are returned unchanged.
func TypeLabel(t string) string {
	if l, ok := typeLabels[strings.ToLower(t)]; ok {
		return l
	}
	return t
}

// Build returns the instruction text for p. It is deterministic: equal
// Params always produce the same string.
func Build(p Params) string {
	count := p.Count
	if count <= 0 {
		count = DefaultCount
	}
	qtype := p.QuestionType
	if qtype == "" {
		qtype = TypeMixed
	}
	difficulty := p.Difficulty
	if difficulty == "" {
		difficulty = DifficultyMedium
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Create an exam for %s, grade %s.\n", p.Subject, p.Grade)
	fmt.Fprintf(&b, "Difficulty: %s\n", DifficultyLabel(difficulty))
	fmt.Fprintf(&b, "Question type: %s\n", TypeLabel(qtype))
	fmt.Fprintf(&b, "Number of questions: %d\n", count)

	if topic := strings.TrimSpace(p.Topic); topic != "" {
		fmt.Fprintf(&b, "Focus the questions on this topic: %s\n", topic)
	}

	if strings.TrimSpace(p.MaterialText) != "" {
		b.WriteString("\nBase every question on the source material supplied with this request. ")
		b.WriteString("Do not ask about facts that the material does not contain.\n")
	}

	if a := p.Append; a != nil {
		appendType := a.Type
		if appendType == "" {
			appendType = qtype
		}
		b.WriteString("\nAdditional questions: ignore any question count given above. ")
		fmt.Fprintf(&b, "Generate exactly %d new %s. ", a.Count, TypeLabel(appendType))
		b.WriteString("They must not repeat earlier questions.\n")
		if instr := strings.TrimSpace(a.Instruction); instr != "" {
			fmt.Fprintf(&b, "Extra instruction from the teacher: %s\n", instr)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
