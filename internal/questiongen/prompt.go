package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an experienced teacher writing exam questions.

Output contract:
- Reply with a single JSON object and nothing else. No prose, no markdown, no code fences.
- The object has exactly one key, "questions", holding an array of question objects.
- Every question object has the keys "type", "question", "options", "correctAnswer" and "explanation".
- "type" is one of "multiple-choice", "fill-in-the-blank" or "essay".
- For "multiple-choice": "options" holds exactly 4 strings and "correctAnswer" is the integer index (0-3) of the correct option. You may add "imagePrompt", a one-sentence description of an illustration that would help the question.
- For "fill-in-the-blank": "options" is an empty array and "correctAnswer" is the expected answer text. Mark the blank in the question with "___".
- For "essay": "options" is an empty array and "correctAnswer" is grading guidance listing the points a good answer covers.
- "explanation" briefly explains the correct answer.

Rules:
- Questions must be accurate, unambiguous and appropriate for the stated grade.
- Follow the requested difficulty, question type and number of questions exactly.
- When source material is supplied, every question must be answerable from it.`

// buildUserMessage combines the teacher's prompt with request context and
// the (already truncated) material text.
func buildUserMessage(req Request, materialText string) string {
	var b strings.Builder

	if req.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", req.Subject)
	}
	if req.Grade != "" {
		fmt.Fprintf(&b, "Grade: %s\n", req.Grade)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}

	b.WriteString(req.UserPrompt)

	if materialText != "" {
		b.WriteString("\n\nSource material:\n")
		b.WriteString(materialText)
	}

	return b.String()
}
