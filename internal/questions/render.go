package questions

import (
	"fmt"
	"io"
	"strings"
)

// RenderOptions controls plain-text output.
type RenderOptions struct {
	// AnswerKey includes correct answers, grading guidance and
	// explanations.
	AnswerKey bool
}

// Render writes a numbered plain-text version of set to w.
func Render(w io.Writer, set Set, opts RenderOptions) error {
	var b strings.Builder
	for i, q := range set {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Prompt())

		switch v := q.(type) {
		case *MultipleChoice:
			for j, opt := range v.Options {
				marker := ""
				if opts.AnswerKey && j == v.CorrectAnswer {
					marker = "  (correct)"
				}
				fmt.Fprintf(&b, "   %c) %s%s\n", optionLetter(j), opt, marker)
			}
			if opts.AnswerKey {
				writeExplanation(&b, v.Explanation)
			}
		case *FillInBlank:
			if opts.AnswerKey {
				fmt.Fprintf(&b, "   Answer: %s\n", v.CorrectAnswer)
				writeExplanation(&b, v.Explanation)
			}
		case *Essay:
			if opts.AnswerKey {
				fmt.Fprintf(&b, "   Grading guidance: %s\n", v.GradingGuidance)
				writeExplanation(&b, v.Explanation)
			}
		case *Unrecognized:
			fmt.Fprintf(&b, "   (unrecognized question type %q)\n", v.TypeName)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func optionLetter(i int) rune {
	return rune('A' + i)
}

func writeExplanation(b *strings.Builder, text string) {
	if text != "" {
		fmt.Fprintf(b, "   Explanation: %s\n", text)
	}
}
