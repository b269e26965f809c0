package questions

import "fmt"

// QuestionsKey is the top-level key that must hold the question array.
const QuestionsKey = "questions"

// ErrMissingQuestionsKey indicates the parsed response has no array under
// QuestionsKey.
type ErrMissingQuestionsKey struct {
	Key string
}

func (e *ErrMissingQuestionsKey) Error() string {
	return fmt.Sprintf("response is missing the %q array", e.Key)
}
