package questions

import (
	"encoding/json"
	"fmt"
)

// Validate turns a parsed model response into a Batch. The response must
// be an object with an array under QuestionsKey; otherwise it fails with
// *ErrMissingQuestionsKey. Individual items are checked against their
// variant schema and violations are collected as Issues. Every item is
// kept, in response order.
func Validate(parsed any) (*Batch, error) {
	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, &ErrMissingQuestionsKey{Key: QuestionsKey}
	}
	items, ok := obj[QuestionsKey].([]any)
	if !ok {
		return nil, &ErrMissingQuestionsKey{Key: QuestionsKey}
	}

	batch := &Batch{Questions: make(Set, 0, len(items))}
	for i, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			// Values produced by json.Unmarshal always re-marshal.
			return nil, fmt.Errorf("re-encode question %d: %w", i, err)
		}

		typeName := itemType(item)
		if issue := inspect(i, typeName, item); issue != nil {
			batch.Issues = append(batch.Issues, *issue)
		}
		batch.Questions = append(batch.Questions, Decode(raw))
	}
	return batch, nil
}

func itemType(item any) string {
	m, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m["type"].(string)
	return s
}

func inspect(index int, typeName string, item any) *Issue {
	t := Type(typeName)
	if !t.Valid() {
		return &Issue{
			Index:   index,
			Type:    typeName,
			Message: fmt.Sprintf("unknown question type %q", typeName),
		}
	}
	if err := checkItem(t, item); err != nil {
		return &Issue{Index: index, Type: typeName, Message: err.Error()}
	}
	return nil
}
