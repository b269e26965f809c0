package questions

import (
	"encoding/json"
	"fmt"
)

// wireQuestion is the JSON shape shared by every variant.
type wireQuestion struct {
	Type          string          `json:"type"`
	Question      string          `json:"question"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Explanation   string          `json:"explanation,omitempty"`
	ImagePrompt   string          `json:"imagePrompt,omitempty"`
}

// Decode converts one raw item into its variant. Items with an unknown
// type, or whose correctAnswer does not fit the variant, come back as
// *Unrecognized.
func Decode(raw json.RawMessage) Question {
	var w wireQuestion
	if err := json.Unmarshal(raw, &w); err != nil {
		return &Unrecognized{Raw: raw}
	}

	switch Type(w.Type) {
	case TypeMultipleChoice:
		var idx int
		if err := json.Unmarshal(w.CorrectAnswer, &idx); err != nil {
			return &Unrecognized{TypeName: w.Type, Raw: raw}
		}
		return &MultipleChoice{
			Question:      w.Question,
			Options:       w.Options,
			CorrectAnswer: idx,
			Explanation:   w.Explanation,
			ImagePrompt:   w.ImagePrompt,
		}
	case TypeFillInBlank:
		var ans string
		if err := json.Unmarshal(w.CorrectAnswer, &ans); err != nil {
			return &Unrecognized{TypeName: w.Type, Raw: raw}
		}
		return &FillInBlank{Question: w.Question, CorrectAnswer: ans, Explanation: w.Explanation}
	case TypeEssay:
		var guidance string
		if err := json.Unmarshal(w.CorrectAnswer, &guidance); err != nil {
			return &Unrecognized{TypeName: w.Type, Raw: raw}
		}
		return &Essay{Question: w.Question, GradingGuidance: guidance, Explanation: w.Explanation}
	default:
		return &Unrecognized{TypeName: w.Type, Raw: raw}
	}
}

// Encode returns the wire JSON for q.
func Encode(q Question) (json.RawMessage, error) {
	var w wireQuestion
	switch v := q.(type) {
	case *MultipleChoice:
		ans, _ := json.Marshal(v.CorrectAnswer)
		w = wireQuestion{
			Type:          string(TypeMultipleChoice),
			Question:      v.Question,
			Options:       v.Options,
			CorrectAnswer: ans,
			Explanation:   v.Explanation,
			ImagePrompt:   v.ImagePrompt,
		}
	case *FillInBlank:
		ans, _ := json.Marshal(v.CorrectAnswer)
		w = wireQuestion{
			Type:          string(TypeFillInBlank),
			Question:      v.Question,
			CorrectAnswer: ans,
			Explanation:   v.Explanation,
		}
	case *Essay:
		ans, _ := json.Marshal(v.GradingGuidance)
		w = wireQuestion{
			Type:          string(TypeEssay),
			Question:      v.Question,
			CorrectAnswer: ans,
			Explanation:   v.Explanation,
		}
	case *Unrecognized:
		return v.Raw, nil
	default:
		return nil, fmt.Errorf("unknown question variant %T", q)
	}
	if w.Options == nil {
		w.Options = []string{}
	}
	return json.Marshal(w)
}

// MarshalJSON encodes the set as a JSON array in order.
func (s Set) MarshalJSON() ([]byte, error) {
	items := make([]json.RawMessage, 0, len(s))
	for i, q := range s {
		raw, err := Encode(q)
		if err != nil {
			return nil, fmt.Errorf("encode question %d: %w", i, err)
		}
		items = append(items, raw)
	}
	return json.Marshal(items)
}

// UnmarshalJSON decodes a JSON array, one variant per item.
func (s *Set) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(Set, 0, len(items))
	for _, raw := range items {
		out = append(out, Decode(raw))
	}
	*s = out
	return nil
}
