package questions

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// itemSchemas holds one JSON Schema per variant. They are checked per item
// after the top-level array is found.
var itemSchemas = map[Type]map[string]any{
	TypeMultipleChoice: {
		"type": "object",
		"properties": map[string]any{
			"type":     map[string]any{"const": string(TypeMultipleChoice)},
			"question": map[string]any{"type": "string", "minLength": 1},
			"options": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 4,
				"maxItems": 4,
			},
			"correctAnswer": map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
			"explanation":   map[string]any{"type": "string"},
			"imagePrompt":   map[string]any{"type": "string"},
		},
		"required": []any{"type", "question", "options", "correctAnswer"},
	},
	TypeFillInBlank: textAnswerSchema(TypeFillInBlank),
	TypeEssay:       textAnswerSchema(TypeEssay),
}

func textAnswerSchema(t Type) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type":          map[string]any{"const": string(t)},
			"question":      map[string]any{"type": "string", "minLength": 1},
			"options":       map[string]any{"type": "array", "maxItems": 0},
			"correctAnswer": map[string]any{"type": "string"},
			"explanation":   map[string]any{"type": "string"},
		},
		"required": []any{"type", "question", "correctAnswer"},
	}
}

// compiled caches compiled item schemas by type.
var compiled sync.Map // map[Type]*jsonschema.Schema

func schemaFor(t Type) (*jsonschema.Schema, error) {
	if cached, ok := compiled.Load(t); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, ok := itemSchemas[t]
	if !ok {
		return nil, fmt.Errorf("no schema for question type %q", t)
	}

	// The compiler wants a plain decoded JSON value.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://question/%s.json", t)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	compiled.Store(t, sch)
	return sch, nil
}

// checkItem validates one decoded item against its variant schema.
func checkItem(t Type, item any) error {
	sch, err := schemaFor(t)
	if err != nil {
		return err
	}
	return sch.Validate(item)
}
