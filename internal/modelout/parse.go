// Package modelout recovers JSON from free-form model output.
//
// Recovery is deliberately narrow. It unwraps a ```json fenced block,
// drops stray fence markers and, if strict parsing fails, removes trailing
// commas before a closing bracket or brace. Comments, single quotes and
// unescaped quotes are not repaired.
package modelout

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const fence = "```"

var (
	jsonFencePattern     = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	trailingCommaPattern = regexp.MustCompile(`,\s*([\]}])`)
)

// ErrUnrecoverableFormat indicates the model output could not be coerced
// into valid JSON, even after repair. Err is the parse error of the
// unrepaired candidate.
type ErrUnrecoverableFormat struct {
	Content string
	Err     error
}

func (e *ErrUnrecoverableFormat) Error() string {
	return fmt.Sprintf("unrecoverable model output: %v", e.Err)
}

func (e *ErrUnrecoverableFormat) Unwrap() error { return e.Err }

// Parse returns the JSON value embedded in raw.
func Parse(raw string) (any, error) {
	candidate := Candidate(raw)

	var v any
	firstErr := json.Unmarshal([]byte(candidate), &v)
	if firstErr == nil {
		return v, nil
	}

	repaired := RemoveTrailingCommas(candidate)
	if repaired != candidate {
		if err := json.Unmarshal([]byte(repaired), &v); err == nil {
			return v, nil
		}
	}

	return nil, &ErrUnrecoverableFormat{Content: raw, Err: firstErr}
}

// Candidate isolates the JSON text in raw: the inner content of a ```json
// fence when present, otherwise the whole text, with leftover fence
// markers removed.
func Candidate(raw string) string {
	candidate := raw
	if m := jsonFencePattern.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	} else if i := strings.Index(raw, fence+"json"); i >= 0 {
		// Opening fence with no closing one.
		candidate = raw[i+len(fence+"json"):]
	}
	candidate = strings.ReplaceAll(candidate, fence, "")
	return strings.TrimSpace(candidate)
}

// RemoveTrailingCommas drops commas that directly precede "]" or "}",
// ignoring whitespace in between.
func RemoveTrailingCommas(s string) string {
	return trailingCommaPattern.ReplaceAllString(s, "$1")
}
