package modelout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_StrictJSON(t *testing.T) {
	v, err := Parse(`{"questions":[{"type":"essay"}]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"questions": []any{map[string]any{"type": "essay"}},
	}, v)
}

func TestParse_FencedBlockWithCommentary(t *testing.T) {
	v, err := Parse("Sure! ```json\n{\"questions\":[]}\n```")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"questions": []any{}}, v)
}

func TestParse_FenceWithTrailingChatter(t *testing.T) {
	raw := "Here you go:\n```json\n{\"questions\":[{\"a\":1}]}\n```\nLet me know if you need more."
	v, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"questions": []any{map[string]any{"a": float64(1)}}}, v)
}

func TestParse_UntaggedFenceIsStripped(t *testing.T) {
	v, err := Parse("```\n{\"questions\":[]}\n```")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"questions": []any{}}, v)
}

func TestParse_UnclosedJSONFence(t *testing.T) {
	v, err := Parse("```json\n{\"questions\":[]}")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"questions": []any{}}, v)
}

func TestParse_TrailingCommaRepair(t *testing.T) {
	v, err := Parse(`{"questions":[{"a":1},]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"questions": []any{map[string]any{"a": float64(1)}}}, v)
}

func TestParse_TrailingCommaBeforeBraceWithWhitespace(t *testing.T) {
	raw := "{\n  \"questions\": [\n    {\"a\": 1, \"b\": 2,\n    },\n  ],\n}"
	v, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"questions": []any{map[string]any{"a": float64(1), "b": float64(2)}},
	}, v)
}

func TestParse_FencedAndTrailingComma(t *testing.T) {
	v, err := Parse("```json\n{\"questions\":[1,2,],}\n```")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"questions": []any{float64(1), float64(2)}}, v)
}

func TestParse_Unrecoverable(t *testing.T) {
	v, err := Parse("not json at all")
	require.Error(t, err)
	assert.Nil(t, v)

	var fmtErr *ErrUnrecoverableFormat
	require.True(t, errors.As(err, &fmtErr))
	assert.Equal(t, "not json at all", fmtErr.Content)
	assert.NotNil(t, fmtErr.Unwrap())
}

func TestParse_CommentsAreNotRepaired(t *testing.T) {
	_, err := Parse("{\"questions\": [] // none yet\n}")
	var fmtErr *ErrUnrecoverableFormat
	require.ErrorAs(t, err, &fmtErr)
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse("   ")
	var fmtErr *ErrUnrecoverableFormat
	require.ErrorAs(t, err, &fmtErr)
}

func TestRemoveTrailingCommas(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`[1,2,]`, `[1,2]`},
		{`{"a":1 , }`, `{"a":1 }`},
		{`[1,2]`, `[1,2]`},
		{"[1,\n\t]", "[1]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RemoveTrailingCommas(tt.in), tt.in)
	}
}
