package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var levelSchema = &Schema{
	Name: "level-pick",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"skill": map[string]any{"type": "string"},
			"level": map[string]any{"type": "string", "enum": []any{"Easy", "Medium", "Hard"}},
			"items": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":       "object",
					"properties": map[string]any{"n": map[string]any{"type": "integer", "minimum": 0}},
					"required":   []any{"n"},
				},
			},
		},
		"required": []any{"skill", "level"},
	},
}

func TestCheckSchema(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		ok    bool
	}{
		{name: "valid", reply: `{"skill":"Grammar","level":"Easy","items":[{"n":1}]}`, ok: true},
		{name: "optional field absent", reply: `{"skill":"Reading","level":"Hard"}`, ok: true},
		{name: "missing required", reply: `{"skill":"Grammar"}`},
		{name: "wrong type", reply: `{"skill":7,"level":"Easy"}`},
		{name: "outside enum", reply: `{"skill":"Grammar","level":"Expert"}`},
		{name: "nested violation", reply: `{"skill":"Grammar","level":"Easy","items":[{"n":-1}]}`},
		{name: "empty array", reply: `{"skill":"Grammar","level":"Easy","items":[]}`},
		{name: "not json", reply: `{"skill":`},
		{name: "blank", reply: "  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSchema(levelSchema, json.RawMessage(tt.reply))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var le *Error
			require.ErrorAs(t, err, &le)
			assert.Equal(t, KindInvalid, le.Kind)
			assert.Equal(t, tt.reply, string(le.Content))
		})
	}
}

func TestCheckSchema_NilSchemaAcceptsAnything(t *testing.T) {
	assert.NoError(t, checkSchema(nil, json.RawMessage("not json at all")))
}

func TestCheckSchema_BadDefinition(t *testing.T) {
	bad := &Schema{Name: "broken-def", Definition: map[string]any{"type": 12}}
	err := checkSchema(bad, json.RawMessage(`{}`))
	require.Error(t, err)
	_, ok := KindOf(err)
	assert.False(t, ok)
}

func TestCompileSchemaCaches(t *testing.T) {
	first, err := compileSchema(levelSchema)
	require.NoError(t, err)
	second, err := compileSchema(levelSchema)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestFinish(t *testing.T) {
	req := Request{Schema: levelSchema}

	resp, err := finish(req, json.RawMessage(`{"skill":"Grammar","level":"Easy"}`), Usage{OutputTokens: 3}, "m", StopEnd)
	require.NoError(t, err)
	assert.Equal(t, "m", resp.Model)

	_, err = finish(req, json.RawMessage(`{"skill":"Grammar","level":"Easy"}`), Usage{}, "m", StopMaxTokens)
	kind, _ := KindOf(err)
	assert.Equal(t, KindTruncated, kind)

	resp, err = finish(Request{}, json.RawMessage("free text"), Usage{}, "m", StopMaxTokens)
	require.NoError(t, err)
	assert.Equal(t, StopMaxTokens, resp.Stop)
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4-20250514", resolveModel("claude-sonnet", anthropicAliases))
	assert.Equal(t, "custom", resolveModel("custom", anthropicAliases))
}
