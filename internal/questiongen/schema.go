package questiongen

import "github.com/abhisek/lingoquiz/internal/llm"

// BatchSchema is the JSON schema of a drafting response.
var BatchSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "A batch of multiple-choice language proficiency questions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{
							"type":        "string",
							"description": "The question shown to the learner",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"minItems":    2,
							"maxItems":    6,
							"description": "Answer options, in display order",
						},
						"correct_index": map[string]any{
							"type":        "integer",
							"minimum":     0,
							"description": "0-based index of the single correct option",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "One sentence on why the correct option is right",
						},
					},
					"required":             []any{"text", "options", "correct_index", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
