package hint

import "github.com/abhisek/quizplay/internal/llm"

// Schema is the structured output requested for a hint.
var Schema = &llm.Schema{
	Name:        "quiz-hint",
	Description: "A single-sentence hint that nudges without revealing the answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hint": map[string]any{
				"type":        "string",
				"description": "One sentence, at most 30 words",
				"minLength":   1,
			},
		},
		"required":             []any{"hint"},
		"additionalProperties": false,
	},
}
