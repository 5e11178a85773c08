package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValidateResponse(t *testing.T) {
	schema := &Schema{
		Name: "validate-test",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"hint":  map[string]any{"type": "string", "minLength": 1},
				"level": map[string]any{"type": "string", "enum": []string{"low", "high"}},
			},
			"required": []string{"hint"},
		},
	}

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"hint":"look closer","level":"low"}`, false},
		{"optional omitted", `{"hint":"look closer"}`, false},
		{"missing required", `{"level":"low"}`, true},
		{"wrong type", `{"hint":3}`, true},
		{"empty string", `{"hint":""}`, true},
		{"bad enum", `{"hint":"x","level":"mid"}`, true},
		{"malformed", `{not json}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(schema, json.RawMessage(tt.raw))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var inv *ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
			}
			if string(inv.Content) != tt.raw {
				t.Errorf("content = %s, want %s", inv.Content, tt.raw)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`anything`)); err != nil {
		t.Fatalf("nil schema should accept anything, got %v", err)
	}
}

func TestValidateResponse_BadSchema(t *testing.T) {
	bad := &Schema{Name: "bad-schema", Definition: map[string]any{"type": 42}}
	err := validateResponse(bad, json.RawMessage(`{}`))
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}
