package jsonschema

import (
	"errors"
	"strings"
	"testing"
)

const suiteLikeSchema = `{
	"type": "object",
	"required": ["subs"],
	"properties": {
		"n": {"type": "integer"},
		"subs": {"type": "object", "minProperties": 1}
	}
}`

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{name: "valid", json: `{"n": 3, "subs": {"a": "true"}}`},
		{name: "missing subs", json: `{"n": 3}`, wantErr: true},
		{name: "empty subs", json: `{"subs": {}}`, wantErr: true},
		{name: "fractional n", json: `{"n": 1.5, "subs": {"a": "x"}}`, wantErr: true},
		{name: "invalid json", json: `{"subs": `, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.json, suiteLikeSchema)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_InvalidSchema(t *testing.T) {
	err := Validate(`{}`, `{"type": 12}`)
	if err == nil || !strings.Contains(err.Error(), "invalid schema") {
		t.Errorf("Validate() with broken schema error = %v, want invalid schema", err)
	}
}

func TestSchema_ValidateCollectsErrors(t *testing.T) {
	schema, err := Compile("suite.json", suiteLikeSchema)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	err = schema.Validate([]byte(`{"n": "three", "subs": {}}`))
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Validate() error = %T %v, want ValidationErrors", err, err)
	}
	if len(verrs) < 2 {
		t.Errorf("got %d errors, want at least 2: %v", len(verrs), verrs)
	}
	if !strings.Contains(verrs.Error(), "/n") {
		t.Errorf("error %q should mention /n", verrs.Error())
	}
}
