package api

import (
	"testing"
)

func TestParametersSchemaShape(t *testing.T) {
	s := ParametersSchema()
	if s.Type != "object" {
		t.Errorf("Type = %q, want object", s.Type)
	}
	if len(s.Required) != 1 || s.Required[0] != "text" {
		t.Errorf("Required = %v, want [text]", s.Required)
	}
	for _, p := range []string{"text", "config", "output_format", "save_to_file", "output_dir"} {
		if _, ok := s.Properties[p]; !ok {
			t.Errorf("missing property %q", p)
		}
	}
	if len(s.Properties["output_format"].Enum) != 3 {
		t.Errorf("output_format enum = %v", s.Properties["output_format"].Enum)
	}
}

func TestValidateParameters(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]any
		wantErr bool
	}{
		{"minimal", map[string]any{"text": "hello"}, false},
		{"full", map[string]any{
			"text":          "hello",
			"config":        map[string]any{"language": "pl-PL"},
			"output_format": "mp3",
			"save_to_file":  true,
			"output_dir":    "/tmp/out",
		}, false},
		{"missing text", map[string]any{"output_format": "wav"}, true},
		{"wrong text type", map[string]any{"text": 42.0}, true},
		{"unknown format", map[string]any{"text": "hi", "output_format": "flac"}, true},
		{"unknown field", map[string]any{"text": "hi", "voice": "x"}, true},
		{"config not object", map[string]any{"text": "hi", "config": "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameters(tt.params)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateParameters() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsValidationError(err) {
				t.Errorf("error %v is not a validation error", err)
			}
		})
	}
}

func TestDecodeRunRequest(t *testing.T) {
	req, err := DecodeRunRequest([]byte(`{"text":"hello","output_format":"json","config":{"resource":"resource1"}}`))
	if err != nil {
		t.Fatalf("DecodeRunRequest: %v", err)
	}
	if req.Text != "hello" || req.Format() != "json" {
		t.Errorf("got %+v", req)
	}
	if req.Config["resource"] != "resource1" {
		t.Errorf("config = %v", req.Config)
	}

	for _, body := range []string{`not json`, `null`, `{"output_dir":"/tmp"}`} {
		if _, err := DecodeRunRequest([]byte(body)); !IsValidationError(err) {
			t.Errorf("DecodeRunRequest(%s) error = %v, want validation error", body, err)
		}
	}
}
