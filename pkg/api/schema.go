package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

var (
	resolvedOnce   sync.Once
	resolvedSchema *jsonschema.Resolved
	resolveErr     error
)

// ParametersSchema returns the JSON Schema describing run parameters.
// A fresh value is returned on every call so callers may modify it.
func ParametersSchema() *jsonschema.Schema {
	formats := make([]any, len(OutputFormats))
	for i, f := range OutputFormats {
		formats[i] = f
	}
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"text": {
				Type:        "string",
				Description: "Text to process",
			},
			"config": {
				Type:        "object",
				Description: "Engine options (language, resource, ...)",
			},
			"output_format": {
				Type:        "string",
				Description: "Output format (wav, mp3, json)",
				Enum:        formats,
			},
			"save_to_file": {
				Type:        "boolean",
				Description: "Whether to save the result to a file",
			},
			"output_dir": {
				Type:        "string",
				Description: "Directory the result file is written to",
			},
		},
		Required:             []string{"text"},
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
}

func resolved() (*jsonschema.Resolved, error) {
	resolvedOnce.Do(func() {
		resolvedSchema, resolveErr = ParametersSchema().Resolve(nil)
	})
	return resolvedSchema, resolveErr
}

// ValidateParameters checks a decoded JSON object against ParametersSchema.
// The returned error is an invalid_request APIError.
func ValidateParameters(params map[string]any) error {
	rs, err := resolved()
	if err != nil {
		return NewServerError(fmt.Sprintf("resolving parameters schema: %s", err))
	}
	if err := rs.Validate(params); err != nil {
		return NewValidationError("parameters", err.Error())
	}
	return nil
}

// DecodeRunRequest validates a raw JSON body against the parameters
// schema and decodes it into a RunRequest.
func DecodeRunRequest(data []byte) (*RunRequest, error) {
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, NewValidationError("body", "invalid JSON: "+err.Error())
	}
	if params == nil {
		return nil, NewValidationError("body", "request body must be a JSON object")
	}
	if err := ValidateParameters(params); err != nil {
		return nil, err
	}
	var req RunRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return &req, nil
}
