package api

import (
	"encoding/json"
	"maps"
)

// Defaults applied to a RunRequest when the caller omits a field.
const (
	DefaultOutputFormat = "wav"
)

// Recognized output formats. The orchestrator accepts any format tag;
// this list backs the caller-facing schema only.
var OutputFormats = []string{"wav", "mp3", "json"}

// RunRequest holds the parameters of a single run.
type RunRequest struct {
	// Text is the input to transform. Required, must be non-empty.
	Text string `json:"text"`

	// Config holds engine options forwarded verbatim to the engine
	// (recognized keys include "language" and "resource").
	Config map[string]any `json:"config,omitempty"`

	// OutputFormat tags the produced bytes. Defaults to "wav".
	OutputFormat string `json:"output_format,omitempty"`

	// SaveToFile persists the result to disk when true.
	SaveToFile bool `json:"save_to_file,omitempty"`

	// OutputDir is the target directory when SaveToFile is set. When
	// empty, a temporary file is used.
	OutputDir string `json:"output_dir,omitempty"`
}

// Format returns the requested output format, applying the default.
func (r *RunRequest) Format() string {
	if r.OutputFormat == "" {
		return DefaultOutputFormat
	}
	return r.OutputFormat
}

// RunResponse is returned by a successful run.
type RunResponse struct {
	ResultID string `json:"result_id"`
	Format   string `json:"format"`
	Base64   string `json:"base64"`
	FilePath string `json:"file_path,omitempty"`
}

// CacheEntry is the denormalized snapshot of a result kept by the result
// cache. It owns its own copy of the data and metadata.
type CacheEntry struct {
	ID       string         `json:"id"`
	Data     []byte         `json:"data"`
	Format   string         `json:"format"`
	Metadata map[string]any `json:"metadata"`
}

// Clone returns a deep copy of the entry's data and a shallow copy of
// its metadata map.
func (e *CacheEntry) Clone() *CacheEntry {
	if e == nil {
		return nil
	}
	c := &CacheEntry{
		ID:       e.ID,
		Data:     append([]byte(nil), e.Data...),
		Format:   e.Format,
		Metadata: maps.Clone(e.Metadata),
	}
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	return c
}

// ResourceDescriptor describes one transformation resource an engine can
// use. Name and Type are always present; engines may attach extra keys
// (e.g. "language") which are flattened into the JSON object.
type ResourceDescriptor struct {
	Name  string
	Type  string
	Extra map[string]any
}

// Language returns the "language" extra field, or empty string.
func (d ResourceDescriptor) Language() string {
	s, _ := d.Extra["language"].(string)
	return s
}

// MarshalJSON flattens Extra next to the name and type keys.
func (d ResourceDescriptor) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(d.Extra)+2)
	for k, v := range d.Extra {
		m[k] = v
	}
	m["name"] = d.Name
	m["type"] = d.Type
	return json.Marshal(m)
}

// UnmarshalJSON splits a flat JSON object into name, type, and extras.
func (d *ResourceDescriptor) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	d.Name, _ = m["name"].(string)
	d.Type, _ = m["type"].(string)
	delete(m, "name")
	delete(m, "type")
	d.Extra = nil
	if len(m) > 0 {
		d.Extra = m
	}
	return nil
}

// StatusRunning is the only status a constructed orchestrator reports.
const StatusRunning = "running"

// Status is the liveness and introspection descriptor.
type Status struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	EngineType     string `json:"engine_type"`
	ResourcesCount int    `json:"resources_count"`
	LanguagesCount int    `json:"languages_count"`
}
