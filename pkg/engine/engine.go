package engine

import (
	"context"

	"github.com/rhuss/procunit/pkg/api"
)

// Recognized option keys.
const (
	OptionLanguage = "language"
	OptionResource = "resource"
)

// Setting keys read from the engine-level configuration view.
const (
	SettingEngine     = "PROCESS_ENGINE"
	SettingLanguage   = "PROCESS_LANGUAGE"
	SettingResource   = "PROCESS_RESOURCE"
	SettingBackendURL = "PROCESS_BACKEND_URL"
	SettingAPIKey     = "PROCESS_API_KEY"
	SettingTimeout    = "PROCESS_TIMEOUT"
)

// Options holds call-level engine options. Keys not recognized by an
// engine are ignored.
type Options map[string]any

// Engine abstracts a text processing backend.
//
// Implementations must be safe for concurrent use by multiple goroutines.
// Every call may block; callers pass a context to bound it.
type Engine interface {
	// Name returns the engine identifier (e.g., "default", "remote").
	Name() string

	// Process transforms text into bytes. The orchestrator never passes
	// empty text.
	Process(ctx context.Context, text string, opts Options) ([]byte, error)

	// ListResources returns the catalog of transformation resources.
	// A healthy engine returns at least one entry.
	ListResources(ctx context.Context) ([]api.ResourceDescriptor, error)

	// ListLanguages returns the supported language codes (e.g. "en-US"),
	// without duplicates.
	ListLanguages(ctx context.Context) ([]string, error)

	// Close releases engine resources.
	Close() error
}

// Settings is the engine-level key-value configuration view.
type Settings interface {
	Lookup(key string) (string, bool)
}

// MapSettings adapts a plain map to Settings.
type MapSettings map[string]string

// Lookup implements Settings.
func (m MapSettings) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}
