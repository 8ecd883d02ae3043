// Package reference provides the engine used when no other backend is
// configured. It resolves its options like any real engine would and
// returns a fixed placeholder payload.
package reference

import (
	"context"
	"log/slog"

	"github.com/rhuss/procunit/pkg/api"
	"github.com/rhuss/procunit/pkg/debug"
	"github.com/rhuss/procunit/pkg/engine"
)

// Name is the engine type this package registers under.
const Name = "default"

// Fallbacks used when neither the call nor the settings name a value.
const (
	DefaultLanguage = "en-US"
	DefaultResource = "default"
)

// Placeholder is the payload returned by every Process call.
var Placeholder = []byte("SAMPLE_RESULT_DATA")

var resources = []api.ResourceDescriptor{
	{Name: "default", Type: "standard", Extra: map[string]any{"language": "en-US"}},
	{Name: "resource1", Type: "enhanced", Extra: map[string]any{"language": "en-US"}},
	{Name: "resource2", Type: "standard", Extra: map[string]any{"language": "pl-PL"}},
}

var languages = []string{"en-US", "pl-PL", "de-DE", "fr-FR", "es-ES"}

// Engine is the reference engine.Engine implementation.
type Engine struct {
	settings engine.Settings
	logger   *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New creates the reference engine.
func New(settings engine.Settings, logger *slog.Logger) *Engine {
	if settings == nil {
		settings = engine.MapSettings{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("engine", Name)
	logger.Info("engine initialized")
	return &Engine{settings: settings, logger: logger}
}

// Factory adapts New to engine.Factory.
func Factory(settings engine.Settings, logger *slog.Logger) (engine.Engine, error) {
	return New(settings, logger), nil
}

// Name returns "default".
func (e *Engine) Name() string { return Name }

// Process resolves the language and resource, logs them, and returns
// the placeholder payload.
func (e *Engine) Process(ctx context.Context, text string, opts engine.Options) ([]byte, error) {
	language := engine.Resolve(opts, engine.OptionLanguage, e.settings, engine.SettingLanguage, DefaultLanguage)
	resource := engine.Resolve(opts, engine.OptionResource, e.settings, engine.SettingResource, DefaultResource)

	e.logger.InfoContext(ctx, "processing text",
		"language", language,
		"resource", resource,
		"text_length", len(text),
	)
	debug.Log("engine", "reference input", "text", text)

	return append([]byte(nil), Placeholder...), nil
}

// ListResources returns the static resource catalog.
func (e *Engine) ListResources(_ context.Context) ([]api.ResourceDescriptor, error) {
	out := make([]api.ResourceDescriptor, len(resources))
	for i, r := range resources {
		out[i] = api.ResourceDescriptor{Name: r.Name, Type: r.Type, Extra: map[string]any{"language": r.Language()}}
	}
	return out, nil
}

// ListLanguages returns the static language list.
func (e *Engine) ListLanguages(_ context.Context) ([]string, error) {
	return append([]string(nil), languages...), nil
}

// Close is a no-op.
func (e *Engine) Close() error { return nil }
