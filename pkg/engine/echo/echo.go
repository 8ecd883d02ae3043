// Package echo provides an engine that returns the input text unchanged.
// It is useful for exercising the processing pipeline end to end with
// output that depends on the input.
package echo

import (
	"context"
	"log/slog"

	"github.com/rhuss/procunit/pkg/api"
	"github.com/rhuss/procunit/pkg/engine"
)

// Name is the engine type this package registers under.
const Name = "echo"

// Engine returns the UTF-8 bytes of the input text.
type Engine struct {
	language string
	logger   *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New creates an echo engine. Its single language is PROCESS_LANGUAGE,
// or "en-US".
func New(settings engine.Settings, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		language: engine.Resolve(nil, "", settings, engine.SettingLanguage, "en-US"),
		logger:   logger.With("engine", Name),
	}
}

// Factory adapts New to engine.Factory.
func Factory(settings engine.Settings, logger *slog.Logger) (engine.Engine, error) {
	return New(settings, logger), nil
}

// Name returns "echo".
func (e *Engine) Name() string { return Name }

// Process returns the text bytes. Options are ignored.
func (e *Engine) Process(ctx context.Context, text string, opts engine.Options) ([]byte, error) {
	e.logger.DebugContext(ctx, "echoing text", "text_length", len(text))
	return []byte(text), nil
}

// ListResources returns the single passthrough resource.
func (e *Engine) ListResources(_ context.Context) ([]api.ResourceDescriptor, error) {
	return []api.ResourceDescriptor{
		{Name: "passthrough", Type: "identity", Extra: map[string]any{"language": e.language}},
	}, nil
}

// ListLanguages returns the configured language.
func (e *Engine) ListLanguages(_ context.Context) ([]string, error) {
	return []string{e.language}, nil
}

// Close is a no-op.
func (e *Engine) Close() error { return nil }
