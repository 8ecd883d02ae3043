package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/rhuss/procunit/pkg/api"
	"github.com/rhuss/procunit/pkg/config"
	"github.com/rhuss/procunit/pkg/debug"
	"github.com/rhuss/procunit/pkg/engine"
	"github.com/rhuss/procunit/pkg/engine/builtin"
	"github.com/rhuss/procunit/pkg/observability"
	"github.com/rhuss/procunit/pkg/result"
	"github.com/rhuss/procunit/pkg/storage"
	"github.com/rhuss/procunit/pkg/storage/memory"
)

// Process is the orchestrator. It holds an immutable configuration
// snapshot, one engine and one result cache.
type Process struct {
	cfg      config.Config
	registry *engine.Registry
	engine   engine.Engine
	cache    storage.ResultCache
	logger   *slog.Logger
	tempFile result.TempFileFunc
}

// New creates a Process. The engine named by process.engine is created
// from the registry unless WithEngine is given; an unknown engine name is
// an error.
func New(cfg config.Config, opts ...Option) (*Process, error) {
	p := &Process{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With("component", "process")
	if p.tempFile == nil {
		p.tempFile = result.CreateTempFile
	}
	if p.cfg.Process.Version == "" {
		p.cfg.Process.Version = config.Defaults().Process.Version
	}

	if p.engine == nil {
		if p.registry == nil {
			p.registry = builtin.Registry()
		}
		name := p.cfg.Process.Engine
		if name == "" {
			name = config.Defaults().Process.Engine
		}
		p.logger.Info("creating engine", "engine", name)
		e, err := p.registry.New(name, p.cfg.Settings(), p.logger)
		if err != nil {
			return nil, fmt.Errorf("creating engine: %w", err)
		}
		p.engine = e
	}

	if p.cache == nil {
		p.cache = memory.New(p.cfg.Storage.MaxSize)
	}

	return p, nil
}

// EngineName returns the name of the active engine.
func (p *Process) EngineName() string {
	return p.engine.Name()
}

// Run executes one request through the pipeline.
//
// Empty text, and a format that cannot be a file extension when saving,
// fail with an invalid_request error before the engine is called. Engine
// errors are returned unchanged. A result is cached only after the engine
// call and the optional save both succeeded.
func (p *Process) Run(ctx context.Context, req api.RunRequest) (*api.RunResponse, error) {
	format := req.Format()
	engineName := p.engine.Name()
	label := formatLabel(format)

	if req.Text == "" {
		p.logger.Warn("rejecting run without text")
		observability.RunsTotal.WithLabelValues(engineName, label, observability.RunStatusInvalid).Inc()
		return nil, api.NewValidationError("text", "text is required")
	}
	if req.SaveToFile {
		if err := result.ValidateFormat(format); err != nil {
			p.logger.Warn("rejecting run with unusable format", "format", format)
			observability.RunsTotal.WithLabelValues(engineName, label, observability.RunStatusInvalid).Inc()
			return nil, api.NewValidationError("output_format", err.Error())
		}
	}

	p.logger.Info("running process",
		"engine", engineName,
		"format", format,
		"text", debug.Truncate(req.Text, 64),
	)

	start := time.Now()
	data, err := p.engine.Process(ctx, req.Text, engine.Options(req.Config))
	observability.EngineLatency.WithLabelValues(engineName, "process").Observe(time.Since(start).Seconds())
	if err != nil {
		p.logger.Error("engine failed", "engine", engineName, "error", err)
		observability.RunsTotal.WithLabelValues(engineName, label, observability.RunStatusEngineError).Inc()
		return nil, err
	}
	observability.ResultBytesTotal.WithLabelValues(engineName).Add(float64(len(data)))

	pkg := result.New(data, format, map[string]any{
		"engine":      engineName,
		"text_length": len(req.Text),
	})
	debug.Log("process", "packaged result", "result", pkg.String())

	if req.SaveToFile {
		path, err := pkg.Save(req.OutputDir, p.tempFile)
		if err != nil {
			p.logger.Error("saving result failed", "result_id", pkg.ID(), "error", err)
			observability.RunsTotal.WithLabelValues(engineName, label, observability.RunStatusIOError).Inc()
			return nil, fmt.Errorf("saving result: %w", err)
		}
		p.logger.Info("saved result", "result_id", pkg.ID(), "path", path)
	}

	if err := p.cache.Put(ctx, pkg.CacheEntry()); err != nil {
		p.logger.Error("caching result failed", "result_id", pkg.ID(), "error", err)
		observability.RunsTotal.WithLabelValues(engineName, label, observability.RunStatusCacheError).Inc()
		return nil, fmt.Errorf("caching result: %w", err)
	}
	if n, err := p.cache.Len(ctx); err == nil {
		observability.CachedResults.Set(float64(n))
	}
	observability.RunsTotal.WithLabelValues(engineName, label, observability.RunStatusOK).Inc()

	return &api.RunResponse{
		ResultID: pkg.ID(),
		Format:   pkg.Format(),
		Base64:   pkg.Base64(),
		FilePath: pkg.FilePath(),
	}, nil
}

// formatLabel bounds the format label of RunsTotal to the known output
// formats.
func formatLabel(format string) string {
	if slices.Contains(api.OutputFormats, format) {
		return format
	}
	return observability.FormatOther
}

// ListResources returns the engine's resource catalog.
func (p *Process) ListResources(ctx context.Context) ([]api.ResourceDescriptor, error) {
	start := time.Now()
	defer func() {
		observability.EngineLatency.WithLabelValues(p.engine.Name(), "list_resources").Observe(time.Since(start).Seconds())
	}()
	return p.engine.ListResources(ctx)
}

// ListLanguages returns the engine's supported language codes.
func (p *Process) ListLanguages(ctx context.Context) ([]string, error) {
	start := time.Now()
	defer func() {
		observability.EngineLatency.WithLabelValues(p.engine.Name(), "list_languages").Observe(time.Since(start).Seconds())
	}()
	return p.engine.ListLanguages(ctx)
}

// GetResourceByID looks up a cached result. The boolean is false when no
// result with that ID exists. Cache backend failures are logged and
// reported as not found.
func (p *Process) GetResourceByID(ctx context.Context, id string) (*api.CacheEntry, bool) {
	entry, err := p.cache.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			p.logger.Warn("result lookup failed", "result_id", id, "error", err)
		}
		return nil, false
	}
	return entry, true
}

// GetStatus reports liveness together with the engine's catalog sizes.
// Enumeration errors are returned.
func (p *Process) GetStatus(ctx context.Context) (*api.Status, error) {
	resources, err := p.ListResources(ctx)
	if err != nil {
		return nil, err
	}
	languages, err := p.ListLanguages(ctx)
	if err != nil {
		return nil, err
	}
	return &api.Status{
		Status:         api.StatusRunning,
		Version:        p.cfg.Process.Version,
		EngineType:     p.engine.Name(),
		ResourcesCount: len(resources),
		LanguagesCount: len(languages),
	}, nil
}

// ParametersSchema returns the JSON Schema of Run parameters.
func (p *Process) ParametersSchema() *jsonschema.Schema {
	return api.ParametersSchema()
}

// Ready reports whether the result cache is reachable.
func (p *Process) Ready(ctx context.Context) error {
	return p.cache.HealthCheck(ctx)
}

// Close releases the engine and the result cache.
func (p *Process) Close() error {
	return errors.Join(p.engine.Close(), p.cache.Close())
}
