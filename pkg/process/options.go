package process

import (
	"log/slog"

	"github.com/rhuss/procunit/pkg/engine"
	"github.com/rhuss/procunit/pkg/result"
	"github.com/rhuss/procunit/pkg/storage"
)

// Option configures a Process.
type Option func(*Process)

// WithRegistry sets the registry the engine is created from. Defaults to
// the built-in registry.
func WithRegistry(r *engine.Registry) Option {
	return func(p *Process) { p.registry = r }
}

// WithEngine uses the given engine instead of creating one from the
// registry. process.engine is ignored.
func WithEngine(e engine.Engine) Option {
	return func(p *Process) { p.engine = e }
}

// WithCache sets the result cache. Defaults to an in-memory cache sized
// by storage.max_size.
func WithCache(c storage.ResultCache) Option {
	return func(p *Process) { p.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Process) { p.logger = l }
}

// WithTempFile sets the function used to save results when no output
// directory is given. Defaults to result.CreateTempFile.
func WithTempFile(f result.TempFileFunc) Option {
	return func(p *Process) { p.tempFile = f }
}
