package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Factory creates an Engine from the engine-level settings.
type Factory func(settings Settings, logger *slog.Logger) (Engine, error)

// Registry maps engine type names to factories.
//
// All methods are safe for concurrent access.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name. Registering the same name twice
// returns an error.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return fmt.Errorf("engine: name must not be empty")
	}
	if f == nil {
		return fmt.Errorf("engine: factory for %q must not be nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("engine: %q already registered", name)
	}
	r.factories[name] = f
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// New builds the engine registered under name.
func (r *Registry) New(name string, settings Settings, logger *slog.Logger) (Engine, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("engine: unknown engine type %q (available: %v)", name, r.Names())
	}
	if logger == nil {
		logger = slog.Default()
	}
	e, err := f(settings, logger)
	if err != nil {
		return nil, fmt.Errorf("engine: creating %q: %w", name, err)
	}
	return e, nil
}

// Names returns the registered engine types in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
