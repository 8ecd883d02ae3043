package transport

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/rhuss/procunit/pkg/api"
)

// Runner executes a single run.
type Runner interface {
	Run(ctx context.Context, req api.RunRequest) (*api.RunResponse, error)
}

// RunnerFunc is an adapter that allows using an ordinary function as a
// Runner.
type RunnerFunc func(ctx context.Context, req api.RunRequest) (*api.RunResponse, error)

// Run calls f(ctx, req).
func (f RunnerFunc) Run(ctx context.Context, req api.RunRequest) (*api.RunResponse, error) {
	return f(ctx, req)
}

// Service is the operation surface exposed by the transports.
type Service interface {
	Runner

	// ListResources returns the engine's resource catalog.
	ListResources(ctx context.Context) ([]api.ResourceDescriptor, error)

	// ListLanguages returns the engine's supported language codes.
	ListLanguages(ctx context.Context) ([]string, error)

	// GetResourceByID looks up a cached result. The boolean is false
	// when no result with that ID exists.
	GetResourceByID(ctx context.Context, id string) (*api.CacheEntry, bool)

	// GetStatus reports liveness and catalog sizes.
	GetStatus(ctx context.Context) (*api.Status, error)

	// ParametersSchema returns the JSON Schema of run parameters.
	ParametersSchema() *jsonschema.Schema

	// Ready reports whether the service can accept runs.
	Ready(ctx context.Context) error
}
