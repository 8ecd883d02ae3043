package transport

import (
	"context"

	"github.com/google/uuid"

	"github.com/rhuss/procunit/pkg/api"
)

// RequestID returns middleware that assigns a request ID to each run.
// An ID already present in the context (set by a transport from the
// X-Request-ID header) is kept; otherwise a random UUID is generated.
func RequestID() Middleware {
	return func(next Runner) Runner {
		return RunnerFunc(func(ctx context.Context, req api.RunRequest) (*api.RunResponse, error) {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, uuid.NewString())
			}
			return next.Run(ctx, req)
		})
	}
}
