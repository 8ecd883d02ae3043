package transport

import (
	"context"
	"path/filepath"

	"github.com/rhuss/procunit/pkg/api"
)

// OutputRoot returns middleware that confines output_dir to root. The
// requested directory must be a local path (relative, no ".." escaping
// it) and is rewritten to root/output_dir. Runs without output_dir pass
// unchanged. An empty root means the working directory.
func OutputRoot(root string) Middleware {
	return func(next Runner) Runner {
		return RunnerFunc(func(ctx context.Context, req api.RunRequest) (*api.RunResponse, error) {
			if req.OutputDir == "" {
				return next.Run(ctx, req)
			}
			if !filepath.IsLocal(req.OutputDir) {
				return nil, api.NewValidationError("output_dir",
					"output_dir must be a relative path inside the output root")
			}
			req.OutputDir = filepath.Join(root, req.OutputDir)
			return next.Run(ctx, req)
		})
	}
}
