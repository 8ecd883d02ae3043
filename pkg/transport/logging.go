package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/rhuss/procunit/pkg/api"
)

// Logging returns middleware that emits one structured log entry per run
// with the request ID, output format, input length and duration.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Runner) Runner {
		return RunnerFunc(func(ctx context.Context, req api.RunRequest) (*api.RunResponse, error) {
			start := time.Now()

			resp, err := next.Run(ctx, req)

			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.String("format", req.Format()),
				slog.Int("text_length", len(req.Text)),
				slog.Bool("save_to_file", req.SaveToFile),
				slog.Duration("duration", time.Since(start)),
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				level := slog.LevelError
				if api.IsValidationError(err) {
					level = slog.LevelWarn
				}
				logger.LogAttrs(ctx, level, "run failed", attrs...)
			} else {
				attrs = append(attrs, slog.String("result_id", resp.ResultID))
				logger.LogAttrs(ctx, slog.LevelInfo, "run completed", attrs...)
			}

			return resp, err
		})
	}
}
