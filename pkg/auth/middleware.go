package auth

import (
	"log/slog"
	"net/http"

	"github.com/rhuss/procunit/pkg/api"
	"github.com/rhuss/procunit/pkg/debug"
	"github.com/rhuss/procunit/pkg/observability"
	"github.com/rhuss/procunit/pkg/transport"
)

// Rejection reasons recorded in procunit_auth_rejected_total.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonRateLimited     = "rate_limited"
	ReasonInternal        = "internal"
)

// DefaultBypassEndpoints lists endpoints that skip authentication.
var DefaultBypassEndpoints = []string{"/healthz", "/readyz", "/metrics"}

// Middleware creates HTTP middleware from an AuthChain and an optional
// RateLimiter. Requests to a bypass path skip both. Rejections are written
// as JSON API errors.
func Middleware(chain *AuthChain, limiter RateLimiter, bypassEndpoints []string, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "auth")

	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			result := chain.Authenticate(r.Context(), r)

			if result.Decision != Yes || result.Identity == nil {
				logger.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", result.Err,
				)
				observability.AuthRejectedTotal.WithLabelValues(ReasonUnauthenticated).Inc()
				transport.WriteAPIError(w, api.NewUnauthorizedError("authentication required"))
				return
			}

			if result.Identity.Subject == "" {
				logger.Error("authenticator returned identity with empty subject")
				observability.AuthRejectedTotal.WithLabelValues(ReasonInternal).Inc()
				transport.WriteAPIError(w, api.NewServerError("internal authentication error"))
				return
			}

			debug.Log("auth", "authentication succeeded",
				"subject", result.Identity.Subject,
				"method", result.Identity.Method,
				"path", r.URL.Path,
			)

			if limiter != nil {
				if err := limiter.Allow(r.Context(), result.Identity); err != nil {
					logger.Warn("rate limit exceeded", "subject", result.Identity.Subject)
					observability.AuthRejectedTotal.WithLabelValues(ReasonRateLimited).Inc()
					transport.WriteAPIError(w, api.NewTooManyRequestsError("rate limit exceeded"))
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), result.Identity)))
		})
	}
}
