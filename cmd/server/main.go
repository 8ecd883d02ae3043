// Command server runs the procunit processing service.
//
// Configuration is read from a YAML file (-config, PROCUNIT_CONFIG,
// ./config.yaml or /etc/procunit/config.yaml) with environment overrides:
//
//	PROCESS_ENGINE       - Engine name: default, echo, remote (default: default)
//	PROCESS_LANGUAGE     - Fallback language for the engine
//	PROCESS_RESOURCE     - Fallback resource for the engine
//	PROCESS_BACKEND_URL  - Remote engine URL (required for engine=remote)
//	PROCESS_OUTPUT_ROOT  - Directory output_dir is confined to (default: working directory)
//	PROCUNIT_PORT        - Listen port (default: 8080)
//	PROCUNIT_STORAGE     - Result cache: memory, sqlite, postgres (default: memory)
//	PROCUNIT_AUTH_TYPE   - Authentication: none, apikey, jwt (default: none)
//	PROCUNIT_MCP_ENABLED - Serve MCP tools on /mcp (default: false)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/procunit/pkg/auth"
	"github.com/rhuss/procunit/pkg/auth/apikey"
	"github.com/rhuss/procunit/pkg/auth/jwt"
	"github.com/rhuss/procunit/pkg/config"
	"github.com/rhuss/procunit/pkg/debug"
	"github.com/rhuss/procunit/pkg/process"
	"github.com/rhuss/procunit/pkg/transport"
	transporthttp "github.com/rhuss/procunit/pkg/transport/http"
	transportmcp "github.com/rhuss/procunit/pkg/transport/mcp"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logCloser := debug.Init(debug.Options{
		Categories: cfg.Logging.Debug,
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxMB,
	})
	defer logCloser.Close()
	logger := slog.Default()

	cache, err := process.OpenCache(context.Background(), cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("opening result cache: %w", err)
	}
	logger.Info("result cache ready", "type", cfg.Storage.Type)

	proc, err := process.New(*cfg, process.WithCache(cache), process.WithLogger(logger))
	if err != nil {
		cache.Close()
		return fmt.Errorf("creating process: %w", err)
	}
	defer proc.Close()

	srv, err := newServer(cfg, proc, logger)
	if err != nil {
		return err
	}

	logger.Info("procunit starting",
		"port", cfg.Server.Port,
		"engine", proc.EngineName(),
		"storage", cfg.Storage.Type,
		"auth", cfg.Auth.Type,
		"mcp", cfg.MCP.Enabled,
	)
	return srv.ListenAndServe()
}

// newServer assembles the HTTP server: API routes, metrics exposition,
// the optional MCP endpoint and authentication.
func newServer(cfg *config.Config, svc transport.Service, logger *slog.Logger) (*transporthttp.Server, error) {
	opts := []transporthttp.ServerOption{
		transporthttp.WithAddr(":" + strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(logger),
		transporthttp.WithMetrics(cfg.Observability.Metrics.Enabled),
		transporthttp.WithOutputRoot(cfg.Process.OutputRoot),
	}

	bypass := []string{"/healthz", "/readyz"}
	if cfg.Observability.Metrics.Enabled {
		opts = append(opts, transporthttp.WithHandler("GET "+cfg.Observability.Metrics.Path, promhttp.Handler()))
		bypass = append(bypass, cfg.Observability.Metrics.Path)
	}

	if cfg.MCP.Enabled {
		mcpServer := transportmcp.NewServer(svc, cfg.Process.Version, logger,
			transport.Recovery(logger),
			transport.RequestID(),
			transport.Logging(logger),
			transport.OutputRoot(cfg.Process.OutputRoot),
		)
		opts = append(opts, transporthttp.WithHandler(cfg.MCP.Path, mcpServer.Handler()))
	}

	chain, err := buildAuthChain(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("configuring auth: %w", err)
	}
	var limiter auth.RateLimiter
	if cfg.Auth.RateLimitRPM > 0 {
		limiter = auth.NewInProcessLimiter(cfg.Auth.RateLimitRPM)
	}
	if cfg.Auth.Type != "none" || limiter != nil {
		opts = append(opts, transporthttp.WithHTTPMiddleware(auth.Middleware(chain, limiter, bypass, logger)))
	}

	return transporthttp.NewServer(svc, opts...), nil
}

// buildAuthChain maps the auth config section to an authenticator chain.
func buildAuthChain(cfg config.AuthConfig) (*auth.AuthChain, error) {
	switch cfg.Type {
	case "", "none":
		return &auth.AuthChain{DefaultDecision: auth.Yes}, nil
	case "apikey":
		entries := make([]apikey.Entry, 0, len(cfg.APIKeys))
		for _, k := range cfg.APIKeys {
			entries = append(entries, apikey.Entry{Key: k.Key, Subject: k.Subject})
		}
		a := apikey.New(entries)
		if a.Len() == 0 {
			return nil, fmt.Errorf("no usable API keys configured")
		}
		return &auth.AuthChain{Authenticators: []auth.Authenticator{a}, DefaultDecision: auth.No}, nil
	case "jwt":
		a, err := jwt.New(jwt.Config{
			Secret:   []byte(cfg.JWT.Secret),
			Issuer:   cfg.JWT.Issuer,
			Audience: cfg.JWT.Audience,
		})
		if err != nil {
			return nil, err
		}
		return &auth.AuthChain{Authenticators: []auth.Authenticator{a}, DefaultDecision: auth.No}, nil
	default:
		return nil, fmt.Errorf("unknown auth type %q", cfg.Type)
	}
}
