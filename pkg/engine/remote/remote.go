package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rhuss/procunit/pkg/api"
	"github.com/rhuss/procunit/pkg/debug"
	"github.com/rhuss/procunit/pkg/engine"
)

// Name is the engine type this package registers under.
const Name = "remote"

// maxResultSize bounds the bytes read from a process response.
const maxResultSize = 64 << 20

// ProcessRequest is the body sent to POST /v1/process.
type ProcessRequest struct {
	Text     string         `json:"text"`
	Language string         `json:"language"`
	Resource string         `json:"resource"`
	Options  map[string]any `json:"options,omitempty"`
}

// ResourcesResponse is the body returned by GET /v1/resources.
type ResourcesResponse struct {
	Data []api.ResourceDescriptor `json:"data"`
}

// LanguagesResponse is the body returned by GET /v1/languages.
type LanguagesResponse struct {
	Data []string `json:"data"`
}

// Engine implements engine.Engine against an HTTP engine service.
type Engine struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New creates a remote engine. Returns an error if BaseURL is empty.
func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote: BaseURL is required (set %s)", engine.SettingBackendURL)
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With("engine", Name),
	}, nil
}

// Factory adapts New to engine.Factory.
func Factory(settings engine.Settings, logger *slog.Logger) (engine.Engine, error) {
	cfg, err := ConfigFromSettings(settings)
	if err != nil {
		return nil, err
	}
	return New(cfg, logger)
}

// Name returns "remote".
func (e *Engine) Name() string { return Name }

// Process sends the text to the engine service and returns the raw body.
func (e *Engine) Process(ctx context.Context, text string, opts engine.Options) ([]byte, error) {
	preq := ProcessRequest{
		Text:     text,
		Language: engine.Resolve(opts, engine.OptionLanguage, nil, "", e.cfg.Language),
		Resource: engine.Resolve(opts, engine.OptionResource, nil, "", e.cfg.Resource),
	}
	if len(opts) > 0 {
		preq.Options = opts
	}

	body, err := json.Marshal(preq)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	url := e.cfg.BaseURL + "/v1/process"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	e.authorize(httpReq)

	debug.Log("engine", "remote request", "url", url, "language", preq.Language, "resource", preq.Resource)

	httpResp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, mapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, mapHTTPError(httpResp)
	}

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResultSize+1))
	if err != nil {
		return nil, mapNetworkError(err)
	}
	if len(data) > maxResultSize {
		return nil, api.NewEngineError(CodeBadResponse, fmt.Sprintf("engine result exceeds %d bytes", maxResultSize))
	}

	e.logger.InfoContext(ctx, "processed text",
		"language", preq.Language,
		"resource", preq.Resource,
		"bytes", len(data),
	)
	return data, nil
}

// ListResources queries GET /v1/resources.
func (e *Engine) ListResources(ctx context.Context) ([]api.ResourceDescriptor, error) {
	var out ResourcesResponse
	if err := e.getJSON(ctx, "/v1/resources", &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListLanguages queries GET /v1/languages. Duplicates are dropped.
func (e *Engine) ListLanguages(ctx context.Context) ([]string, error) {
	var out LanguagesResponse
	if err := e.getJSON(ctx, "/v1/languages", &out); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(out.Data))
	langs := make([]string, 0, len(out.Data))
	for _, l := range out.Data {
		if seen[l] {
			continue
		}
		seen[l] = true
		langs = append(langs, l)
	}
	return langs, nil
}

// Close releases idle HTTP connections.
func (e *Engine) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

func (e *Engine) getJSON(ctx context.Context, path string, v any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.BaseURL+path, nil)
	if err != nil {
		return api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	e.authorize(httpReq)

	httpResp, err := e.client.Do(httpReq)
	if err != nil {
		return mapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return mapHTTPError(httpResp)
	}
	if err := json.NewDecoder(httpResp.Body).Decode(v); err != nil {
		return api.NewEngineError(CodeBadResponse, fmt.Sprintf("failed to parse %s response: %s", path, err.Error()))
	}
	return nil
}

func (e *Engine) authorize(r *http.Request) {
	if e.cfg.APIKey != "" {
		r.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}
}
