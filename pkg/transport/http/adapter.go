package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/google/uuid"

	"github.com/rhuss/procunit/pkg/api"
	"github.com/rhuss/procunit/pkg/debug"
	"github.com/rhuss/procunit/pkg/transport"
)

// Adapter serves the procunit API over HTTP.
// It routes requests to the Service and serializes the results.
type Adapter struct {
	service transport.Service
	runner  transport.Runner
	mux     *http.ServeMux
	config  Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize int64
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 10 << 20, // 10 MB
	}
}

// NewAdapter creates an HTTP adapter for the given Service.
// Middleware is applied to the Service's Run operation in the given order.
func NewAdapter(service transport.Service, cfg Config, middlewares ...transport.Middleware) *Adapter {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}

	var runner transport.Runner = service
	if len(middlewares) > 0 {
		runner = transport.Chain(middlewares...)(runner)
	}

	a := &Adapter{
		service: service,
		runner:  runner,
		mux:     http.NewServeMux(),
		config:  cfg,
	}

	a.mux.HandleFunc("POST /v1/run", a.handleRun)
	a.mux.HandleFunc("GET /v1/results/{id}", a.handleGetResult)
	a.mux.HandleFunc("GET /v1/resources", a.handleListResources)
	a.mux.HandleFunc("GET /v1/languages", a.handleListLanguages)
	a.mux.HandleFunc("GET /v1/status", a.handleStatus)
	a.mux.HandleFunc("GET /v1/schema", a.handleSchema)
	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	a.mux.HandleFunc("GET /readyz", a.handleReadyz)

	return a
}

// Handler returns the http.Handler for this adapter, including X-Request-ID
// propagation.
func (a *Adapter) Handler() http.Handler {
	return httpRequestIDMiddleware(a.mux)
}

// Mux returns the adapter's ServeMux so callers can mount additional
// handlers (metrics, MCP) next to the API routes.
func (a *Adapter) Mux() *http.ServeMux {
	return a.mux
}

// httpRequestIDMiddleware takes the X-Request-ID header from the request,
// or generates one, stores it in the context and echoes it on the response.
func httpRequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(transport.ContextWithRequestID(r.Context(), id)))
	})
}

// resultBody is the JSON shape of GET /v1/results/{id}.
type resultBody struct {
	ResultID string         `json:"result_id"`
	Format   string         `json:"format"`
	Size     int            `json:"size"`
	Base64   []byte         `json:"base64"`
	Metadata map[string]any `json:"metadata"`
}

// listBody wraps enumeration results.
type listBody[T any] struct {
	Object string `json:"object"`
	Data   []T    `json:"data"`
}

// handleRun handles POST /v1/run.
func (a *Adapter) handleRun(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			transport.WriteErrorResponse(w,
				api.NewValidationError("content_type", "Content-Type must be application/json"),
				http.StatusUnsupportedMediaType,
			)
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewValidationError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return
		}
		transport.WriteAPIError(w, api.NewValidationError("body", "reading body: "+err.Error()))
		return
	}

	req, err := api.DecodeRunRequest(body)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	debug.Log("transport", "decoded run request", "format", req.Format(), "save_to_file", req.SaveToFile)

	resp, err := a.runner.Run(r.Context(), *req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, resp)
}

// handleGetResult handles GET /v1/results/{id}.
func (a *Adapter) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !api.ValidateResultID(id) {
		transport.WriteAPIError(w, api.NewValidationError("id", "malformed result ID"))
		return
	}

	entry, ok := a.service.GetResourceByID(r.Context(), id)
	if !ok {
		transport.WriteAPIError(w, api.NewNotFoundError("result "+id+" not found"))
		return
	}

	transport.WriteJSON(w, http.StatusOK, resultBody{
		ResultID: entry.ID,
		Format:   entry.Format,
		Size:     len(entry.Data),
		Base64:   entry.Data,
		Metadata: entry.Metadata,
	})
}

// handleListResources handles GET /v1/resources.
func (a *Adapter) handleListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := a.service.ListResources(r.Context())
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	if resources == nil {
		resources = []api.ResourceDescriptor{}
	}
	transport.WriteJSON(w, http.StatusOK, listBody[api.ResourceDescriptor]{Object: "list", Data: resources})
}

// handleListLanguages handles GET /v1/languages.
func (a *Adapter) handleListLanguages(w http.ResponseWriter, r *http.Request) {
	languages, err := a.service.ListLanguages(r.Context())
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	if languages == nil {
		languages = []string{}
	}
	transport.WriteJSON(w, http.StatusOK, listBody[string]{Object: "list", Data: languages})
}

// handleStatus handles GET /v1/status.
func (a *Adapter) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := a.service.GetStatus(r.Context())
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, status)
}

// handleSchema handles GET /v1/schema.
func (a *Adapter) handleSchema(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, a.service.ParametersSchema())
}

func (a *Adapter) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

func (a *Adapter) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := a.service.Ready(r.Context()); err != nil {
		http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}
