// Package mcp exposes a processing unit as Model Context Protocol tools.
//
// The server registers five tools (run, list_resources, list_languages,
// get_result, get_status) on top of a transport.Service and serves them
// over streamable HTTP.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/procunit/pkg/api"
	"github.com/rhuss/procunit/pkg/debug"
	"github.com/rhuss/procunit/pkg/transport"
)

// Tool names.
const (
	ToolRun           = "run"
	ToolListResources = "list_resources"
	ToolListLanguages = "list_languages"
	ToolGetResult     = "get_result"
	ToolGetStatus     = "get_status"
)

// Server wraps an MCP server bound to a Service.
type Server struct {
	service transport.Service
	runner  transport.Runner
	server  *mcp.Server
	logger  *slog.Logger
}

// GetResultInput is the argument of the get_result tool.
type GetResultInput struct {
	ResultID string `json:"result_id" jsonschema:"identifier returned by the run tool"`
}

// NewServer creates an MCP server for service. Middleware wraps the run
// tool the same way the HTTP adapter wraps POST /v1/run.
func NewServer(service transport.Service, version string, logger *slog.Logger, middlewares ...transport.Middleware) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	var runner transport.Runner = service
	if len(middlewares) > 0 {
		runner = transport.Chain(middlewares...)(runner)
	}

	s := &Server{
		service: service,
		runner:  runner,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "procunit", Version: version},
			nil,
		),
		logger: logger.With("component", "mcp"),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}

// Handler returns a streamable HTTP handler serving the tools.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        ToolRun,
		Description: "Process text with the configured engine and return the packaged result",
		InputSchema: api.ParametersSchema(),
	}, s.handleRun)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolListResources,
		Description: "List the resources the engine can use",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
		resources, err := s.service.ListResources(ctx)
		if err != nil {
			return s.errorResult(ToolListResources, err), nil, nil
		}
		return jsonResult(map[string]any{"resources": resources}), nil, nil
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolListLanguages,
		Description: "List the language codes the engine supports",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
		languages, err := s.service.ListLanguages(ctx)
		if err != nil {
			return s.errorResult(ToolListLanguages, err), nil, nil
		}
		return jsonResult(map[string]any{"languages": languages}), nil, nil
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolGetResult,
		Description: "Fetch a cached result by identifier",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in GetResultInput) (*mcp.CallToolResult, any, error) {
		if !api.ValidateResultID(in.ResultID) {
			return s.errorResult(ToolGetResult, api.NewValidationError("result_id", "malformed result ID")), nil, nil
		}
		entry, ok := s.service.GetResourceByID(ctx, in.ResultID)
		if !ok {
			return s.errorResult(ToolGetResult, api.NewNotFoundError("result "+in.ResultID+" not found")), nil, nil
		}
		return jsonResult(map[string]any{
			"result_id": entry.ID,
			"format":    entry.Format,
			"size":      len(entry.Data),
			"base64":    entry.Data,
			"metadata":  entry.Metadata,
		}), nil, nil
	})

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolGetStatus,
		Description: "Report the processing unit status",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
		status, err := s.service.GetStatus(ctx)
		if err != nil {
			return s.errorResult(ToolGetStatus, err), nil, nil
		}
		return jsonResult(status), nil, nil
	})
}

func (s *Server) handleRun(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.Params.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	runReq, err := api.DecodeRunRequest(args)
	if err != nil {
		return s.errorResult(ToolRun, err), nil
	}
	debug.Log("mcp", "run tool called", "format", runReq.Format())

	resp, err := s.runner.Run(ctx, *runReq)
	if err != nil {
		return s.errorResult(ToolRun, err), nil
	}
	return jsonResult(resp), nil
}

// errorResult reports a tool failure to the client as an IsError result
// carrying the JSON API error.
func (s *Server) errorResult(tool string, err error) *mcp.CallToolResult {
	apiErr := transport.AsAPIError(err)
	s.logger.Warn("tool call failed", "tool", tool, "error", err)
	res := jsonResult(api.ErrorResponse{Error: apiErr})
	res.IsError = true
	return res
}

// jsonResult renders v as JSON text content and structured content.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: "encoding result: " + err.Error()}},
		}
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(data)}},
		StructuredContent: json.RawMessage(data),
	}
}
