package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/procunit/pkg/api"
	"github.com/rhuss/procunit/pkg/config"
	"github.com/rhuss/procunit/pkg/process"
	"github.com/rhuss/procunit/pkg/transport"
)

// connect starts srv on an in-memory transport and returns a connected
// client session.
func connect(t *testing.T, srv *Server) *mcp.ClientSession {
	t.Helper()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		_ = srv.MCPServer().Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("connect client: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func newProcessServer(t *testing.T) *Server {
	t.Helper()
	p, err := process.New(config.Defaults())
	if err != nil {
		t.Fatalf("process.New: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return NewServer(p, "test", nil, transport.Recovery(nil), transport.RequestID())
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return res
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	if len(parts) == 0 {
		t.Fatal("tool result has no text content")
	}
	return strings.Join(parts, "\n")
}

func decodeText(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(textOf(t, res)), v); err != nil {
		t.Fatalf("decode tool output: %v", err)
	}
}

func TestListTools(t *testing.T) {
	session := connect(t, newProcessServer(t))

	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	got := make(map[string]bool)
	for _, tool := range res.Tools {
		got[tool.Name] = true
	}
	for _, name := range []string{ToolRun, ToolListResources, ToolListLanguages, ToolGetResult, ToolGetStatus} {
		if !got[name] {
			t.Errorf("tool %q not registered", name)
		}
	}
}

func TestRunAndGetResult(t *testing.T) {
	session := connect(t, newProcessServer(t))

	res := callTool(t, session, ToolRun, map[string]any{"text": "hello", "output_format": "json"})
	if res.IsError {
		t.Fatalf("run returned error: %s", textOf(t, res))
	}

	var run api.RunResponse
	decodeText(t, res, &run)
	data, err := base64.StdEncoding.DecodeString(run.Base64)
	if err != nil {
		t.Fatalf("base64 decode: %v", err)
	}
	if string(data) != "SAMPLE_RESULT_DATA" {
		t.Errorf("data = %q, want %q", data, "SAMPLE_RESULT_DATA")
	}
	if run.Format != "json" || run.FilePath != "" {
		t.Errorf("run = %+v", run)
	}

	res = callTool(t, session, ToolGetResult, map[string]any{"result_id": run.ResultID})
	if res.IsError {
		t.Fatalf("get_result returned error: %s", textOf(t, res))
	}
	var got struct {
		ResultID string `json:"result_id"`
		Base64   string `json:"base64"`
		Size     int    `json:"size"`
	}
	decodeText(t, res, &got)
	if got.ResultID != run.ResultID || got.Base64 != run.Base64 || got.Size != len("SAMPLE_RESULT_DATA") {
		t.Errorf("get_result = %+v, want id %q", got, run.ResultID)
	}
}

func TestRunValidationErrors(t *testing.T) {
	session := connect(t, newProcessServer(t))

	tests := []struct {
		name string
		args map[string]any
	}{
		{"empty text", map[string]any{"text": ""}},
		{"missing text", map[string]any{"output_format": "wav"}},
		{"unknown format", map[string]any{"text": "hi", "output_format": "flac"}},
		{"unknown field", map[string]any{"text": "hi", "pitch": 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, session, ToolRun, tt.args)
			if !res.IsError {
				t.Fatalf("expected IsError, got %s", textOf(t, res))
			}
			var body api.ErrorResponse
			decodeText(t, res, &body)
			if body.Error == nil || body.Error.Type != api.ErrorTypeInvalidRequest {
				t.Errorf("error = %+v, want invalid_request", body.Error)
			}
		})
	}
}

func TestRunConfinesOutputDir(t *testing.T) {
	p, err := process.New(config.Defaults())
	if err != nil {
		t.Fatalf("process.New: %v", err)
	}
	t.Cleanup(func() { p.Close() })

	root := t.TempDir()
	session := connect(t, NewServer(p, "test", nil, transport.OutputRoot(root)))

	res := callTool(t, session, ToolRun, map[string]any{
		"text": "hi", "save_to_file": true, "output_dir": "../escaped",
	})
	if !res.IsError {
		t.Fatalf("expected IsError, got %s", textOf(t, res))
	}
	var body api.ErrorResponse
	decodeText(t, res, &body)
	if body.Error == nil || body.Error.Param != "output_dir" {
		t.Errorf("error = %+v, want param output_dir", body.Error)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(root), "escaped")); !os.IsNotExist(err) {
		t.Errorf("escaped directory exists: %v", err)
	}

	res = callTool(t, session, ToolRun, map[string]any{
		"text": "hi", "output_format": "json", "save_to_file": true, "output_dir": "out",
	})
	if res.IsError {
		t.Fatalf("unexpected error: %s", textOf(t, res))
	}
	var run api.RunResponse
	decodeText(t, res, &run)
	if want := filepath.Join(root, "out", run.ResultID+".json"); run.FilePath != want {
		t.Errorf("file_path = %q, want %q", run.FilePath, want)
	}
}

func TestGetResultErrors(t *testing.T) {
	session := connect(t, newProcessServer(t))

	res := callTool(t, session, ToolGetResult, map[string]any{"result_id": "result-AAAAAAAAAAAAAAAAAAAAAAAA"})
	if !res.IsError {
		t.Fatal("expected IsError for unknown result")
	}
	var body api.ErrorResponse
	decodeText(t, res, &body)
	if body.Error.Type != api.ErrorTypeNotFound {
		t.Errorf("error type = %q, want %q", body.Error.Type, api.ErrorTypeNotFound)
	}

	res = callTool(t, session, ToolGetResult, map[string]any{"result_id": "bogus"})
	if !res.IsError {
		t.Fatal("expected IsError for malformed id")
	}
	decodeText(t, res, &body)
	if body.Error.Type != api.ErrorTypeInvalidRequest {
		t.Errorf("error type = %q, want %q", body.Error.Type, api.ErrorTypeInvalidRequest)
	}
}

func TestEnumerationAndStatus(t *testing.T) {
	session := connect(t, newProcessServer(t))

	var resources struct {
		Resources []api.ResourceDescriptor `json:"resources"`
	}
	decodeText(t, callTool(t, session, ToolListResources, nil), &resources)
	if len(resources.Resources) != 3 {
		t.Errorf("resources = %d, want 3", len(resources.Resources))
	}

	var languages struct {
		Languages []string `json:"languages"`
	}
	decodeText(t, callTool(t, session, ToolListLanguages, nil), &languages)
	if len(languages.Languages) != 5 {
		t.Errorf("languages = %d, want 5", len(languages.Languages))
	}

	var status api.Status
	decodeText(t, callTool(t, session, ToolGetStatus, nil), &status)
	if status.Status != api.StatusRunning || status.ResourcesCount != 3 || status.LanguagesCount != 5 {
		t.Errorf("status = %+v", status)
	}
	if status.EngineType != "default" {
		t.Errorf("engine_type = %q, want %q", status.EngineType, "default")
	}
}

func TestRunPanicBecomesToolError(t *testing.T) {
	p, err := process.New(config.Defaults())
	if err != nil {
		t.Fatalf("process.New: %v", err)
	}
	defer p.Close()

	panicking := func(next transport.Runner) transport.Runner {
		return transport.RunnerFunc(func(ctx context.Context, req api.RunRequest) (*api.RunResponse, error) {
			panic("kaboom")
		})
	}
	session := connect(t, NewServer(p, "test", nil, transport.Recovery(nil), panicking))

	res := callTool(t, session, ToolRun, map[string]any{"text": "hi"})
	if !res.IsError {
		t.Fatal("expected IsError after panic")
	}
	if !strings.Contains(textOf(t, res), "kaboom") {
		t.Errorf("error text = %q, want panic value", textOf(t, res))
	}
}
