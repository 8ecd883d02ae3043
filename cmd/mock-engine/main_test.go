package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rhuss/procunit/pkg/api"
	"github.com/rhuss/procunit/pkg/engine"
	"github.com/rhuss/procunit/pkg/engine/remote"
)

func newRemote(t *testing.T, serverKey, clientKey string) *remote.Engine {
	t.Helper()
	ts := httptest.NewServer(newMux(serverKey))
	t.Cleanup(ts.Close)

	e, err := remote.New(remote.Config{
		BaseURL:  ts.URL,
		APIKey:   clientKey,
		Language: "en-US",
		Resource: "mock-standard",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("remote.New: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestProcessRoundTrip(t *testing.T) {
	e := newRemote(t, "", "")
	ctx := context.Background()

	tests := []struct {
		name string
		opts engine.Options
		want string
	}{
		{"fallbacks", nil, "en-US|mock-standard|hello"},
		{"call options", engine.Options{"language": "de-DE", "resource": "mock-enhanced"}, "de-DE|mock-enhanced|hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := e.Process(ctx, "hello", tt.opts)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("data = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestProcessErrors(t *testing.T) {
	e := newRemote(t, "", "")
	ctx := context.Background()

	tests := []struct {
		name     string
		text     string
		opts     engine.Options
		wantCode string
		wantMsg  string
	}{
		{"server failure", "fail:boom", nil, remote.CodeServerError, "boom"},
		{"rejected", "reject:bad input", nil, remote.CodeRejected, "bad input"},
		{"unsupported language", "hello", engine.Options{"language": "xx-XX"}, remote.CodeRejected, `unsupported language "xx-XX"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Process(ctx, tt.text, tt.opts)
			var apiErr *api.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *api.APIError, got %v", err)
			}
			if apiErr.Type != api.ErrorTypeEngineError {
				t.Errorf("type = %q, want %q", apiErr.Type, api.ErrorTypeEngineError)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", apiErr.Code, tt.wantCode)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestCatalog(t *testing.T) {
	e := newRemote(t, "", "")
	ctx := context.Background()

	res, err := e.ListResources(ctx)
	if err != nil {
		t.Fatalf("ListResources: %v", err)
	}
	if len(res) != len(resources) {
		t.Fatalf("resources = %d, want %d", len(res), len(resources))
	}
	if res[1].Name != "mock-enhanced" || res[1].Language() != "de-DE" {
		t.Errorf("resources[1] = %+v", res[1])
	}

	langs, err := e.ListLanguages(ctx)
	if err != nil {
		t.Fatalf("ListLanguages: %v", err)
	}
	if len(langs) != 2 || langs[0] != "en-US" || langs[1] != "de-DE" {
		t.Errorf("languages = %v", langs)
	}
}

func TestAPIKey(t *testing.T) {
	ctx := context.Background()

	_, err := newRemote(t, "secret", "wrong").ListLanguages(ctx)
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != remote.CodeUnauthorized {
		t.Errorf("wrong key: err = %v, want %s", err, remote.CodeUnauthorized)
	}

	if _, err := newRemote(t, "secret", "secret").ListLanguages(ctx); err != nil {
		t.Errorf("right key: %v", err)
	}
}

func TestHealthzSkipsAuth(t *testing.T) {
	ts := httptest.NewServer(newMux("secret"))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
