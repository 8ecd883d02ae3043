// Command mock-engine runs a deterministic engine service for exercising
// the remote engine. It speaks the protocol documented in
// pkg/engine/remote and returns predictable results based on the
// request content.
//
// Configuration:
//
//	MOCK_PORT    - Listen port (default: 9090)
//	MOCK_API_KEY - Require this bearer token when set
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rhuss/procunit/pkg/api"
	"github.com/rhuss/procunit/pkg/engine/remote"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	srv := &http.Server{Addr: ":" + port, Handler: newMux(os.Getenv("MOCK_API_KEY"))}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock engine starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock engine failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock engine shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func newMux(apiKey string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/process", handleProcess)
	mux.HandleFunc("GET /v1/resources", handleResources)
	mux.HandleFunc("GET /v1/languages", handleLanguages)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	if apiKey == "" {
		return mux
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" && r.Header.Get("Authorization") != "Bearer "+apiKey {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// --- Catalog ---

var resources = []api.ResourceDescriptor{
	{Name: "mock-standard", Type: "standard", Extra: map[string]any{"language": "en-US"}},
	{Name: "mock-enhanced", Type: "enhanced", Extra: map[string]any{"language": "de-DE"}},
}

var languages = []string{"en-US", "de-DE"}

func handleResources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, remote.ResourcesResponse{Data: resources})
}

func handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, remote.LanguagesResponse{Data: languages})
}

// --- Process ---

// handleProcess echoes the resolved request as "language|resource|text".
// Texts starting with "fail:" or "reject:" produce 500 and 400 errors.
func handleProcess(w http.ResponseWriter, r *http.Request) {
	var req remote.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch {
	case strings.HasPrefix(req.Text, "fail:"):
		writeError(w, http.StatusInternalServerError, strings.TrimPrefix(req.Text, "fail:"))
		return
	case strings.HasPrefix(req.Text, "reject:"):
		writeError(w, http.StatusBadRequest, strings.TrimPrefix(req.Text, "reject:"))
		return
	}

	if !supported(req.Language) {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("unsupported language %q", req.Language))
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	fmt.Fprintf(w, "%s|%s|%s", req.Language, req.Resource, req.Text)
}

// --- Helpers ---

func supported(language string) bool {
	for _, l := range languages {
		if l == language {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": message},
	})
}
