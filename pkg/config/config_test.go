package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("default server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("default server.read_timeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 120*time.Second {
		t.Errorf("default server.write_timeout = %v, want 120s", cfg.Server.WriteTimeout)
	}
	if cfg.Process.Engine != "default" {
		t.Errorf("default process.engine = %q, want \"default\"", cfg.Process.Engine)
	}
	if cfg.Process.Version != "1.0.0" {
		t.Errorf("default process.version = %q, want \"1.0.0\"", cfg.Process.Version)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("default storage.type = %q, want \"memory\"", cfg.Storage.Type)
	}
	if cfg.Storage.MaxSize != 0 {
		t.Errorf("default storage.max_size = %d, want 0 (unbounded)", cfg.Storage.MaxSize)
	}
	if cfg.Auth.Type != "none" {
		t.Errorf("default auth.type = %q, want \"none\"", cfg.Auth.Type)
	}
	if cfg.MCP.Enabled {
		t.Error("default mcp.enabled = true, want false")
	}
	if !cfg.Observability.Metrics.Enabled {
		t.Error("default observability.metrics.enabled = false, want true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
server:
  port: 9090
  read_timeout: 60s
process:
  engine: remote
  language: pl-PL
  resource: resource2
  version: 2.1.0
  backend_url: http://localhost:9000
  api_key: sk-test-key
  timeout: 5s
  settings:
    voice_pitch: high
storage:
  type: sqlite
  sqlite:
    path: /var/lib/procunit/results.db
auth:
  type: apikey
  api_keys:
    - key: sk-key-1
      subject: alice
    - key: sk-key-2
      subject: bob
mcp:
  enabled: true
  path: /tools
logging:
  format: json
  debug: engine,process
`
	cfg, err := Load(writeTemp(t, "config-*.yaml", yamlContent))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("server.read_timeout = %v, want 60s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 120*time.Second {
		t.Errorf("server.write_timeout = %v, want default 120s", cfg.Server.WriteTimeout)
	}

	if cfg.Process.Engine != "remote" {
		t.Errorf("process.engine = %q, want \"remote\"", cfg.Process.Engine)
	}
	if cfg.Process.Language != "pl-PL" || cfg.Process.Resource != "resource2" {
		t.Errorf("process language/resource = %q/%q", cfg.Process.Language, cfg.Process.Resource)
	}
	if cfg.Process.Version != "2.1.0" {
		t.Errorf("process.version = %q, want \"2.1.0\"", cfg.Process.Version)
	}
	if cfg.Process.Timeout != 5*time.Second {
		t.Errorf("process.timeout = %v, want 5s", cfg.Process.Timeout)
	}
	if cfg.Process.Settings["voice_pitch"] != "high" {
		t.Errorf("process.settings = %v", cfg.Process.Settings)
	}

	if cfg.Storage.Type != "sqlite" {
		t.Errorf("storage.type = %q, want \"sqlite\"", cfg.Storage.Type)
	}
	if cfg.Storage.SQLite.Path != "/var/lib/procunit/results.db" {
		t.Errorf("storage.sqlite.path = %q", cfg.Storage.SQLite.Path)
	}

	if cfg.Auth.Type != "apikey" {
		t.Errorf("auth.type = %q, want \"apikey\"", cfg.Auth.Type)
	}
	if len(cfg.Auth.APIKeys) != 2 {
		t.Fatalf("auth.api_keys length = %d, want 2", len(cfg.Auth.APIKeys))
	}
	if cfg.Auth.APIKeys[0].Key != "sk-key-1" || cfg.Auth.APIKeys[0].Subject != "alice" {
		t.Errorf("auth.api_keys[0] = %+v", cfg.Auth.APIKeys[0])
	}

	if !cfg.MCP.Enabled || cfg.MCP.Path != "/tools" {
		t.Errorf("mcp = %+v, want enabled at /tools", cfg.MCP)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Debug != "engine,process" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestEnvOverride(t *testing.T) {
	yamlContent := `
server:
  port: 9090
process:
  engine: default
  language: en-US
storage:
  type: memory
  max_size: 5000
`
	tmpFile := writeTemp(t, "config-*.yaml", yamlContent)

	t.Setenv("PROCUNIT_PORT", "7070")
	t.Setenv("PROCESS_ENGINE", "echo")
	t.Setenv("PROCESS_LANGUAGE", "de-DE")
	t.Setenv("PROCESS_RESOURCE", "resource1")
	t.Setenv("PROCESS_TIMEOUT", "3s")
	t.Setenv("PROCUNIT_STORAGE_SIZE", "2000")
	t.Setenv("PROCUNIT_MCP_ENABLED", "true")
	t.Setenv("PROCESS_OUTPUT_ROOT", "/srv/results")

	cfg, err := Load(tmpFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("server.port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Process.Engine != "echo" {
		t.Errorf("process.engine = %q, want env override \"echo\"", cfg.Process.Engine)
	}
	if cfg.Process.Language != "de-DE" {
		t.Errorf("process.language = %q, want env override \"de-DE\"", cfg.Process.Language)
	}
	if cfg.Process.Resource != "resource1" {
		t.Errorf("process.resource = %q, want env override \"resource1\"", cfg.Process.Resource)
	}
	if cfg.Process.Timeout != 3*time.Second {
		t.Errorf("process.timeout = %v, want 3s", cfg.Process.Timeout)
	}
	if cfg.Storage.MaxSize != 2000 {
		t.Errorf("storage.max_size = %d, want env override 2000", cfg.Storage.MaxSize)
	}
	if !cfg.MCP.Enabled {
		t.Error("mcp.enabled = false, want env override true")
	}
	if cfg.Process.OutputRoot != "/srv/results" {
		t.Errorf("process.output_root = %q, want env override \"/srv/results\"", cfg.Process.OutputRoot)
	}
}

func TestEnvOverrideInvalidValue(t *testing.T) {
	t.Setenv("PROCUNIT_PORT", "not-a-number")

	if _, err := Load(writeTemp(t, "config-*.yaml", "server:\n  port: 9090\n")); err == nil {
		t.Fatal("Load() expected error for invalid PROCUNIT_PORT")
	}
}

func TestEnvAPIKeys(t *testing.T) {
	t.Setenv("PROCUNIT_AUTH_TYPE", "apikey")
	t.Setenv("PROCUNIT_API_KEYS", `[{"key":"sk-env","subject":"env-user"}]`)

	cfg, err := Load(writeTemp(t, "config-*.yaml", "server:\n  port: 8080\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Auth.Type != "apikey" {
		t.Errorf("auth.type = %q, want \"apikey\"", cfg.Auth.Type)
	}
	if len(cfg.Auth.APIKeys) != 1 {
		t.Fatalf("auth.api_keys length = %d, want 1", len(cfg.Auth.APIKeys))
	}
	if cfg.Auth.APIKeys[0].Key != "sk-env" || cfg.Auth.APIKeys[0].Subject != "env-user" {
		t.Errorf("auth.api_keys[0] = %+v", cfg.Auth.APIKeys[0])
	}
}

func TestEnvAPIKeysMalformed(t *testing.T) {
	t.Setenv("PROCUNIT_API_KEYS", `{not json`)

	if _, err := Load(writeTemp(t, "config-*.yaml", "server:\n  port: 8080\n")); err == nil {
		t.Fatal("Load() expected error for malformed PROCUNIT_API_KEYS")
	}
}

func TestFileReference(t *testing.T) {
	secretFile := writeTemp(t, "secret-*.txt", "  sk-from-file-123  \n")

	yamlContent := `
process:
  engine: remote
  backend_url: http://localhost:9000
  api_key_file: ` + secretFile + `
`
	cfg, err := Load(writeTemp(t, "config-*.yaml", yamlContent))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Process.APIKey != "sk-from-file-123" {
		t.Errorf("process.api_key = %q, want \"sk-from-file-123\" (from file, trimmed)", cfg.Process.APIKey)
	}
}

func TestFileReferenceForAPIKeys(t *testing.T) {
	keyFile := writeTemp(t, "apikey-*.txt", "  sk-key-from-file  \n")

	yamlContent := `
auth:
  type: apikey
  api_keys:
    - key_file: ` + keyFile + `
      subject: file-user
`
	cfg, err := Load(writeTemp(t, "config-*.yaml", yamlContent))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Auth.APIKeys) != 1 {
		t.Fatalf("auth.api_keys length = %d, want 1", len(cfg.Auth.APIKeys))
	}
	if cfg.Auth.APIKeys[0].Key != "sk-key-from-file" {
		t.Errorf("auth.api_keys[0].key = %q, want \"sk-key-from-file\"", cfg.Auth.APIKeys[0].Key)
	}
}

func TestFileReferenceSecrets(t *testing.T) {
	dsnFile := writeTemp(t, "dsn-*.txt", "  postgres://user:pass@db:5432/app  \n")
	jwtFile := writeTemp(t, "jwt-*.txt", "shared-secret\n")

	yamlContent := `
storage:
  type: postgres
  postgres:
    dsn_file: ` + dsnFile + `
auth:
  type: jwt
  jwt:
    secret_file: ` + jwtFile + `
`
	cfg, err := Load(writeTemp(t, "config-*.yaml", yamlContent))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.Postgres.DSN != "postgres://user:pass@db:5432/app" {
		t.Errorf("storage.postgres.dsn = %q, want DSN from file", cfg.Storage.Postgres.DSN)
	}
	if cfg.Auth.JWT.Secret != "shared-secret" {
		t.Errorf("auth.jwt.secret = %q, want secret from file", cfg.Auth.JWT.Secret)
	}
}

func TestFileReferenceMissingFile(t *testing.T) {
	yamlContent := `
process:
  api_key_file: /nonexistent/procunit/secret
`
	_, err := Load(writeTemp(t, "config-*.yaml", yamlContent))
	if err == nil {
		t.Fatal("Load() expected error for missing secret file")
	}
	if !strings.Contains(err.Error(), "process.api_key_file") {
		t.Errorf("error = %q, want it to name process.api_key_file", err)
	}
}

func TestFileReferenceDoesNotOverrideExplicitValue(t *testing.T) {
	secretFile := writeTemp(t, "secret-*.txt", "sk-from-file")

	yamlContent := `
process:
  api_key: sk-explicit
  api_key_file: ` + secretFile + `
`
	cfg, err := Load(writeTemp(t, "config-*.yaml", yamlContent))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Process.APIKey != "sk-explicit" {
		t.Errorf("process.api_key = %q, want \"sk-explicit\" (explicit value should win over file)", cfg.Process.APIKey)
	}
}

func TestFileDiscovery(t *testing.T) {
	cfg, err := Load(writeTemp(t, "config-*.yaml", "process:\n  language: fr-FR\n"))
	if err != nil {
		t.Fatalf("Load(explicit) error: %v", err)
	}
	if cfg.Process.Language != "fr-FR" {
		t.Errorf("explicit path: process.language = %q, want fr-FR", cfg.Process.Language)
	}

	t.Setenv("PROCUNIT_CONFIG", writeTemp(t, "envconfig-*.yaml", "process:\n  language: es-ES\n"))
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load(PROCUNIT_CONFIG) error: %v", err)
	}
	if cfg.Process.Language != "es-ES" {
		t.Errorf("PROCUNIT_CONFIG: process.language = %q, want es-ES", cfg.Process.Language)
	}

	t.Setenv("PROCUNIT_CONFIG", "")
	t.Setenv("PROCESS_LANGUAGE", "de-DE")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load(no file) error: %v", err)
	}
	if cfg.Process.Language != "de-DE" {
		t.Errorf("no file: process.language = %q, want env override", cfg.Process.Language)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid port",
			modify:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port must be > 0",
		},
		{
			name:    "empty engine",
			modify:  func(c *Config) { c.Process.Engine = "" },
			wantErr: "process.engine is required",
		},
		{
			name:    "remote without backend",
			modify:  func(c *Config) { c.Process.Engine = "remote" },
			wantErr: "process.backend_url is required",
		},
		{
			name:    "invalid storage type",
			modify:  func(c *Config) { c.Storage.Type = "redis" },
			wantErr: "storage.type must be",
		},
		{
			name:    "negative max size",
			modify:  func(c *Config) { c.Storage.MaxSize = -1 },
			wantErr: "storage.max_size must be >= 0",
		},
		{
			name: "sqlite without path",
			modify: func(c *Config) {
				c.Storage.Type = "sqlite"
				c.Storage.SQLite.Path = ""
			},
			wantErr: "storage.sqlite.path is required",
		},
		{
			name:    "postgres without DSN",
			modify:  func(c *Config) { c.Storage.Type = "postgres" },
			wantErr: "storage.postgres.dsn",
		},
		{
			name:    "invalid auth type",
			modify:  func(c *Config) { c.Auth.Type = "oauth2" },
			wantErr: "auth.type must be",
		},
		{
			name:    "apikey without keys",
			modify:  func(c *Config) { c.Auth.Type = "apikey" },
			wantErr: "auth.api_keys must not be empty",
		},
		{
			name:    "jwt without secret",
			modify:  func(c *Config) { c.Auth.Type = "jwt" },
			wantErr: "auth.jwt.secret",
		},
		{
			name:    "negative rate limit",
			modify:  func(c *Config) { c.Auth.RateLimitRPM = -5 },
			wantErr: "auth.rate_limit_rpm must be >= 0",
		},
		{
			name: "mcp path without slash",
			modify: func(c *Config) {
				c.MCP.Enabled = true
				c.MCP.Path = "mcp"
			},
			wantErr: "mcp.path must start with",
		},
		{
			name:    "invalid log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format must be",
		},
		{
			name: "valid remote config",
			modify: func(c *Config) {
				c.Process.Engine = "remote"
				c.Process.BackendURL = "http://localhost:9000"
			},
		},
		{
			name:   "valid defaults",
			modify: func(c *Config) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidationReportsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Port = -1
	cfg.Storage.Type = "redis"
	cfg.Auth.Type = "oauth2"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, want := range []string{"server.port", "storage.type", "auth.type"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error = %q, missing %q", err, want)
		}
	}
}

func TestYAMLDefaultsMerge(t *testing.T) {
	cfg, err := Load(writeTemp(t, "config-*.yaml", "process:\n  resource: resource1\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Process.Engine != "default" {
		t.Errorf("process.engine = %q, want default \"default\"", cfg.Process.Engine)
	}
	if cfg.Process.Version != "1.0.0" {
		t.Errorf("process.version = %q, want default \"1.0.0\"", cfg.Process.Version)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("storage.type = %q, want default \"memory\"", cfg.Storage.Type)
	}
}

func TestSettings(t *testing.T) {
	cfg := Defaults()
	cfg.Process.Language = "pl-PL"
	cfg.Process.BackendURL = "http://engine:9000"
	cfg.Process.Timeout = 2 * time.Second
	cfg.Process.Settings = map[string]string{
		"custom_key":       "custom",
		"process_language": "ignored",
		"empty":            "",
	}

	s := cfg.Settings()

	tests := []struct {
		key   string
		value string
		ok    bool
	}{
		{"PROCESS_ENGINE", "default", true},
		{"PROCESS_LANGUAGE", "pl-PL", true},
		{"PROCESS_RESOURCE", "", false},
		{"PROCESS_VERSION", "1.0.0", true},
		{"PROCESS_BACKEND_URL", "http://engine:9000", true},
		{"PROCESS_API_KEY", "", false},
		{"PROCESS_TIMEOUT", "2s", true},
		{"CUSTOM_KEY", "custom", true},
		{"EMPTY", "", false},
	}
	for _, tt := range tests {
		v, ok := s.Lookup(tt.key)
		if v != tt.value || ok != tt.ok {
			t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.key, v, ok, tt.value, tt.ok)
		}
	}
}

// writeTemp creates a temporary file with the given content and returns its path.
// The file is removed when the test finishes.
func writeTemp(t *testing.T, pattern, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		t.Fatalf("writing temp file: %v", err)
	}
	f.Close()
	return f.Name()
}
