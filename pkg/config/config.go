// Package config provides unified configuration for the procunit server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (env struct tags)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the procunit server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Process       ProcessConfig       `yaml:"process"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	MCP           MCPConfig           `yaml:"mcp"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" env:"PROCUNIT_PORT"`                        // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"PROCUNIT_READ_TIMEOUT"`         // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"PROCUNIT_WRITE_TIMEOUT"`       // default: 120s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"PROCUNIT_SHUTDOWN_TIMEOUT"` // default: 10s
}

// ProcessConfig selects and configures the engine.
type ProcessConfig struct {
	Engine     string        `yaml:"engine" env:"PROCESS_ENGINE"`     // default: "default"
	Language   string        `yaml:"language" env:"PROCESS_LANGUAGE"` // engine fallback
	Resource   string        `yaml:"resource" env:"PROCESS_RESOURCE"` // engine fallback
	Version    string        `yaml:"version" env:"PROCUNIT_VERSION"`  // default: "1.0.0"
	BackendURL string        `yaml:"backend_url" env:"PROCESS_BACKEND_URL"`
	APIKey     string        `yaml:"api_key" env:"PROCESS_API_KEY"`
	APIKeyFile string        `yaml:"api_key_file" env:"PROCESS_API_KEY_FILE"` // _file variant for api_key
	Timeout    time.Duration `yaml:"timeout" env:"PROCESS_TIMEOUT"`

	// OutputRoot confines the output_dir of network callers. Empty means
	// the working directory.
	OutputRoot string `yaml:"output_root" env:"PROCESS_OUTPUT_ROOT"`

	// Settings holds extra engine-specific keys passed through verbatim.
	Settings map[string]string `yaml:"settings" env:"-"`
}

// StorageConfig holds result cache settings.
type StorageConfig struct {
	Type     string         `yaml:"type" env:"PROCUNIT_STORAGE"`          // "memory", "sqlite" or "postgres", default: "memory"
	MaxSize  int            `yaml:"max_size" env:"PROCUNIT_STORAGE_SIZE"` // memory only; 0 = unbounded
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"PROCUNIT_SQLITE_PATH"` // default: "procunit.db"
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn" env:"PROCUNIT_POSTGRES_DSN"`
	DSNFile        string `yaml:"dsn_file" env:"PROCUNIT_POSTGRES_DSN_FILE"` // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`                                 // default: 10
	MigrateOnStart bool   `yaml:"migrate_on_start" env:"PROCUNIT_POSTGRES_MIGRATE"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	Type    string         `yaml:"type" env:"PROCUNIT_AUTH_TYPE"` // "none", "apikey" or "jwt", default: "none"
	APIKeys []APIKeyConfig `yaml:"api_keys" env:"-"`              // entries for type=apikey
	JWT     JWTConfig      `yaml:"jwt"`

	// RateLimitRPM caps requests per minute per authenticated subject.
	// Zero disables rate limiting.
	RateLimitRPM int `yaml:"rate_limit_rpm" env:"PROCUNIT_RATE_LIMIT_RPM"`
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Key     string `yaml:"key" json:"key"`
	KeyFile string `yaml:"key_file" json:"key_file"` // _file variant for key
	Subject string `yaml:"subject" json:"subject"`
}

// JWTConfig holds shared-secret JWT validation settings.
type JWTConfig struct {
	Secret     string `yaml:"secret" env:"PROCUNIT_JWT_SECRET"`
	SecretFile string `yaml:"secret_file" env:"PROCUNIT_JWT_SECRET_FILE"` // _file variant for secret
	Issuer     string `yaml:"issuer" env:"PROCUNIT_JWT_ISSUER"`
	Audience   string `yaml:"audience" env:"PROCUNIT_JWT_AUDIENCE"`
}

// MCPConfig controls the MCP tool endpoint.
type MCPConfig struct {
	Enabled bool   `yaml:"enabled" env:"PROCUNIT_MCP_ENABLED"` // default: false
	Path    string `yaml:"path"`                               // default: "/mcp"
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"PROCUNIT_METRICS_ENABLED"` // default: true
	Path    string `yaml:"path"`                                   // default: "/metrics"
}

// LoggingConfig holds log output settings. PROCUNIT_DEBUG and
// PROCUNIT_LOG_LEVEL are read directly by the debug package.
type LoggingConfig struct {
	Level  string `yaml:"level"`                               // default: "INFO"
	Debug  string `yaml:"debug"`                               // comma-separated debug categories
	Format string `yaml:"format" env:"PROCUNIT_LOG_FORMAT"`    // "text" or "json", default: "text"
	File   string `yaml:"file" env:"PROCUNIT_LOG_FILE"`        // rotate into this file instead of stderr
	MaxMB  int    `yaml:"max_size_mb" env:"PROCUNIT_LOG_MAXMB"` // default: 100
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Process: ProcessConfig{
			Engine:  "default",
			Version: "1.0.0",
		},
		Storage: StorageConfig{
			Type: "memory",
			SQLite: SQLiteConfig{
				Path: "procunit.db",
			},
			Postgres: PostgresConfig{
				MaxConns: 10,
			},
		},
		Auth: AuthConfig{
			Type: "none",
		},
		MCP: MCPConfig{
			Path: "/mcp",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			MaxMB:  100,
		},
	}
}
