package remote

import (
	"fmt"
	"time"

	"github.com/rhuss/procunit/pkg/engine"
)

// Config holds configuration for the remote engine.
type Config struct {
	// BaseURL is the engine service URL (e.g., "http://localhost:9000").
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Timeout for individual HTTP requests. Defaults to 60s.
	Timeout time.Duration

	// Language and Resource are the engine-level fallbacks sent when a
	// call does not name them.
	Language string
	Resource string
}

// ConfigFromSettings reads the remote engine configuration from the
// engine-level settings view.
func ConfigFromSettings(settings engine.Settings) (Config, error) {
	cfg := Config{
		BaseURL:  engine.Resolve(nil, "", settings, engine.SettingBackendURL, ""),
		APIKey:   engine.Resolve(nil, "", settings, engine.SettingAPIKey, ""),
		Language: engine.Resolve(nil, "", settings, engine.SettingLanguage, "en-US"),
		Resource: engine.Resolve(nil, "", settings, engine.SettingResource, "default"),
	}
	if v := engine.Resolve(nil, "", settings, engine.SettingTimeout, ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", engine.SettingTimeout, v, err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}
