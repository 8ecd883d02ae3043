package config

import "strings"

// Settings is the flat key-value view the engines read their
// configuration from. Only keys with non-empty values are present, so
// engines fall back to their built-in defaults for unset keys.
type Settings map[string]string

// Lookup returns the value stored under key.
func (s Settings) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Settings returns the engine settings view of the process section.
// Keys in process.settings are added first and upper-cased; the typed
// fields win on collision.
func (c *Config) Settings() Settings {
	s := Settings{}
	for k, v := range c.Process.Settings {
		if v != "" {
			s[strings.ToUpper(k)] = v
		}
	}

	set := func(key, value string) {
		if value != "" {
			s[key] = value
		}
	}
	set("PROCESS_ENGINE", c.Process.Engine)
	set("PROCESS_LANGUAGE", c.Process.Language)
	set("PROCESS_RESOURCE", c.Process.Resource)
	set("PROCESS_VERSION", c.Process.Version)
	set("PROCESS_BACKEND_URL", c.Process.BackendURL)
	set("PROCESS_API_KEY", c.Process.APIKey)
	if c.Process.Timeout > 0 {
		s["PROCESS_TIMEOUT"] = c.Process.Timeout.String()
	}
	return s
}

