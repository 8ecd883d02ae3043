package engine

import "fmt"

// Resolve returns the value for an option key using the fallback chain:
//  1. opts[key] when present and non-empty
//  2. settings[settingKey] when present and non-empty
//  3. fallback
//
// Non-string option values are formatted with fmt.Sprint.
func Resolve(opts Options, key string, settings Settings, settingKey, fallback string) string {
	if v, ok := opts[key]; ok && v != nil {
		s, isString := v.(string)
		if !isString {
			s = fmt.Sprint(v)
		}
		if s != "" {
			return s
		}
	}
	if settings != nil && settingKey != "" {
		if s, ok := settings.Lookup(settingKey); ok && s != "" {
			return s
		}
	}
	return fallback
}
