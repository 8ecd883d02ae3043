// Package debug configures process-wide logging and provides
// category-based debug output for procunit.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): PROCUNIT_DEBUG env or logging.debug config
//   - Levels (HOW MUCH detail): PROCUNIT_LOG_LEVEL env or logging.level config
//
// Usage:
//
//	debug.Log("engine", "remote request", "url", url)
//	if debug.Enabled("storage") { /* expensive formatting */ }
//
// Categories: engine, process, storage, transport, auth, mcp, config, all.
// Levels: ERROR, WARN, INFO, DEBUG, TRACE.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelTrace is below slog.LevelDebug for maximum verbosity.
const LevelTrace = slog.LevelDebug - 4

// categories holds the set of enabled debug categories.
var categories atomic.Pointer[map[string]bool]

func init() {
	setCategories(parseCategories(os.Getenv("PROCUNIT_DEBUG")))
}

// Options configures the process logger.
type Options struct {
	// Categories is a comma-separated list of debug categories.
	Categories string

	// Level is one of TRACE, DEBUG, INFO, WARN, ERROR. Default INFO.
	Level string

	// Format is "text" (default) or "json".
	Format string

	// File, when set, sends logs to a size-rotated file instead of stderr.
	File       string
	MaxSizeMB  int // default 100
	MaxBackups int
	MaxAgeDays int
}

// Init configures the debug categories and installs the default slog
// logger. Environment variables take precedence over opts. The returned
// closer releases the log file, if any.
func Init(opts Options) io.Closer {
	cats := os.Getenv("PROCUNIT_DEBUG")
	if cats == "" {
		cats = opts.Categories
	}
	setCategories(parseCategories(cats))

	level := os.Getenv("PROCUNIT_LOG_LEVEL")
	if level == "" {
		level = opts.Level
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
		w, closer = lj, lj
	}

	slog.SetDefault(slog.New(NewHandler(w, opts.Format, ParseLevel(level))))
	return closer
}

// NewHandler builds a text or JSON slog handler at the given level.
func NewHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	hopts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, hopts)
	}
	return slog.NewTextHandler(w, hopts)
}

// Enabled reports whether debug output is active for the given category.
func Enabled(category string) bool {
	m := *categories.Load()
	return m["all"] || m[category]
}

// Log emits a debug message for the given category.
// If the category is not enabled, this is a no-op.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a trace-level message for the given category.
// Only visible when PROCUNIT_LOG_LEVEL=TRACE.
func Trace(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Log(context.Background(), LevelTrace, msg, append([]any{"debug", category}, args...)...)
}

// ParseLevel converts a level string to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the enabled categories.
func Categories() []string {
	var result []string
	for k := range *categories.Load() {
		result = append(result, k)
	}
	return result
}

// Truncate returns s truncated to maxLen bytes, with "..." appended if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func setCategories(m map[string]bool) {
	categories.Store(&m)
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
