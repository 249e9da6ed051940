// Package logging configures zerolog for the rotacio-diff tool.
//
// Logs are written to stderr; stdout is reserved for the difference report.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs every page request and token cache decision.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs logins and fetch totals.
	LevelInfo LogLevel = "info"

	// LevelWarn logs recoverable problems (token cache unavailable).
	LevelWarn LogLevel = "warn"

	// LevelError logs failed requests only.
	LevelError LogLevel = "error"

	// LevelDisabled silences logging.
	LevelDisabled LogLevel = "disabled"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer

	// Fields are attached to every log line (e.g. a run label).
	Fields map[string]string
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: true,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(output).With().Timestamp()
	for key, value := range cfg.Fields {
		ctx = ctx.Str(key, value)
	}
	logger := ctx.Logger()

	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level, defaulting to info.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// ForEnvironment returns a component logger tagged with a compared environment.
func ForEnvironment(component, env string) zerolog.Logger {
	return log.With().Str("component", component).Str("env", env).Logger()
}

// Context Fields:
//   - component: arcgis, pagination, rotacio-diff
//   - env: compared environment (pre, dev)
//   - operation: ArcGIS REST operation (generateToken, query)
//   - error_class: client, server, auth, network
//   - offset, requested, returned: page request bookkeeping
//   - records, pages, duration: fetch totals
