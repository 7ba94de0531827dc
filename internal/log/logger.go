// Package log configures the process-wide slog logger.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Component names used across the binaries.
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentWorker = "worker"
	ComponentAMQP   = "amqp"
	ComponentSheets = "sheets"
)

// Config holds logger configuration
type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler
}

// DefaultConfig returns a text handler on stdout at Info level.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
	}
}

// New creates a slog logger carrying the component attribute.
func New(config Config) *slog.Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.Level,
		})
	}
	return slog.New(handler).With("component", config.Component)
}

// Setup installs the default logger for the whole process. The level comes
// from LOG_LEVEL (debug, info, warn, error), defaulting to info.
func Setup(component string) {
	config := DefaultConfig()
	config.Component = component
	config.Level = levelFromEnv()
	config.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	slog.SetDefault(New(config))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
