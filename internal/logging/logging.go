// Package logging installs the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/env"
)

// Setup installs a JSON slog logger tagged with the service name as the
// default logger and returns it.
func Setup(service string) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(env.Get(env.LogLevel)),
	})).With("service", service)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
