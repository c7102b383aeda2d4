package logger

import (
	"log/slog"
	"strings"
)

// Config represents logger configuration.
type Config struct {
	Level     string // "debug", "info", "warn", "error"
	Format    string // "json", "text"
	Version   string
	AddSource bool
}

// DefaultConfig returns defaults used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Level:   "info",
		Format:  "text",
		Version: "dev",
	}
}

// LogLevel converts the string level to slog.Level. Unknown values map to info.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsJSON returns true if format is JSON.
func (c Config) IsJSON() bool {
	return strings.ToLower(c.Format) == "json"
}
