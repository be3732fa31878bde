package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Production emits JSON lines for the
// log pipeline; development keeps the readable text handler. LOG_FORMAT
// overrides the environment-based choice.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if useJSONLogs(cfg) {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func useJSONLogs(cfg *Config) bool {
	if cfg == nil {
		return false
	}
	switch cfg.LogFormat {
	case "json":
		return true
	case "text":
		return false
	}
	return cfg.IsProduction()
}
