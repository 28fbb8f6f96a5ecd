package internal

import (
	"io"
	"log/slog"
	"time"
)

// ServiceName tags every log line so aggregated logs can be filtered.
const ServiceName = "shippor"

// ParseLevel maps a LOG_LEVEL value to a slog level. Unknown values report
// false and resolve to Info.
func ParseLevel(level string) (slog.Level, bool) {
	switch level {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// NewLogger builds the process logger: JSON with RFC3339Nano timestamps and
// source locations in prod, human readable text elsewhere.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	lvl, ok := ParseLevel(level)
	if !ok {
		slog.Default().Warn("Invalid log level. Using default level: info", slog.String("value", level))
	}

	var h slog.Handler
	if env == "prod" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     lvl,
			AddSource: true,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && len(groups) == 0 {
					return slog.String(slog.TimeKey, a.Value.Time().UTC().Format(time.RFC3339Nano))
				}
				return a
			},
		})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	}

	return slog.New(h).With("service", ServiceName, "env", env)
}
