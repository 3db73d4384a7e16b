// Package logging builds the structured logger shared across the
// orchestrator. It follows the teacher's bracketed-component-tag discipline
// ("[MCP]", "[Agent]", ...) but carries the tag as a zap field instead of a
// log.Printf prefix, so downstream aggregation can filter by component.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process-wide logger. Level is read from LOG_LEVEL
// ("debug", "info", "warn", "error"); defaults to "info".
func New() *zap.Logger {
	level := zapcore.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			level = zapcore.InfoLevel
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		// Fall back to a bare logger rather than crash the process over
		// a logging misconfiguration.
		return zap.NewNop()
	}
	return logger
}

// Component returns a child logger tagged with the given component name,
// mirroring the teacher's "[Tag] message" convention as a structured field.
func Component(l *zap.Logger, name string) *zap.Logger {
	return l.With(zap.String("component", name))
}
