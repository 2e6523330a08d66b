package bridge

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/cortex-bridge/engine"
	"github.com/wippyai/cortex-bridge/plugin"
)

// Environment variables read by NewLogger.
const (
	EnvLogLevel  = "CORTEX_LOG_LEVEL"
	EnvLogFormat = "CORTEX_LOG_FORMAT"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
	installed  sync.Once
)

// Logger returns the bridge's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the bridge's logger.
func SetLogger(l *zap.Logger) {
	logger = l
}

// NewLogger builds a logger from CORTEX_LOG_LEVEL (default info) and
// CORTEX_LOG_FORMAT (json or console, default json). Unknown values fall
// back to the defaults and are reported on the returned logger.
func NewLogger(lookup engine.LookupFunc) (*zap.Logger, error) {
	var warnings []zap.Field

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if raw, ok := lookup(EnvLogLevel); ok {
		parsed, err := zap.ParseAtomicLevel(strings.TrimSpace(raw))
		if err != nil {
			warnings = append(warnings, zap.String(EnvLogLevel, raw))
		} else {
			level = parsed
		}
	}

	cfg := zap.NewProductionConfig()
	if raw, ok := lookup(EnvLogFormat); ok {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "json":
		case "console":
			cfg = zap.NewDevelopmentConfig()
		default:
			warnings = append(warnings, zap.String(EnvLogFormat, raw))
		}
	}
	cfg.Level = level

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		l.Warn("ignoring malformed logging environment", warnings...)
	}
	return l, nil
}

// installLoggers wires one process-wide logger into every package that logs.
// Only the first call has an effect.
func installLoggers(lookup engine.LookupFunc) {
	installed.Do(func() {
		l, err := NewLogger(lookup)
		if err != nil {
			return
		}
		SetLogger(l.Named("bridge"))
		engine.SetLogger(l.Named("engine"))
		plugin.SetLogger(l.Named("plugin"))
	})
}
