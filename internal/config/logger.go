package config

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. level is a zap level name; when
// empty LOG_LEVEL is consulted, then info. Output is JSON unless stderr
// is a terminal.
func NewLogger(level string) (logr.Logger, *zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = ""
	cfg.Sampling = nil

	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return logr.Discard(), nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level.SetLevel(lvl)
	}

	if isatty.IsTerminal(os.Stderr.Fd()) {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return zapr.NewLogger(zl), zl, nil
}
