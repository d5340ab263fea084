// Package logging builds the zap loggers used by the netvhdl command.
package logging

import (
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger at the given level. JSON output uses the zap
// production encoder; otherwise a compact console encoder writes to stderr so
// command output on stdout stays clean.
func New(level string, json bool) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "invalid log level %q", level),
			"use one of debug, info, warn, error")
	}

	if json {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.OutputPaths = []string{"stderr"}
		logger, err := cfg.Build()
		if err != nil {
			return nil, errors.Wrap(err, "failed to build json logger")
		}
		return logger, nil
	}

	return zap.New(zapcore.NewCore(
		consoleEncoder(),
		zapcore.AddSync(os.Stderr),
		lvl,
	)), nil
}

func consoleEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.CallerKey = ""
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}
