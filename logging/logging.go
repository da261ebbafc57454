// Package logging builds the zap logger shared by the commands.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger to build.
type Options struct {
	// File receives the log. Without one, debug logs go to stderr when
	// AllowStderr is set and everything else is discarded.
	File  string
	Level string
	// Debug switches to the human readable development encoder at debug
	// level.
	Debug bool
	// AllowStderr is false while the terminal editor owns the screen.
	AllowStderr bool
}

// New returns a logger for opts. Without a destination it returns a no-op
// logger.
func New(opts Options) (*zap.Logger, error) {
	output := opts.File
	if output == "" {
		if !opts.AllowStderr || !opts.Debug {
			return zap.NewNop(), nil
		}
		output = "stderr"
	}

	var config zap.Config
	if opts.Debug {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		if output == "stderr" {
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	} else {
		config = zap.NewProductionConfig()
		level := zap.InfoLevel
		if opts.Level != "" {
			parsed, err := zapcore.ParseLevel(opts.Level)
			if err != nil {
				return nil, fmt.Errorf("log level: %w", err)
			}
			level = parsed
		}
		config.Level = zap.NewAtomicLevelAt(level)
		config.Sampling = nil
	}

	config.OutputPaths = []string{output}
	config.ErrorOutputPaths = []string{output}

	logger, err := config.Build(zap.AddCaller())
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
