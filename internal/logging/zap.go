package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZap builds the console logger. The zap core is opened at Debug so that
// the tier gate is the only filter. An empty path writes to stdout.
func NewZap(path string) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	config.Development = false
	config.DisableStacktrace = true
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	if path != "" {
		config.OutputPaths = []string{path}
	}
	return config.Build()
}

// NewFromPath builds a gated logger, falling back to stdout if the file
// cannot be opened.
func NewFromPath(path string, threshold Level) *Logger {
	base, err := NewZap(path)
	if err != nil {
		base, err = NewZap("")
		if err != nil {
			base = zap.NewNop()
		}
	}
	return New(base, threshold)
}
