// Package logging gates diagnostic output by an exact severity tier.
//
// Unlike a conventional cascade, a message is emitted only when its tier equals
// the configured threshold. Tier 4 (errors) is additionally always shown when
// the threshold is 4. Rendering is delegated to zap.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a severity tier, 1 through 5.
type Level int

const (
	LevelNotice     Level = 1
	LevelConnection Level = 2
	LevelInfo       Level = 3
	LevelError      Level = 4
	LevelVerbose    Level = 5

	// DefaultLevel shows only errors.
	DefaultLevel = LevelError
)

// MinLevel and MaxLevel bound a valid threshold.
const (
	MinLevel = LevelNotice
	MaxLevel = LevelVerbose
)

func (l Level) String() string {
	switch l {
	case LevelNotice:
		return "notice"
	case LevelConnection:
		return "connection"
	case LevelInfo:
		return "info"
	case LevelError:
		return "error"
	case LevelVerbose:
		return "verbose"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Valid reports whether l is within [MinLevel, MaxLevel].
func (l Level) Valid() bool {
	return l >= MinLevel && l <= MaxLevel
}

// zapLevel is used for rendering only; filtering happens in Enabled.
func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelNotice:
		return zapcore.WarnLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.DebugLevel
	}
}

// Logger emits messages whose tier passes the threshold filter.
type Logger struct {
	threshold Level
	base      *zap.Logger
}

// New wraps base with the given threshold.
func New(base *zap.Logger, threshold Level) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{threshold: threshold, base: base}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return New(zap.NewNop(), DefaultLevel)
}

// Threshold returns the configured tier.
func (l *Logger) Threshold() Level {
	return l.threshold
}

// Enabled applies the two-rule filter: exact match, or the always-on error tier.
func (l *Logger) Enabled(level Level) bool {
	if level == l.threshold {
		return true
	}
	return level == LevelError && l.threshold == LevelError
}

// Log emits msg at the given tier if it passes the filter.
func (l *Logger) Log(level Level, msg string, fields ...zap.Field) {
	if !l.Enabled(level) {
		return
	}
	if ce := l.base.Check(level.zapLevel(), msg); ce != nil {
		ce.Write(fields...)
	}
}

func (l *Logger) Notice(msg string, fields ...zap.Field) { l.Log(LevelNotice, msg, fields...) }

func (l *Logger) Connection(msg string, fields ...zap.Field) { l.Log(LevelConnection, msg, fields...) }

func (l *Logger) Info(msg string, fields ...zap.Field) { l.Log(LevelInfo, msg, fields...) }

func (l *Logger) Error(msg string, fields ...zap.Field) { l.Log(LevelError, msg, fields...) }

func (l *Logger) Verbose(msg string, fields ...zap.Field) { l.Log(LevelVerbose, msg, fields...) }

// Sync flushes buffered output.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
