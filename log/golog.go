package log

import (
	"fmt"

	"github.com/kataras/golog"
)

// GologLogger implements Logger using kataras/golog.
type GologLogger struct {
	logger *golog.Logger
	level  Level
}

var _ Logger = (*GologLogger)(nil)

// NewGologLogger wraps an existing golog.Logger.
func NewGologLogger(logger *golog.Logger, level Level) *GologLogger {
	l := &GologLogger{logger: logger}
	l.SetLevel(level)
	return l
}

// NewDefaultGolog creates a logger backed by the default golog instance.
func NewDefaultGolog(level Level) *GologLogger {
	return NewGologLogger(golog.Default, level)
}

func (l *GologLogger) Debug(format string, v ...any) {
	if l.level <= LevelDebug {
		l.logger.Debug(fmt.Sprintf(format, v...))
	}
}

func (l *GologLogger) Info(format string, v ...any) {
	if l.level <= LevelInfo {
		l.logger.Info(fmt.Sprintf(format, v...))
	}
}

func (l *GologLogger) Warn(format string, v ...any) {
	if l.level <= LevelWarn {
		l.logger.Warn(fmt.Sprintf(format, v...))
	}
}

func (l *GologLogger) Error(format string, v ...any) {
	if l.level <= LevelError {
		l.logger.Error(fmt.Sprintf(format, v...))
	}
}

// SetLevel updates the level on both the wrapper and the underlying
// golog logger.
func (l *GologLogger) SetLevel(level Level) {
	l.level = level

	gologLevel := "info"
	switch level {
	case LevelDebug:
		gologLevel = "debug"
	case LevelInfo:
		gologLevel = "info"
	case LevelWarn:
		gologLevel = "warn"
	case LevelError:
		gologLevel = "error"
	case LevelNone:
		gologLevel = "disable"
	}
	l.logger.SetLevel(gologLevel)
}

// GetLevel returns the current level.
func (l *GologLogger) GetLevel() Level {
	return l.level
}
