package log

import (
	"io"
	stdlog "log"
	"os"
)

// Level represents logging severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelNone disables all logging.
	LevelNone
)

// ParseLevel converts a config string into a Level. Unknown values
// default to LevelInfo.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "none", "disable":
		return LevelNone
	default:
		return LevelInfo
	}
}

// Logger is the logging interface used throughout the service.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// StdLogger implements Logger using the standard library.
type StdLogger struct {
	logger *stdlog.Logger
	level  Level
}

// NewStdLogger creates a logger writing to stderr.
func NewStdLogger(level Level) *StdLogger {
	return &StdLogger{
		logger: stdlog.New(os.Stderr, "[genesis] ", stdlog.LstdFlags),
		level:  level,
	}
}

// NewCustomLogger creates a logger with a custom output writer.
func NewCustomLogger(out io.Writer, level Level) *StdLogger {
	return &StdLogger{
		logger: stdlog.New(out, "[genesis] ", stdlog.LstdFlags),
		level:  level,
	}
}

func (l *StdLogger) Debug(format string, v ...any) {
	if l.level <= LevelDebug {
		l.logger.Printf("[DEBUG] "+format, v...)
	}
}

func (l *StdLogger) Info(format string, v ...any) {
	if l.level <= LevelInfo {
		l.logger.Printf("[INFO] "+format, v...)
	}
}

func (l *StdLogger) Warn(format string, v ...any) {
	if l.level <= LevelWarn {
		l.logger.Printf("[WARN] "+format, v...)
	}
}

func (l *StdLogger) Error(format string, v ...any) {
	if l.level <= LevelError {
		l.logger.Printf("[ERROR] "+format, v...)
	}
}

// Nop is a Logger that discards everything. Useful in tests.
type Nop struct{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}
