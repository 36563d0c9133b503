package log

import (
	"bytes"
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelNone, ParseLevel("disable"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestStdLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCustomLogger(&buf, LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error %d", 42)

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error 42")
}

func TestGologLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	inner := golog.New()
	inner.SetOutput(&buf)

	logger := NewGologLogger(inner, LevelError)
	logger.Info("hidden")
	logger.Error("visible %s", "problem")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible problem")

	assert.Equal(t, LevelError, logger.GetLevel())
	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.GetLevel())
}
