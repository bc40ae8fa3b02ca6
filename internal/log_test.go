package internal

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}

func TestLoggerLevelsAndComponent(t *testing.T) {
	buf := captureLog(t)

	logger := NewLogger(LogLevelWarn).WithComponent("interval")
	logger.Info("hidden %d", 1)
	logger.Warn("resamples dropped: %d", 3)

	assert.Equal(t, "[WARN] [interval] resamples dropped: 3\n", buf.String())
	assert.Equal(t, LogLevelWarn, logger.GetLevel())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" debug ", LogLevelInfo))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE", LogLevelInfo))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose", LogLevelInfo))
	assert.Equal(t, LogLevelError, ParseLogLevel("", LogLevelError))
}
