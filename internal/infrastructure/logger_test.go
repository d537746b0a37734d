package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pidimsmart/internal/config"
)

func readLastEntry(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	require.NoError(t, CloseLogFile())
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestInitializeLoggerToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "nested", "app.log")
	logger, err := InitializeLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "file", FilePath: logFile})
	require.NoError(t, err)

	logger.InfoContext(WithTraceID(context.Background(), "trace-123"), "cache refreshed", "rows", 42)

	entry := readLastEntry(t, logFile)
	assert.Equal(t, "cache refreshed", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, float64(42), entry["rows"])
	assert.Equal(t, "trace-123", entry["trace_id"])
	assert.Equal(t, config.AppName, entry["app"])
	assert.NotNil(t, entry["source"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level string
		debug bool
		warn  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warning", false, true},
		{"error", false, false},
		{"bogus", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewTextLogger(&buf, tt.level)
			logger.Debug("debug line")
			logger.Warn("warn line")

			assert.Equal(t, tt.debug, strings.Contains(buf.String(), "debug line"))
			assert.Equal(t, tt.warn, strings.Contains(buf.String(), "warn line"))
		})
	}
}

func TestCloseLogFileIdempotent(t *testing.T) {
	_, err := InitializeLogger(config.LoggingConfig{Output: "both", FilePath: filepath.Join(t.TempDir(), "a.log")})
	require.NoError(t, err)

	assert.NoError(t, CloseLogFile())
	assert.NoError(t, CloseLogFile())
}

func TestInitializeLoggerBadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := InitializeLogger(config.LoggingConfig{Output: "file", FilePath: filepath.Join(blocker, "app.log")})
	assert.ErrorContains(t, err, "create log directory")
}

func TestTextLoggerInjectsTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, "info").With("component", "reportgen")

	logger.InfoContext(WithTraceID(context.Background(), "cli-trace"), "report written", "path", "out.xlsx")

	out := buf.String()
	assert.Contains(t, out, "trace_id=cli-trace")
	assert.Contains(t, out, "component=reportgen")
	assert.Equal(t, "", GetTraceID(context.Background()))
}
