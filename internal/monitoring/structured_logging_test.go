package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"", LevelInfo, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLogLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestStructuredLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(LoggerConfig{
		Level:     LevelDebug,
		Format:    FormatJSON,
		Output:    &buf,
		Component: "engine",
	})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	logger.WithContext(ctx).WithFields(map[string]any{"format": "json"}).Info("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "serdex", entry["service"])
	assert.Equal(t, "engine", entry["component"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "json", entry["format"])
	assert.Equal(t, "value", entry["key"])
}

func TestStructuredLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(LoggerConfig{Level: LevelWarn, Format: FormatText, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, slog.LevelDebug, LevelDebug.Level())
	assert.Equal(t, slog.LevelError, LevelError.Level())

	_, err := ParseLogFormat("xml")
	assert.ErrorContains(t, err, "must be one of [json, text, console]")
}

func TestLogHook(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(LoggerConfig{Level: LevelDebug, Format: FormatConsole, Output: &buf})
	hook := NewLogHook(logger)
	ctx := context.Background()

	hook.OnProcessStart(ctx, "serialize", map[string]any{"type": "User"})
	hook.OnError(ctx, "serialize", errors.New("boom"), nil)
	hook.OnProcessComplete(ctx, "serialize", time.Millisecond, errors.New("boom"), nil)
	hook.OnUnknownKey(ctx, "User", "extra")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "serialize started")
	assert.Contains(t, lines[0], "type=User")
	assert.Contains(t, lines[1], "ERROR")
	assert.Contains(t, lines[1], "error=boom")
	assert.Contains(t, lines[2], "ok=false")
	assert.Contains(t, lines[3], "record=User key=extra")
}

func TestConsoleHandler_GroupsAndQuoting(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger(LoggerConfig{Level: LevelInfo, Format: FormatConsole, Output: &buf, Component: "s3"})

	logger.Slog().WithGroup("object").Info("uploaded", "key", "a b.json")
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "service=serdex component=s3")
	assert.Contains(t, out, `object.key="a b.json"`)
	assert.NotContains(t, out, "hidden")
}
