package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/taxseq/internal/config"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var data map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &data))
		out = append(out, data)
	}
	return out
}

func TestNewLogger(t *testing.T) {
	cfg := config.NewAppConfigWithOptions(
		config.WithLogLevel("DEBUG"),
		config.WithLogFormat(config.LogFormatJSON),
	)

	logger := NewLogger(cfg)

	require.NotNil(t, logger)
	assert.NotNil(t, logger.Slog())
	assert.NotNil(t, logger.Handler())
}

func TestLogger_LogLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "DEBUG")

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)
	assert.Equal(t, "DEBUG", lines[0]["level"])
	assert.Equal(t, "ERROR", lines[3]["level"])
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "WARN")

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	assert.Len(t, decodeLines(t, &buf), 2)
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	logger.With("component", "paginator").Info("test message")

	lines := decodeLines(t, &buf)
	assert.Equal(t, "paginator", lines[0]["component"])
}

func TestLogger_ContextIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	ctx := WithRunID(context.Background(), "run-123")
	ctx = WithRequestID(ctx, "req-456")
	logger.InfoContext(ctx, "test message")

	lines := decodeLines(t, &buf)
	assert.Equal(t, "run-123", lines[0]["run_id"])
	assert.Equal(t, "req-456", lines[0]["request_id"])
}

func TestLogger_ContextIDs_ReachPlainSlog(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	ctx := WithRequestID(context.Background(), "req-1")
	logger.Slog().With("component", "api").WarnContext(ctx, "slow")

	lines := decodeLines(t, &buf)
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, "api", lines[0]["component"])
}

func TestLogger_NoContextIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	logger.InfoContext(context.Background(), "test message")

	lines := decodeLines(t, &buf)
	assert.NotContains(t, lines[0], "run_id")
	assert.NotContains(t, lines[0], "request_id")
}

func TestContextIDs_NotSet(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RunID(ctx))
	assert.Empty(t, RequestID(ctx))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"DEBUG", "DEBUG"},
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"WARN", "WARN"},
		{"WARNING", "WARN"},
		{"error", "ERROR"},
		{"unknown", "INFO"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input).String())
		})
	}
}

func TestConfigure(t *testing.T) {
	previous := Default()
	t.Cleanup(func() { SetDefaultLogger(previous) })

	cfg := config.NewAppConfigWithOptions(
		config.WithLogLevel("DEBUG"),
		config.WithLogFormat(config.LogFormatJSON),
	)

	logger := Configure(cfg)

	require.NotNil(t, logger)
	assert.Same(t, logger, Default())
}
