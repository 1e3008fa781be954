package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/abgdnv/checklist/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_toLevel(t *testing.T) {
	testCases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, toLevel(tc.in))
		})
	}
}

func Test_NewLoggerTo_AddsRequestID(t *testing.T) {
	// given
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "info")
	ctx := web.WithRequestID(context.Background(), "req-1")
	// when
	logger.InfoContext(ctx, "hello")
	logger.DebugContext(ctx, "hidden")
	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "req-1", record["request_id"])
}
