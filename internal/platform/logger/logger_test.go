package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardforge/internal/config"
)

func TestSetupParsesLevels(t *testing.T) {
	tests := []struct {
		configured string
		levelOK    slog.Level
		levelOff   slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"bogus", slog.LevelInfo, slog.LevelDebug}, // falls back to info
	}

	for _, tc := range tests {
		t.Run(tc.configured, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: tc.configured})
			require.NoError(t, err)
			require.NotNil(t, logger)

			ctx := context.Background()
			assert.True(t, logger.Enabled(ctx, tc.levelOK))
			assert.False(t, logger.Enabled(ctx, tc.levelOff))
		})
	}
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	stored := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := context.Background()

	_, ok := FromContext(ctx)
	assert.False(t, ok)

	ctx = WithLogger(ctx, stored)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, stored, got)

	assert.Same(t, stored, FromContextOrDefault(ctx, nil))

	fallback := slog.New(slog.NewJSONHandler(&buf, nil))
	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), FromContextOrDefault(context.Background(), nil))
}
