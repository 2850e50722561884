package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/exp/slog"

	"wesync/internal/app/server/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		env           string
		expectedLevel slog.Level
	}{
		{
			name:          "local environment",
			env:           config.EnvLocal,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "dev environment",
			env:           config.EnvDev,
			expectedLevel: slog.LevelDebug,
		},
		{
			name:          "prod environment",
			env:           config.EnvProd,
			expectedLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.env)
			require.NotNil(t, logger)
			ctx := context.Background()
			assert.Equal(t, tt.expectedLevel <= slog.LevelDebug, logger.Enabled(ctx, slog.LevelDebug))
			assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
		})
	}
}

func TestSetupPrettySlog(t *testing.T) {
	logger := setupPrettySlog()
	require.NotNil(t, logger)

	ctx := context.Background()
	assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
	logger.With("component", "test").Info("pretty output", "folder", "a-conv-b")
}

func TestWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wesync.log")

	logger := New(config.EnvProd, WithFile(path))
	logger.With("component", "test").Info("written to file", "username", "alice")
	logger.Debug("filtered by level")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written to file"`)
	assert.Contains(t, string(data), `"component":"test"`)
	assert.NotContains(t, string(data), "filtered by level")
}
