package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saishi/internal/log"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger("debug", "json", log.ComponentWorker)
	assert.Equal(t, log.ComponentWorker, logger.Component())
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.Same(t, logger.Logger, slog.Default())

	logger = SetupLogger("loud", "text", log.ComponentApp)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug), "unknown level falls back to info")
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestLoadAndValidateConfig(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "saishi.db"))
	t.Setenv("LOG_LEVEL", "warn")

	cfg, logger := LoadAndValidateConfig(log.ComponentApp)
	require.NotNil(t, cfg)
	assert.Equal(t, "sqlite", cfg.DataBackend)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestInitBackend(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Setenv("DATA_BACKEND", "memory")
	cfg, logger := LoadAndValidateConfig(log.ComponentApp)

	factory, bcfg, res := InitBackend(context.Background(), logger, cfg)
	require.NotNil(t, factory)
	assert.Equal(t, "memory", bcfg.Type.String())
	require.NotNil(t, res.Store)
	assert.NoError(t, res.Cleanup())
}
