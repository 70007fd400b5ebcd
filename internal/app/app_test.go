package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/interautonomy/content-sync/internal/config"
)

func memoryConfig() config.Config {
	return config.Config{
		Store:   config.StoreConfig{Provider: "memory"},
		Content: config.ContentConfig{DefaultStatus: "draft"},
	}
}

func TestNewAppWithMemoryStore(t *testing.T) {
	t.Parallel()

	a, err := NewApp(context.Background(), memoryConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.NotNil(t, a.GetLogger())
	assert.NotNil(t, a.GetStore())
	assert.Nil(t, a.GetArchive())
	assert.Equal(t, "memory", a.GetConfig().Store.Provider)
}

func TestNewAppWithArchive(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.Archive.Enabled = true
	cfg.Archive.Dir = filepath.Join(t.TempDir(), "pages")

	a, err := NewApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.NotNil(t, a.GetArchive())
}

func TestNewAppUnknownProvider(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.Store.Provider = "dynamo"

	_, err := NewApp(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store provider")
}
