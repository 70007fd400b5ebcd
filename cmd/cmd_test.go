package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/interautonomy/content-sync/internal/archive"
	"github.com/interautonomy/content-sync/internal/config"
	"github.com/interautonomy/content-sync/internal/store"
)

// fakeApp satisfies the App interface with an in-memory store.
type fakeApp struct {
	cfg    config.Config
	st     *store.MemoryStore
	closed bool
}

func (a *fakeApp) Close()                       { a.closed = true }
func (a *fakeApp) GetLogger() *zap.Logger       { return zap.NewNop() }
func (a *fakeApp) GetConfig() config.Config     { return a.cfg }
func (a *fakeApp) GetStore() store.Store        { return a.st }
func (a *fakeApp) GetArchive() *archive.Archive { return nil }

func TestSyncCommandEndToEnd(t *testing.T) {
	dataDir := t.TempDir()
	writeFile(t, dataDir, "tags.json", `[{"slug": "solar"}]`)
	writeFile(t, dataDir, "items.json", `[{"slug": "river-cleanup"}]`)
	writeFile(t, dataDir, "paragraphs.json", `[
		{"project_slug": "river-cleanup", "slug": "river-cleanup-p1", "order": 1,
		 "translations": {"en": "<p>First</p>"}, "strategies": ["solar"]}
	]`)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfgYAML := `
store:
  provider: memory
input:
  dir: ` + dataDir + `
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o600))

	app := &fakeApp{st: store.NewMemoryStore()}
	prevFactory := newApp
	newApp = func(_ context.Context, cfg config.Config, _ *zap.Logger) (App, error) {
		app.cfg = cfg
		return app, nil
	}
	t.Cleanup(func() { newApp = prevFactory })

	root := newRootCmd()
	root.SetArgs([]string{"sync", "--config", cfgPath})
	require.NoError(t, root.Execute())

	tags, items, paragraphs, links := app.st.Counts()
	assert.Equal(t, 1, tags)
	assert.Equal(t, 1, items)
	assert.Equal(t, 1, paragraphs)
	assert.Equal(t, 1, links)
	assert.True(t, app.closed)
}

func TestSyncCommandFailsWithoutConfig(t *testing.T) {
	prevFactory := newApp
	t.Cleanup(func() { newApp = prevFactory })

	root := newRootCmd()
	root.SetArgs([]string{"sync", "--config", filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, root.Execute())
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}
