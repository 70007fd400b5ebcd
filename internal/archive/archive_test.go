// Package archive_test tests the filesystem page archive.
package archive_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interautonomy/content-sync/internal/archive"
)

func TestNew(t *testing.T) {
	t.Run("ValidDir", func(t *testing.T) {
		arc, err := archive.New(t.TempDir())
		require.NoError(t, err)
		assert.NotNil(t, arc)
	})

	t.Run("MissingDir", func(t *testing.T) {
		_, err := archive.New("")
		assert.Error(t, err)
	})

	t.Run("CreatesDir", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "nested", "archive")
		_, err := archive.New(base)
		require.NoError(t, err)

		info, err := os.Stat(base)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("BaseDirIsNotADirectory", func(t *testing.T) {
		tempFile, err := os.CreateTemp(t.TempDir(), "testfile")
		require.NoError(t, err)
		require.NoError(t, tempFile.Close())

		_, err = archive.New(tempFile.Name())
		assert.Error(t, err)
	})
}

func TestSavePage(t *testing.T) {
	base := t.TempDir()
	arc, err := archive.New(base)
	require.NoError(t, err)

	t.Run("ValidSave", func(t *testing.T) {
		body := []byte("<html><body>hola</body></html>")
		path, err := arc.SavePage("es", "river-cleanup", body)
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(base, "es", "river-cleanup.html"), path)
		read, err := os.ReadFile(path) // #nosec G304 -- controlled temp path
		require.NoError(t, err)
		assert.Equal(t, body, read)
	})

	t.Run("EmptyName", func(t *testing.T) {
		_, err := arc.SavePage("es", "", []byte("x"))
		assert.Error(t, err)
	})

	t.Run("MissingLangFallsBack", func(t *testing.T) {
		path, err := arc.SavePage("", "catalog", []byte("x"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(base, "default", "catalog.html"), path)
	})

	t.Run("PathTraversalRejected", func(t *testing.T) {
		_, err := arc.SavePage("es", "../../escape", []byte("x"))
		assert.Error(t, err)
	})
}
