// Package archive persists raw page snapshots to the local filesystem so a
// scrape can be replayed or inspected without refetching the site.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Archive writes fetched pages under a base directory, one subdirectory per
// language.
type Archive struct {
	baseDir string
}

// New creates a filesystem-backed archive rooted at baseDir.
func New(baseDir string) (*Archive, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	info, err := os.Stat(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(baseDir, 0o750); mkErr != nil {
				return nil, fmt.Errorf("failed to create base directory: %w", mkErr)
			}
		} else {
			return nil, fmt.Errorf("failed to stat base directory: %w", err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	testFile := filepath.Join(baseDir, ".writable_test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("base directory is not writable: %w", err)
	}
	if err := os.Remove(testFile); err != nil {
		return nil, fmt.Errorf("failed to clean up test file: %w", err)
	}

	return &Archive{baseDir: baseDir}, nil
}

// SavePage writes one fetched page under <base>/<lang>/<name>.html and
// returns the file path. name is slug-shaped; anything that would escape the
// base directory is rejected.
func (a *Archive) SavePage(lang, name string, body []byte) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("page name is required")
	}
	if lang == "" {
		lang = "default"
	}

	fullPath := filepath.Join(a.baseDir, lang, name+".html")

	cleanBase := filepath.Clean(a.baseDir)
	cleanFull := filepath.Clean(fullPath)
	if !strings.HasPrefix(cleanFull, cleanBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected")
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", fmt.Errorf("failed to create parent directories: %w", err)
	}

	if err := os.WriteFile(fullPath, body, 0o600); err != nil {
		return "", fmt.Errorf("failed to write page: %w", err)
	}

	return fullPath, nil
}
