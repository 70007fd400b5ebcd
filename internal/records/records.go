// Package records loads scraped content batches from JSON files on disk.
// Each file holds one flat array of records; a malformed file fails the
// load, while an individually invalid record is logged and dropped so the
// rest of the batch still syncs.
package records

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/interautonomy/content-sync/internal/config"
	"github.com/interautonomy/content-sync/internal/content"
)

// Loader reads record files into a content.Batch.
type Loader struct {
	cfg config.InputConfig
	log *zap.Logger
}

// NewLoader constructs a Loader over the configured input directory.
func NewLoader(cfg config.InputConfig, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{cfg: cfg, log: logger}
}

// Load reads the three record files and assembles the batch. A missing
// paragraphs file is tolerated since tag-only refreshes are a normal run
// shape; missing tags or items files are errors.
func (l *Loader) Load() (content.Batch, error) {
	var batch content.Batch

	tags, err := readFile[content.TagRecord](filepath.Join(l.cfg.Dir, l.cfg.TagsFile))
	if err != nil {
		return batch, fmt.Errorf("load tags: %w", err)
	}
	batch.Tags = filterValid(tags, "tag", l.log)

	items, err := readFile[content.ItemRecord](filepath.Join(l.cfg.Dir, l.cfg.ItemsFile))
	if err != nil {
		return batch, fmt.Errorf("load items: %w", err)
	}
	batch.Items = filterValid(items, "item", l.log)

	paragraphs, err := readFile[content.ParagraphRecord](filepath.Join(l.cfg.Dir, l.cfg.ParagraphsFile))
	if err != nil {
		if os.IsNotExist(err) {
			l.log.Warn("paragraphs file missing, syncing without paragraphs",
				zap.String("path", filepath.Join(l.cfg.Dir, l.cfg.ParagraphsFile)))
			return batch, nil
		}
		return batch, fmt.Errorf("load paragraphs: %w", err)
	}
	batch.Paragraphs = filterValid(paragraphs, "paragraph", l.log)

	return batch, nil
}

// Save writes a batch back to the configured record files, one indented
// JSON array per file. The scrape command uses this to hand a snapshot to
// later sync runs.
func Save(cfg config.InputConfig, batch content.Batch) error {
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return fmt.Errorf("create input dir: %w", err)
	}
	files := []struct {
		name string
		data any
	}{
		{cfg.TagsFile, batch.Tags},
		{cfg.ItemsFile, batch.Items},
		{cfg.ParagraphsFile, batch.Paragraphs},
	}
	for _, f := range files {
		data, err := json.MarshalIndent(f.data, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.name, err)
		}
		if err := os.WriteFile(filepath.Join(cfg.Dir, f.name), data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}

// validatable is the subset of record behavior the loader needs.
type validatable interface {
	Validate() error
}

func readFile[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

func filterValid[T validatable](records []T, kind string, log *zap.Logger) []T {
	kept := make([]T, 0, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			log.Warn("dropping invalid record",
				zap.String("kind", kind),
				zap.Error(err),
			)
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}
