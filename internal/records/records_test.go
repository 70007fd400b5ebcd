package records

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/interautonomy/content-sync/internal/config"
	"github.com/interautonomy/content-sync/internal/content"
)

func writeInput(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func testInputConfig(dir string) config.InputConfig {
	return config.InputConfig{
		Dir:            dir,
		TagsFile:       "tags.json",
		ItemsFile:      "items.json",
		ParagraphsFile: "paragraphs.json",
	}
}

func TestLoadFullBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeInput(t, dir, "tags.json", `[
		{"slug": "solar", "logo_url": "https://cdn.example.org/solar.svg",
		 "translations": {"en": {"title": "Solar", "description_html": "<p>Sun</p>"}}}
	]`)
	writeInput(t, dir, "items.json", `[
		{"slug": "river-cleanup", "thumbnail": "https://cdn.example.org/r.jpg",
		 "translations": {"en": {"title": "River Cleanup", "introduction": "", "short_description": ""}}}
	]`)
	writeInput(t, dir, "paragraphs.json", `[
		{"project_slug": "river-cleanup", "slug": "river-cleanup-p1", "order": 1,
		 "translations": {"en": "<p>First</p>"}, "strategies": ["solar"]}
	]`)

	batch, err := NewLoader(testInputConfig(dir), zap.NewNop()).Load()
	require.NoError(t, err)

	require.Len(t, batch.Tags, 1)
	require.Len(t, batch.Items, 1)
	require.Len(t, batch.Paragraphs, 1)
	assert.Equal(t, "solar", batch.Tags[0].Slug)
	assert.Equal(t, "river-cleanup", batch.Paragraphs[0].ItemSlug)
	assert.Equal(t, []string{"solar"}, batch.Paragraphs[0].TagSlugs)
}

func TestLoadDropsInvalidRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeInput(t, dir, "tags.json", `[
		{"slug": "solar"},
		{"slug": ""}
	]`)
	writeInput(t, dir, "items.json", `[
		{"slug": "river-cleanup"},
		{"slug": "bad-date", "published_at": "31/12/2024"}
	]`)
	writeInput(t, dir, "paragraphs.json", `[
		{"project_slug": "river-cleanup", "slug": "river-cleanup-p1", "order": 1},
		{"project_slug": "", "slug": "orphan-p1", "order": 1}
	]`)

	batch, err := NewLoader(testInputConfig(dir), zap.NewNop()).Load()
	require.NoError(t, err)

	assert.Len(t, batch.Tags, 1)
	assert.Len(t, batch.Items, 1)
	assert.Len(t, batch.Paragraphs, 1)
}

func TestLoadToleratesMissingParagraphsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeInput(t, dir, "tags.json", `[{"slug": "solar"}]`)
	writeInput(t, dir, "items.json", `[{"slug": "river-cleanup"}]`)

	batch, err := NewLoader(testInputConfig(dir), zap.NewNop()).Load()
	require.NoError(t, err)
	assert.Empty(t, batch.Paragraphs)
	assert.Len(t, batch.Tags, 1)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "data")
	cfg := testInputConfig(dir)
	batch := content.Batch{
		Tags:  []content.TagRecord{{Slug: "solar"}},
		Items: []content.ItemRecord{{Slug: "river-cleanup"}},
		Paragraphs: []content.ParagraphRecord{{
			ItemSlug:     "river-cleanup",
			Key:          "river-cleanup-p1",
			SortOrder:    1,
			Translations: map[string]string{"en": "<p>First</p>"},
			TagSlugs:     []string{"solar"},
		}},
	}

	require.NoError(t, Save(cfg, batch))

	loaded, err := NewLoader(cfg, zap.NewNop()).Load()
	require.NoError(t, err)
	assert.Equal(t, batch.Tags, loaded.Tags)
	assert.Equal(t, batch.Items, loaded.Items)
	assert.Equal(t, batch.Paragraphs, loaded.Paragraphs)
}

func TestLoadFailsOnMissingTagsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeInput(t, dir, "items.json", `[]`)

	_, err := NewLoader(testInputConfig(dir), zap.NewNop()).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load tags")
}

func TestLoadFailsOnMalformedJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeInput(t, dir, "tags.json", `{"not": "an array"`)

	_, err := NewLoader(testInputConfig(dir), zap.NewNop()).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode tags.json")
}
