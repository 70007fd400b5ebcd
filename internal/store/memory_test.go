package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interautonomy/content-sync/internal/content"
	"github.com/interautonomy/content-sync/internal/store"
)

func TestMemoryStoreUpsertTagStableID(t *testing.T) {
	t.Parallel()

	m := store.NewMemoryStore()
	ctx := context.Background()

	first, err := m.UpsertTag(ctx, store.TagRow{Slug: "solar", Status: content.StatusDraft})
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := m.UpsertTag(ctx, store.TagRow{Slug: "solar", Status: content.StatusPublished})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	tags, _, _, _ := m.Counts()
	assert.Equal(t, 1, tags)

	row, ok := m.TagRowBySlug("solar")
	require.True(t, ok)
	assert.Equal(t, content.StatusPublished, row.Status)
}

func TestMemoryStoreRevival(t *testing.T) {
	t.Parallel()

	m := store.NewMemoryStore()
	ctx := context.Background()

	_, err := m.UpsertTag(ctx, store.TagRow{Slug: "solar"})
	require.NoError(t, err)

	m.SoftDeleteTag("solar")
	require.NotNil(t, m.TagDeletedAt("solar"))

	_, err = m.UpsertTag(ctx, store.TagRow{Slug: "solar"})
	require.NoError(t, err)
	assert.Nil(t, m.TagDeletedAt("solar"))
}

func TestMemoryStoreItemKeepsFirstPublishDate(t *testing.T) {
	t.Parallel()

	m := store.NewMemoryStore()
	ctx := context.Background()

	first := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := m.UpsertItem(ctx, store.ItemRow{Slug: "river-cleanup", PublishedAt: &first})
	require.NoError(t, err)

	later := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err = m.UpsertItem(ctx, store.ItemRow{Slug: "river-cleanup", PublishedAt: &later})
	require.NoError(t, err)

	got := m.ItemPublishedAt("river-cleanup")
	require.NotNil(t, got)
	assert.Equal(t, first, *got)
}

func TestMemoryStoreLookupNotFound(t *testing.T) {
	t.Parallel()

	m := store.NewMemoryStore()
	ctx := context.Background()

	_, err := m.TagIDBySlug(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = m.ItemIDBySlug(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = m.ParagraphIDByKey(ctx, "item-1", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryStoreLinkDeduplicates(t *testing.T) {
	t.Parallel()

	m := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.LinkParagraphTag(ctx, "p1", "t1"))
	require.NoError(t, m.LinkParagraphTag(ctx, "p1", "t1"))
	require.NoError(t, m.LinkParagraphTag(ctx, "p1", "t2"))

	_, _, _, links := m.Counts()
	assert.Equal(t, 2, links)
}

func TestMemoryStoreEmptyUpsertIDMode(t *testing.T) {
	t.Parallel()

	m := store.NewMemoryStore()
	m.ReturnEmptyUpsertID = true
	ctx := context.Background()

	id, err := m.UpsertTag(ctx, store.TagRow{Slug: "solar"})
	require.NoError(t, err)
	assert.Empty(t, id)

	// The row exists, so the fallback lookup resolves it.
	resolved, err := m.TagIDBySlug(ctx, "solar")
	require.NoError(t, err)
	assert.NotEmpty(t, resolved)
}
