// Package store defines the relational persistence interface for synced
// content. The sync pipeline only needs upsert-by-unique-key and
// select-by-key shapes; decoupling it from Postgres lets the orchestrator
// run against the in-memory implementation in tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/interautonomy/content-sync/internal/content"
)

// ErrNotFound is returned by the select-by-key operations when no row
// matches the key.
var ErrNotFound = errors.New("store: row not found")

// TagRow is the persistable form of a category tag. DeletedAt is always
// written as NULL so a soft-deleted row is revived by re-sync.
type TagRow struct {
	Slug         string
	LogoURL      string
	HeroImageURL string
	Translations map[string]content.TagTranslation
	Status       content.Status
}

// ItemRow is the persistable form of a parent item.
type ItemRow struct {
	Slug            string
	ThumbnailURL    string
	ExternalLinkURL string
	LocationMapURL  string
	GalleryURLs     []string
	Translations    map[string]content.ItemTranslation
	Status          content.Status
	// PublishedAt is only a candidate value: the store keeps an already-set
	// publish date, so the date reflects first publication, not last sync.
	PublishedAt *time.Time
}

// ParagraphRow is the persistable form of a content block. The
// (ItemID, Key) pair is its unique key.
type ParagraphRow struct {
	ItemID       string
	Key          string
	SortOrder    int
	Translations map[string]string
}

// Store is the persistence contract used by the sync pipeline.
//
// The upsert operations return the affected row's id. An implementation
// whose conflict path yields no representation may return an empty id with
// a nil error; callers then fall back to the matching select-by-key call.
type Store interface {
	UpsertTag(ctx context.Context, row TagRow) (string, error)
	TagIDBySlug(ctx context.Context, slug string) (string, error)

	UpsertItem(ctx context.Context, row ItemRow) (string, error)
	ItemIDBySlug(ctx context.Context, slug string) (string, error)

	UpsertParagraph(ctx context.Context, row ParagraphRow) (string, error)
	ParagraphIDByKey(ctx context.Context, itemID, key string) (string, error)

	// LinkParagraphTag inserts the (paragraph_id, tag_id) association row.
	// The row has no payload, so an existing pair is a no-op.
	LinkParagraphTag(ctx context.Context, paragraphID, tagID string) error

	Close()
}
