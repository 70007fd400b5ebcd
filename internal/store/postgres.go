package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig controls the connection pool behind the Postgres store.
//
// Expected schema:
//
//	CREATE TABLE tags (
//	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    slug TEXT NOT NULL UNIQUE,
//	    logo_url TEXT,
//	    hero_image_url TEXT,
//	    translations JSONB NOT NULL DEFAULT '{}',
//	    status TEXT NOT NULL DEFAULT 'draft',
//	    deleted_at TIMESTAMPTZ
//	);
//	CREATE TABLE items (
//	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    slug TEXT NOT NULL UNIQUE,
//	    thumbnail_url TEXT,
//	    external_link_url TEXT,
//	    location_map_url TEXT,
//	    gallery_urls TEXT[] NOT NULL DEFAULT '{}',
//	    translations JSONB NOT NULL DEFAULT '{}',
//	    status TEXT NOT NULL DEFAULT 'draft',
//	    published_at DATE,
//	    deleted_at TIMESTAMPTZ
//	);
//	CREATE TABLE paragraphs (
//	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    item_id UUID NOT NULL REFERENCES items(id),
//	    paragraph_key TEXT NOT NULL,
//	    sort_order INT NOT NULL DEFAULT 0,
//	    translations JSONB NOT NULL DEFAULT '{}',
//	    deleted_at TIMESTAMPTZ,
//	    UNIQUE (item_id, paragraph_key)
//	);
//	CREATE TABLE paragraph_tags (
//	    paragraph_id UUID NOT NULL REFERENCES paragraphs(id),
//	    tag_id UUID NOT NULL REFERENCES tags(id),
//	    PRIMARY KEY (paragraph_id, tag_id)
//	);
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool pgxQuerier
}

// NewPostgresStore connects a pool using the provided config.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStoreWithPool constructs a store from an existing pool
// (primarily for testing with pgxmock).
func NewPostgresStoreWithPool(pool pgxQuerier) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *PostgresStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const upsertTagSQL = `
INSERT INTO tags (slug, logo_url, hero_image_url, translations, status, deleted_at)
VALUES ($1, $2, $3, $4, $5, NULL)
ON CONFLICT (slug) DO UPDATE SET
	logo_url = EXCLUDED.logo_url,
	hero_image_url = EXCLUDED.hero_image_url,
	translations = EXCLUDED.translations,
	status = EXCLUDED.status,
	deleted_at = NULL
RETURNING id`

// UpsertTag inserts or updates a tag keyed on slug and returns its id.
func (s *PostgresStore) UpsertTag(ctx context.Context, row TagRow) (string, error) {
	if row.Slug == "" {
		return "", fmt.Errorf("tag slug is required")
	}
	translations, err := marshalTranslations(row.Translations)
	if err != nil {
		return "", fmt.Errorf("tag %q: %w", row.Slug, err)
	}
	var id string
	err = s.pool.QueryRow(ctx, upsertTagSQL,
		row.Slug,
		row.LogoURL,
		row.HeroImageURL,
		translations,
		string(row.Status),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert tag %q: %w", row.Slug, err)
	}
	return id, nil
}

// TagIDBySlug returns the id of the tag with the given slug.
func (s *PostgresStore) TagIDBySlug(ctx context.Context, slug string) (string, error) {
	return s.idByKey(ctx, `SELECT id FROM tags WHERE slug = $1`, "tag", slug)
}

const upsertItemSQL = `
INSERT INTO items (
	slug, thumbnail_url, external_link_url, location_map_url,
	gallery_urls, translations, status, published_at, deleted_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL)
ON CONFLICT (slug) DO UPDATE SET
	thumbnail_url = EXCLUDED.thumbnail_url,
	external_link_url = EXCLUDED.external_link_url,
	location_map_url = EXCLUDED.location_map_url,
	gallery_urls = EXCLUDED.gallery_urls,
	translations = EXCLUDED.translations,
	status = EXCLUDED.status,
	published_at = COALESCE(items.published_at, EXCLUDED.published_at),
	deleted_at = NULL
RETURNING id`

// UpsertItem inserts or updates an item keyed on slug and returns its id.
// An already-set published_at is kept over the candidate value.
func (s *PostgresStore) UpsertItem(ctx context.Context, row ItemRow) (string, error) {
	if row.Slug == "" {
		return "", fmt.Errorf("item slug is required")
	}
	translations, err := marshalTranslations(row.Translations)
	if err != nil {
		return "", fmt.Errorf("item %q: %w", row.Slug, err)
	}
	gallery := row.GalleryURLs
	if gallery == nil {
		gallery = []string{}
	}
	var id string
	err = s.pool.QueryRow(ctx, upsertItemSQL,
		row.Slug,
		row.ThumbnailURL,
		row.ExternalLinkURL,
		row.LocationMapURL,
		gallery,
		translations,
		string(row.Status),
		row.PublishedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert item %q: %w", row.Slug, err)
	}
	return id, nil
}

// ItemIDBySlug returns the id of the item with the given slug.
func (s *PostgresStore) ItemIDBySlug(ctx context.Context, slug string) (string, error) {
	return s.idByKey(ctx, `SELECT id FROM items WHERE slug = $1`, "item", slug)
}

const upsertParagraphSQL = `
INSERT INTO paragraphs (item_id, paragraph_key, sort_order, translations, deleted_at)
VALUES ($1, $2, $3, $4, NULL)
ON CONFLICT (item_id, paragraph_key) DO UPDATE SET
	sort_order = EXCLUDED.sort_order,
	translations = EXCLUDED.translations,
	deleted_at = NULL
RETURNING id`

// UpsertParagraph inserts or updates a paragraph keyed on
// (item_id, paragraph_key) and returns its id.
func (s *PostgresStore) UpsertParagraph(ctx context.Context, row ParagraphRow) (string, error) {
	if row.ItemID == "" || row.Key == "" {
		return "", fmt.Errorf("paragraph item id and key are required")
	}
	translations, err := marshalTranslations(row.Translations)
	if err != nil {
		return "", fmt.Errorf("paragraph %q: %w", row.Key, err)
	}
	var id string
	err = s.pool.QueryRow(ctx, upsertParagraphSQL,
		row.ItemID,
		row.Key,
		row.SortOrder,
		translations,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert paragraph %q: %w", row.Key, err)
	}
	return id, nil
}

// ParagraphIDByKey returns the id of the paragraph with the given key under
// the given item.
func (s *PostgresStore) ParagraphIDByKey(ctx context.Context, itemID, key string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM paragraphs WHERE item_id = $1 AND paragraph_key = $2`,
		itemID, key,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select paragraph %q: %w", key, err)
	}
	return id, nil
}

const linkSQL = `
INSERT INTO paragraph_tags (paragraph_id, tag_id)
VALUES ($1, $2)
ON CONFLICT (paragraph_id, tag_id) DO NOTHING`

// LinkParagraphTag inserts the association row; an existing pair is a no-op.
func (s *PostgresStore) LinkParagraphTag(ctx context.Context, paragraphID, tagID string) error {
	if paragraphID == "" || tagID == "" {
		return fmt.Errorf("paragraph id and tag id are required")
	}
	if _, err := s.pool.Exec(ctx, linkSQL, paragraphID, tagID); err != nil {
		return fmt.Errorf("link paragraph %s to tag %s: %w", paragraphID, tagID, err)
	}
	return nil
}

func (s *PostgresStore) idByKey(ctx context.Context, query, kind, key string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, query, key).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select %s %q: %w", kind, key, err)
	}
	return id, nil
}

// marshalTranslations serializes a translations map for a JSONB column,
// writing {} rather than null for an absent map.
func marshalTranslations[T any](m map[string]T) ([]byte, error) {
	if m == nil {
		m = map[string]T{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal translations: %w", err)
	}
	return data, nil
}
