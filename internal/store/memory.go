package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store. It backs orchestrator tests and the
// "memory" provider for dry runs; rows live only for the process lifetime.
type MemoryStore struct {
	mu sync.Mutex

	tags       map[string]*memTag       // slug -> row
	items      map[string]*memItem      // slug -> row
	paragraphs map[string]*memParagraph // itemID+"\x00"+key -> row
	links      map[string]struct{}      // paragraphID+"\x00"+tagID

	// ReturnEmptyUpsertID makes every upsert return "" so callers exercise
	// the select-by-key fallback path.
	ReturnEmptyUpsertID bool
}

type memTag struct {
	id        string
	row       TagRow
	deletedAt *time.Time
}

type memItem struct {
	id          string
	row         ItemRow
	publishedAt *time.Time
	deletedAt   *time.Time
}

type memParagraph struct {
	id        string
	row       ParagraphRow
	deletedAt *time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tags:       map[string]*memTag{},
		items:      map[string]*memItem{},
		paragraphs: map[string]*memParagraph{},
		links:      map[string]struct{}{},
	}
}

// UpsertTag implements Store.
func (m *MemoryStore) UpsertTag(_ context.Context, row TagRow) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.tags[row.Slug]
	if !ok {
		existing = &memTag{id: uuid.NewString()}
		m.tags[row.Slug] = existing
	}
	existing.row = row
	existing.deletedAt = nil
	return m.upsertID(existing.id), nil
}

// TagIDBySlug implements Store.
func (m *MemoryStore) TagIDBySlug(_ context.Context, slug string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tags[slug]; ok {
		return t.id, nil
	}
	return "", ErrNotFound
}

// UpsertItem implements Store. An already-set publish date wins over the
// candidate value, mirroring the SQL COALESCE on the conflict path.
func (m *MemoryStore) UpsertItem(_ context.Context, row ItemRow) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.items[row.Slug]
	if !ok {
		existing = &memItem{id: uuid.NewString()}
		m.items[row.Slug] = existing
	}
	if existing.publishedAt == nil {
		existing.publishedAt = row.PublishedAt
	}
	existing.row = row
	existing.deletedAt = nil
	return m.upsertID(existing.id), nil
}

// ItemIDBySlug implements Store.
func (m *MemoryStore) ItemIDBySlug(_ context.Context, slug string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.items[slug]; ok {
		return i.id, nil
	}
	return "", ErrNotFound
}

// UpsertParagraph implements Store.
func (m *MemoryStore) UpsertParagraph(_ context.Context, row ParagraphRow) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := row.ItemID + "\x00" + row.Key
	existing, ok := m.paragraphs[key]
	if !ok {
		existing = &memParagraph{id: uuid.NewString()}
		m.paragraphs[key] = existing
	}
	existing.row = row
	existing.deletedAt = nil
	return m.upsertID(existing.id), nil
}

// ParagraphIDByKey implements Store.
func (m *MemoryStore) ParagraphIDByKey(_ context.Context, itemID, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.paragraphs[itemID+"\x00"+key]; ok {
		return p.id, nil
	}
	return "", ErrNotFound
}

// LinkParagraphTag implements Store.
func (m *MemoryStore) LinkParagraphTag(_ context.Context, paragraphID, tagID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[paragraphID+"\x00"+tagID] = struct{}{}
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() {}

func (m *MemoryStore) upsertID(id string) string {
	if m.ReturnEmptyUpsertID {
		return ""
	}
	return id
}

// SoftDeleteTag marks a tag deleted so tests can verify revival.
func (m *MemoryStore) SoftDeleteTag(slug string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tags[slug]; ok {
		now := time.Now()
		t.deletedAt = &now
	}
}

// SoftDeleteItem marks an item deleted so tests can verify revival.
func (m *MemoryStore) SoftDeleteItem(slug string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.items[slug]; ok {
		now := time.Now()
		i.deletedAt = &now
	}
}

// TagDeletedAt returns the deleted_at marker for a tag, or nil.
func (m *MemoryStore) TagDeletedAt(slug string) *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tags[slug]; ok {
		return t.deletedAt
	}
	return nil
}

// ItemDeletedAt returns the deleted_at marker for an item, or nil.
func (m *MemoryStore) ItemDeletedAt(slug string) *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.items[slug]; ok {
		return i.deletedAt
	}
	return nil
}

// TagRowBySlug returns the stored row for inspection in tests.
func (m *MemoryStore) TagRowBySlug(slug string) (TagRow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tags[slug]; ok {
		return t.row, true
	}
	return TagRow{}, false
}

// ItemPublishedAt returns the effective publish date for an item, or nil.
func (m *MemoryStore) ItemPublishedAt(slug string) *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.items[slug]; ok {
		return i.publishedAt
	}
	return nil
}

// Counts reports row counts per table for idempotence checks.
func (m *MemoryStore) Counts() (tags, items, paragraphs, links int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tags), len(m.items), len(m.paragraphs), len(m.links)
}

// ParagraphItemIDs lists the item id of every paragraph row, for foreign-key
// integrity checks.
func (m *MemoryStore) ParagraphItemIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.paragraphs))
	for _, p := range m.paragraphs {
		ids = append(ids, p.row.ItemID)
	}
	return ids
}

// HasItemID reports whether an item row with the given id exists.
func (m *MemoryStore) HasItemID(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.items {
		if i.id == id {
			return true
		}
	}
	return false
}
