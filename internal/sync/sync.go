// Package sync implements the dependency-ordered reconciliation pipeline
// that upserts scraped content into the relational store. Every upsert is
// idempotent, which is what makes a run safe to repeat after a crash or
// partial failure; there is no cross-entity transaction.
package sync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/interautonomy/content-sync/internal/content"
	"github.com/interautonomy/content-sync/internal/metrics"
	"github.com/interautonomy/content-sync/internal/store"
)

// Phase identifies one of the four sequential sync phases. Each phase
// consumes the identifier map built by the previous one.
type Phase string

// Phases in dependency order.
const (
	PhaseTags       Phase = "tags"
	PhaseItems      Phase = "items"
	PhaseParagraphs Phase = "paragraphs"
	PhaseLinks      Phase = "links"
)

// Options carries the run-level defaults applied while building payloads.
type Options struct {
	// DefaultStatus is applied to every tag and item in the run.
	DefaultStatus content.Status
	// DefaultPublishedAt overrides the publish-date stamp; when nil,
	// newly published items get the current date.
	DefaultPublishedAt *time.Time
	// Now is the clock used for the publish-date stamp. Defaults to
	// time.Now.
	Now func() time.Time
}

// Syncer reconciles scraped batches against the store.
type Syncer struct {
	store store.Store
	log   *zap.Logger
	opts  Options
}

// New constructs a Syncer.
func New(st store.Store, logger *zap.Logger, opts Options) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.DefaultStatus = content.NormalizeStatus(string(opts.DefaultStatus))
	return &Syncer{store: st, log: logger, opts: opts}
}

// linkTask carries a synced paragraph into the links phase.
type linkTask struct {
	paragraphID string
	itemSlug    string
	key         string
	tagSlugs    []string
}

// Run executes the four phases in order. Per-record failures are logged,
// counted, and skipped; Run itself only fails on context cancellation.
func (s *Syncer) Run(ctx context.Context, batch content.Batch) (Report, error) {
	report := newReport()

	tagIDs := s.syncTags(ctx, batch.Tags, &report)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("sync canceled after %s phase: %w", PhaseTags, err)
	}

	itemIDs := s.syncItems(ctx, batch.Items, &report)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("sync canceled after %s phase: %w", PhaseItems, err)
	}

	tasks := s.syncParagraphs(ctx, batch.Paragraphs, itemIDs, &report)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("sync canceled after %s phase: %w", PhaseParagraphs, err)
	}

	s.linkParagraphs(ctx, tasks, tagIDs, &report)

	s.log.Info("sync run complete",
		zap.Int("tags_synced", report.Phases[PhaseTags].Synced),
		zap.Int("items_synced", report.Phases[PhaseItems].Synced),
		zap.Int("paragraphs_synced", report.Phases[PhaseParagraphs].Synced),
		zap.Int("links_created", report.LinksCreated),
		zap.Int("links_skipped", report.LinksSkipped),
		zap.Int("failures", len(report.Failures)),
	)
	return report, nil
}

// syncTags upserts every tag record and returns the slug -> id map the
// links phase depends on.
func (s *Syncer) syncTags(ctx context.Context, tags []content.TagRecord, report *Report) map[string]string {
	ids := make(map[string]string, len(tags))
	for _, rec := range tags {
		if err := rec.Validate(); err != nil {
			s.recordFailure(report, PhaseTags, rec.Slug, err)
			continue
		}
		row := store.TagRow{
			Slug:         rec.Slug,
			LogoURL:      rec.LogoURL,
			HeroImageURL: rec.HeroImageURL,
			Translations: rec.Translations,
			Status:       s.opts.DefaultStatus,
		}
		id, err := upsertWithFallback(ctx,
			func(ctx context.Context) (string, error) { return s.store.UpsertTag(ctx, row) },
			func(ctx context.Context) (string, error) { return s.store.TagIDBySlug(ctx, rec.Slug) },
		)
		if err != nil {
			s.recordFailure(report, PhaseTags, rec.Slug, err)
			continue
		}
		ids[rec.Slug] = id
		report.recordSynced(PhaseTags)
		metrics.ObserveRecord(string(PhaseTags), "synced")
		s.log.Debug("tag synced", zap.String("slug", rec.Slug), zap.String("id", id))
	}
	return ids
}

// syncItems upserts every item record and returns the slug -> id map the
// paragraphs phase depends on.
func (s *Syncer) syncItems(ctx context.Context, items []content.ItemRecord, report *Report) map[string]string {
	ids := make(map[string]string, len(items))
	for _, rec := range items {
		if err := rec.Validate(); err != nil {
			s.recordFailure(report, PhaseItems, rec.Slug, err)
			continue
		}
		row := store.ItemRow{
			Slug:            rec.Slug,
			ThumbnailURL:    rec.ThumbnailURL,
			ExternalLinkURL: rec.ExternalLinkURL,
			LocationMapURL:  rec.LocationMapURL,
			GalleryURLs:     rec.GalleryURLs,
			Translations:    rec.Translations,
			Status:          s.opts.DefaultStatus,
			PublishedAt:     s.publishDate(rec),
		}
		id, err := upsertWithFallback(ctx,
			func(ctx context.Context) (string, error) { return s.store.UpsertItem(ctx, row) },
			func(ctx context.Context) (string, error) { return s.store.ItemIDBySlug(ctx, rec.Slug) },
		)
		if err != nil {
			s.recordFailure(report, PhaseItems, rec.Slug, err)
			continue
		}
		ids[rec.Slug] = id
		report.recordSynced(PhaseItems)
		metrics.ObserveRecord(string(PhaseItems), "synced")
		s.log.Debug("item synced", zap.String("slug", rec.Slug), zap.String("id", id))
	}
	return ids
}

// syncParagraphs upserts every paragraph under its parent item. itemIDs must
// be the fully built map from the items phase; a paragraph whose parent is
// absent from it is an orphan and is skipped.
func (s *Syncer) syncParagraphs(
	ctx context.Context,
	paragraphs []content.ParagraphRecord,
	itemIDs map[string]string,
	report *Report,
) []linkTask {
	tasks := make([]linkTask, 0, len(paragraphs))
	for _, rec := range paragraphs {
		if err := rec.Validate(); err != nil {
			s.recordFailure(report, PhaseParagraphs, rec.Key, err)
			continue
		}
		itemID, ok := itemIDs[rec.ItemSlug]
		if !ok {
			report.recordSkipped(PhaseParagraphs)
			metrics.ObserveRecord(string(PhaseParagraphs), "orphaned")
			s.log.Warn("parent item not found for paragraph",
				zap.String("item_slug", rec.ItemSlug),
				zap.String("paragraph_key", rec.Key),
			)
			continue
		}
		row := store.ParagraphRow{
			ItemID:       itemID,
			Key:          rec.Key,
			SortOrder:    rec.SortOrder,
			Translations: rec.Translations,
		}
		id, err := upsertWithFallback(ctx,
			func(ctx context.Context) (string, error) { return s.store.UpsertParagraph(ctx, row) },
			func(ctx context.Context) (string, error) { return s.store.ParagraphIDByKey(ctx, itemID, rec.Key) },
		)
		if err != nil {
			s.recordFailure(report, PhaseParagraphs, rec.Key, err)
			continue
		}
		tasks = append(tasks, linkTask{
			paragraphID: id,
			itemSlug:    rec.ItemSlug,
			key:         rec.Key,
			tagSlugs:    rec.TagSlugs,
		})
		report.recordSynced(PhaseParagraphs)
		metrics.ObserveRecord(string(PhaseParagraphs), "synced")
		s.log.Debug("paragraph synced",
			zap.String("item_slug", rec.ItemSlug),
			zap.String("paragraph_key", rec.Key),
		)
	}
	return tasks
}

// linkParagraphs maintains the paragraph-tag association rows. tagIDs must
// be the fully built map from the tags phase. A slug that did not resolve in
// this run skips only that link; link rows are never pruned.
func (s *Syncer) linkParagraphs(ctx context.Context, tasks []linkTask, tagIDs map[string]string, report *Report) {
	for _, task := range tasks {
		for _, tagSlug := range task.tagSlugs {
			tagID, ok := tagIDs[tagSlug]
			if !ok {
				report.LinksSkipped++
				metrics.ObserveLink("skipped")
				s.log.Warn("tag not found for paragraph link",
					zap.String("tag_slug", tagSlug),
					zap.String("paragraph_key", task.key),
					zap.String("item_slug", task.itemSlug),
				)
				continue
			}
			if err := s.store.LinkParagraphTag(ctx, task.paragraphID, tagID); err != nil {
				report.LinksSkipped++
				metrics.ObserveLink("failed")
				s.log.Warn("paragraph link failed",
					zap.String("tag_slug", tagSlug),
					zap.String("paragraph_key", task.key),
					zap.Error(err),
				)
				continue
			}
			report.LinksCreated++
			metrics.ObserveLink("created")
		}
	}
}

// publishDate derives the candidate publish date for an item: only published
// items get one, an explicit record date wins, then the configured default,
// then today. The store keeps an already-set date, so this stamp only takes
// effect on first publication.
func (s *Syncer) publishDate(rec content.ItemRecord) *time.Time {
	if s.opts.DefaultStatus != content.StatusPublished {
		return nil
	}
	if rec.PublishedAt != "" {
		if ts, err := content.ParseDate(rec.PublishedAt); err == nil {
			return &ts
		}
	}
	if s.opts.DefaultPublishedAt != nil {
		return s.opts.DefaultPublishedAt
	}
	now := s.opts.Now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return &day
}

func (s *Syncer) recordFailure(report *Report, phase Phase, key string, err error) {
	report.recordFailed(phase, key, err)
	metrics.ObserveRecord(string(phase), "failed")
	s.log.Error("record sync failed",
		zap.String("phase", string(phase)),
		zap.String("key", key),
		zap.Error(err),
	)
}
