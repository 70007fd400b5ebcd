package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/interautonomy/content-sync/internal/config"
	"github.com/interautonomy/content-sync/internal/content"
	"github.com/interautonomy/content-sync/internal/metrics"
)

// PageArchiver persists raw page snapshots. Implementations must tolerate
// repeated saves of the same page.
type PageArchiver interface {
	SavePage(lang, name string, body []byte) (string, error)
}

// Scraper walks the site catalogs and assembles a content batch across all
// configured languages.
type Scraper struct {
	fetch   Fetcher
	archive PageArchiver
	cfg     config.ScrapeConfig
	langs   []string
	log     *zap.Logger
}

// NewScraper constructs a Scraper. archive may be nil to skip snapshots.
func NewScraper(f Fetcher, archive PageArchiver, langs []string, cfg config.ScrapeConfig, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(langs) == 0 {
		langs = content.Languages
	}
	return &Scraper{fetch: f, archive: archive, cfg: cfg, langs: langs, log: logger}
}

// BuildBatch scrapes both catalogs and every detail page behind them. A
// catalog failure aborts the build; a detail page failure drops only that
// language's translation.
func (s *Scraper) BuildBatch(ctx context.Context) (content.Batch, error) {
	var batch content.Batch

	tags, err := s.scrapeTags(ctx)
	if err != nil {
		return batch, err
	}
	batch.Tags = tags

	items, paragraphs, err := s.scrapeItems(ctx)
	if err != nil {
		return batch, err
	}
	batch.Items = items
	batch.Paragraphs = paragraphs

	s.log.Info("scrape complete",
		zap.Int("tags", len(batch.Tags)),
		zap.Int("items", len(batch.Items)),
		zap.Int("paragraphs", len(batch.Paragraphs)),
	)
	return batch, nil
}

func (s *Scraper) scrapeTags(ctx context.Context) ([]content.TagRecord, error) {
	body, err := s.fetchPage(ctx, s.catalogURL("strategies"), s.langs[0], "strategies-catalog")
	if err != nil {
		return nil, fmt.Errorf("fetch tag catalog: %w", err)
	}
	entries, err := ParseCatalog(body, "strategy")
	if err != nil {
		return nil, err
	}
	entries = s.applyLimit(entries)

	records := make([]content.TagRecord, 0, len(entries))
	for _, entry := range entries {
		rec := content.TagRecord{
			Slug:         entry.Slug,
			LogoURL:      entry.ThumbnailURL,
			Translations: make(map[string]content.TagTranslation, len(s.langs)),
		}
		for _, lang := range s.langs {
			pageBody, err := s.fetchPage(ctx, s.detailURL(lang, "strategy", entry.Slug), lang, entry.Slug)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				s.log.Warn("tag page fetch failed",
					zap.String("slug", entry.Slug), zap.String("lang", lang), zap.Error(err))
				continue
			}
			page, err := ParseTagPage(pageBody)
			if err != nil {
				s.log.Warn("tag page parse failed",
					zap.String("slug", entry.Slug), zap.String("lang", lang), zap.Error(err))
				continue
			}
			if rec.HeroImageURL == "" {
				rec.HeroImageURL = page.HeroImageURL
			}
			rec.Translations[lang] = content.TagTranslation{
				Title:           page.Title,
				DescriptionHTML: page.DescriptionHTML,
			}
		}
		if len(rec.Translations) == 0 {
			s.log.Warn("tag skipped, no language fetched", zap.String("slug", entry.Slug))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Scraper) scrapeItems(ctx context.Context) ([]content.ItemRecord, []content.ParagraphRecord, error) {
	body, err := s.fetchPage(ctx, s.catalogURL("projects"), s.langs[0], "projects-catalog")
	if err != nil {
		return nil, nil, fmt.Errorf("fetch item catalog: %w", err)
	}
	entries, err := ParseCatalog(body, "project")
	if err != nil {
		return nil, nil, err
	}
	entries = s.applyLimit(entries)

	var (
		records    []content.ItemRecord
		paragraphs []content.ParagraphRecord
	)
	for _, entry := range entries {
		rec := content.ItemRecord{
			Slug:         entry.Slug,
			ThumbnailURL: entry.ThumbnailURL,
			Translations: make(map[string]content.ItemTranslation, len(s.langs)),
		}
		blocks := make(map[int]*content.ParagraphRecord)

		for _, lang := range s.langs {
			pageBody, err := s.fetchPage(ctx, s.detailURL(lang, "project", entry.Slug), lang, entry.Slug)
			if err != nil {
				if ctx.Err() != nil {
					return nil, nil, ctx.Err()
				}
				s.log.Warn("item page fetch failed",
					zap.String("slug", entry.Slug), zap.String("lang", lang), zap.Error(err))
				continue
			}
			page, err := ParseItemPage(pageBody)
			if err != nil {
				s.log.Warn("item page parse failed",
					zap.String("slug", entry.Slug), zap.String("lang", lang), zap.Error(err))
				continue
			}
			if rec.ExternalLinkURL == "" {
				rec.ExternalLinkURL = page.ExternalLinkURL
			}
			if rec.LocationMapURL == "" {
				rec.LocationMapURL = page.LocationMapURL
			}
			rec.Translations[lang] = content.ItemTranslation{
				Title:            page.Title,
				Introduction:     page.Introduction,
				ShortDescription: page.ShortDescription,
			}
			mergeParagraphs(blocks, entry.Slug, lang, page.Paragraphs)
		}
		if len(rec.Translations) == 0 {
			s.log.Warn("item skipped, no language fetched", zap.String("slug", entry.Slug))
			continue
		}
		records = append(records, rec)
		for i := 1; i <= len(blocks); i++ {
			if block, ok := blocks[i]; ok {
				paragraphs = append(paragraphs, *block)
			}
		}
	}
	return records, paragraphs, nil
}

// mergeParagraphs folds one language's content blocks into the per-item
// paragraph set. Blocks are matched across languages by position; tag slug
// references are unioned.
func mergeParagraphs(blocks map[int]*content.ParagraphRecord, itemSlug, lang string, parsed []ParagraphBlock) {
	for _, p := range parsed {
		rec, ok := blocks[p.SortOrder]
		if !ok {
			rec = &content.ParagraphRecord{
				ItemSlug:     itemSlug,
				Key:          fmt.Sprintf("%s-p%d", itemSlug, p.SortOrder),
				SortOrder:    p.SortOrder,
				Translations: make(map[string]string),
			}
			blocks[p.SortOrder] = rec
		}
		rec.Translations[lang] = p.BodyHTML
		for _, tagSlug := range p.TagSlugs {
			if !containsString(rec.TagSlugs, tagSlug) {
				rec.TagSlugs = append(rec.TagSlugs, tagSlug)
			}
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// fetchPage retrieves one page, records the outcome, snapshots the body and
// applies the courtesy pause.
func (s *Scraper) fetchPage(ctx context.Context, url, lang, name string) ([]byte, error) {
	body, err := s.fetch.Fetch(ctx, url)
	if err != nil {
		metrics.ObservePageFetch(lang, "error")
		return nil, err
	}
	metrics.ObservePageFetch(lang, "ok")

	if s.archive != nil {
		if _, aerr := s.archive.SavePage(lang, name, body); aerr != nil {
			s.log.Warn("page archive failed", zap.String("name", name), zap.Error(aerr))
		}
	}
	s.pause(ctx)
	return body, nil
}

// pause sleeps the configured courtesy delay, returning early on
// cancellation.
func (s *Scraper) pause(ctx context.Context) {
	delay := s.cfg.Delay()
	if delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

func (s *Scraper) applyLimit(entries []CatalogEntry) []CatalogEntry {
	if s.cfg.Limit > 0 && len(entries) > s.cfg.Limit {
		return entries[:s.cfg.Limit]
	}
	return entries
}

func (s *Scraper) catalogURL(section string) string {
	return fmt.Sprintf("%s/%s/%s/", strings.TrimRight(s.cfg.BaseURL, "/"), s.langs[0], section)
}

func (s *Scraper) detailURL(lang, kind, slug string) string {
	return fmt.Sprintf("%s/%s/%s/%s/", strings.TrimRight(s.cfg.BaseURL, "/"), lang, kind, slug)
}
