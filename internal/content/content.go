// Package content defines the scraped record schemas consumed by the sync
// pipeline. Records are validated at the input boundary so downstream code
// can rely on the shapes instead of attribute-presence checks.
package content

import (
	"errors"
	"fmt"
	"time"
)

// Languages lists the site languages in the order they are scraped.
var Languages = []string{"es", "en", "zh"}

// Status is the two-value publication state carried by tags and items.
type Status string

// Allowed Status values. Any other input normalizes to StatusDraft.
const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// DateLayout is the wire format for publish dates.
const DateLayout = "2006-01-02"

// NormalizeStatus coerces an arbitrary input value into the enumeration.
func NormalizeStatus(raw string) Status {
	if Status(raw) == StatusPublished {
		return StatusPublished
	}
	return StatusDraft
}

// ParseDate parses a YYYY-MM-DD publish date.
func ParseDate(raw string) (time.Time, error) {
	ts, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return ts, nil
}

// TagTranslation is the language-specific payload of a category tag.
type TagTranslation struct {
	Title           string `json:"title"`
	DescriptionHTML string `json:"description_html"`
}

// TagRecord is one scraped category tag (a "strategy" on the source site).
type TagRecord struct {
	Slug         string                    `json:"slug"`
	LogoURL      string                    `json:"logo_url"`
	HeroImageURL string                    `json:"hero_image_url"`
	Translations map[string]TagTranslation `json:"translations"`
}

// Validate reports whether the record can enter the pipeline.
func (r TagRecord) Validate() error {
	if r.Slug == "" {
		return errors.New("tag record missing slug")
	}
	return nil
}

// ItemTranslation is the language-specific payload of a parent item.
type ItemTranslation struct {
	Title            string `json:"title"`
	Introduction     string `json:"introduction"`
	ShortDescription string `json:"short_description"`
	VideoURL         string `json:"video_url,omitempty"`
	ExternalLinkText string `json:"external_link_text,omitempty"`
	LocationMapText  string `json:"location_map_text,omitempty"`
}

// ItemRecord is one scraped parent item (a "project" on the source site).
type ItemRecord struct {
	Slug            string                     `json:"slug"`
	ThumbnailURL    string                     `json:"thumbnail"`
	ExternalLinkURL string                     `json:"external_link"`
	LocationMapURL  string                     `json:"location_map"`
	GalleryURLs     []string                   `json:"gallery_images"`
	Translations    map[string]ItemTranslation `json:"translations"`
	// PublishedAt is an optional YYYY-MM-DD override; normally the sync
	// stamps the publish date on first publication.
	PublishedAt string `json:"published_at,omitempty"`
}

// Validate reports whether the record can enter the pipeline.
func (r ItemRecord) Validate() error {
	if r.Slug == "" {
		return errors.New("item record missing slug")
	}
	if r.PublishedAt != "" {
		if _, err := ParseDate(r.PublishedAt); err != nil {
			return fmt.Errorf("item %q: %w", r.Slug, err)
		}
	}
	return nil
}

// ParagraphRecord is one scraped content block, keyed to its parent item by
// slug and to category tags by their slugs.
type ParagraphRecord struct {
	ItemSlug     string            `json:"project_slug"`
	Key          string            `json:"slug"`
	SortOrder    int               `json:"order"`
	Translations map[string]string `json:"translations"`
	TagSlugs     []string          `json:"strategies"`
}

// Validate reports whether the record can enter the pipeline.
func (r ParagraphRecord) Validate() error {
	if r.ItemSlug == "" {
		return fmt.Errorf("paragraph record %q missing parent slug", r.Key)
	}
	if r.Key == "" {
		return fmt.Errorf("paragraph record for %q missing key", r.ItemSlug)
	}
	return nil
}

// Batch groups one full scrape snapshot in sync order.
type Batch struct {
	Tags       []TagRecord       `json:"tags"`
	Items      []ItemRecord      `json:"items"`
	Paragraphs []ParagraphRecord `json:"paragraphs"`
}
