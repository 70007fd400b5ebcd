// Package scrape fetches the marketing site and extracts its catalog pages
// into normalized content records.
package scrape

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/interautonomy/content-sync/internal/sanitize"
	"github.com/interautonomy/content-sync/internal/slug"
)

// introPrefix matches the site's leaked "info 2023" style metadata prefix at
// the start of introduction text.
var introPrefix = regexp.MustCompile(`^info\s+\d{4}`)

// CatalogEntry is one card on a listing page.
type CatalogEntry struct {
	Slug         string
	ThumbnailURL string
}

// ParseCatalog extracts the resource cards of a listing page. kind is the
// URL path segment that identifies the resource ("strategy" or "project");
// cards linking elsewhere are ignored. Entries are deduplicated by slug.
func ParseCatalog(body []byte, kind string) ([]CatalogEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	marker := "/" + kind + "/"
	seen := make(map[string]bool)
	var entries []CatalogEntry

	doc.Find(".jet-listing-grid__item").Each(func(_ int, item *goquery.Selection) {
		href, ok := item.Find("a[href]").First().Attr("href")
		if !ok || !strings.Contains(href, marker) {
			return
		}
		s := slug.Normalize(href)
		if slug.IsSentinel(s) || seen[s] {
			return
		}
		seen[s] = true

		thumb, _ := item.Find("img[src]").First().Attr("src")
		entries = append(entries, CatalogEntry{Slug: s, ThumbnailURL: thumb})
	})

	return entries, nil
}

// TagPage is the extracted detail of one category tag page in one language.
type TagPage struct {
	Title           string
	HeroImageURL    string
	DescriptionHTML string
}

// ParseTagPage extracts the title, hero image and sanitized description of a
// tag detail page.
func ParseTagPage(body []byte) (TagPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return TagPage{}, fmt.Errorf("parse tag page: %w", err)
	}

	var page TagPage
	page.Title = collapseText(doc.Find("h1").First())
	page.HeroImageURL, _ = doc.Find(`meta[property="og:image"]`).First().Attr("content")

	section := doc.Find(`section[data-id="9b86c65"]`).First()
	if section.Length() == 0 {
		section = doc.Find("section.elementor-element-9b86c65").First()
	}
	if section.Length() > 0 {
		container := section.Find("div.elementor-widget-container").First()
		page.DescriptionHTML = sanitize.ContainerContent(container)
	}

	return page, nil
}

// ParagraphBlock is one content block of an item page, with the tag slugs it
// references.
type ParagraphBlock struct {
	SortOrder int
	BodyHTML  string
	TagSlugs  []string
}

// ItemPage is the extracted detail of one item page in one language.
type ItemPage struct {
	Title            string
	Introduction     string
	ShortDescription string
	ExternalLinkURL  string
	LocationMapURL   string
	Paragraphs       []ParagraphBlock
}

// ParseItemPage extracts the metadata, links and content blocks of an item
// detail page.
func ParseItemPage(body []byte) (ItemPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ItemPage{}, fmt.Errorf("parse item page: %w", err)
	}

	var page ItemPage
	page.Title = collapseText(doc.Find(".elementor-widget-jet-listing-dynamic-field h1").First())

	intro := collapseText(doc.Find(".elementor-element-5d39f2b .elementor-widget-container").First())
	page.Introduction = strings.TrimSpace(introPrefix.ReplaceAllString(intro, ""))

	// The sidebar h6 block carries the short description as its fourth
	// paragraph, with the outbound and map links around it.
	h6 := doc.Find("h6").First()
	if paras := h6.Find("p"); paras.Length() >= 4 {
		page.ShortDescription = collapseText(paras.Eq(3))
	}
	doc.Find("h6 p a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		switch {
		case strings.Contains(href, "maps.google") || strings.Contains(href, "goo.gl/maps"):
			if page.LocationMapURL == "" {
				page.LocationMapURL = href
			}
		case !strings.Contains(href, "interautonomy.org"):
			if page.ExternalLinkURL == "" {
				page.ExternalLinkURL = href
			}
		}
	})

	order := 1
	doc.Find(".jet-listing-grid__item").Each(func(_ int, block *goquery.Selection) {
		textP := block.Find("p.translation-block").First()
		if textP.Length() == 0 {
			return
		}

		var tagSlugs []string
		seen := make(map[string]bool)
		block.Find(`a[href*="/strategy/"]`).Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			s := slug.Normalize(href)
			if slug.IsSentinel(s) || seen[s] {
				return
			}
			seen[s] = true
			tagSlugs = append(tagSlugs, s)
		})

		page.Paragraphs = append(page.Paragraphs, ParagraphBlock{
			SortOrder: order,
			BodyHTML:  sanitize.ContainerContent(textP),
			TagSlugs:  tagSlugs,
		})
		order++
	})

	return page, nil
}

// collapseText extracts a selection's text with runs of whitespace reduced
// to single spaces.
func collapseText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
