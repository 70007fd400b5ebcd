// Package slug canonicalizes scraped resource locators into stable,
// URL-safe identifiers used as natural keys by the sync pipeline.
package slug

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// Sentinel is returned for locators that do not resolve to a slug.
// Callers treat it as a data-quality warning, not a fatal error.
const Sentinel = "no-slug"

// resourcePath matches detail-page paths for both entity types,
// e.g. https://example.org/en/project/river-cleanup/ or /strategy/solar/.
var resourcePath = regexp.MustCompile(`/(?:project|strategy)/([^/]+)`)

var hyphenRun = regexp.MustCompile(`-{2,}`)

// Normalize turns a raw resource path or locator into a slug. Inputs that
// contain a path separator must match the resource-path pattern; anything
// else is treated as a bare segment. Unresolvable inputs yield Sentinel.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Sentinel
	}

	segment := raw
	if strings.Contains(raw, "/") {
		m := resourcePath.FindStringSubmatch(raw)
		if m == nil {
			return Sentinel
		}
		segment = m[1]
	}

	if decoded, err := url.PathUnescape(segment); err == nil {
		segment = decoded
	}
	segment = strings.TrimSuffix(segment, "/")

	var b strings.Builder
	b.Grow(len(segment))
	for _, r := range segment {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			// Punctuation that is not valid in a URL segment, such as
			// the interpunct separating project name and country.
		}
	}

	cleaned := strings.Join(strings.Fields(b.String()), " ")
	cleaned = strings.ToLower(cleaned)
	cleaned = strings.ReplaceAll(cleaned, " ", "-")
	cleaned = hyphenRun.ReplaceAllString(cleaned, "-")
	cleaned = strings.Trim(cleaned, "-")

	if cleaned == "" {
		return Sentinel
	}
	return cleaned
}

// IsSentinel reports whether s is the unresolvable-slug marker.
func IsSentinel(s string) bool { return s == Sentinel }
