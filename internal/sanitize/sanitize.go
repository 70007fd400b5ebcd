// Package sanitize reduces scraped markup fragments to a restricted, safe
// subset. Only src, href, alt and filtered class attributes survive; script
// and style elements are dropped entirely.
package sanitize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// classPrefix marks the semantic color/size classes worth keeping.
const classPrefix = "has-"

var keptAttrs = map[string]bool{
	"src":  true,
	"href": true,
	"alt":  true,
}

// Fragment sanitizes a markup fragment string and returns it serialized.
// Empty input yields "". Fragment is idempotent: every attribute it retains
// already satisfies the whitelist, so a second pass is a no-op.
func Fragment(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return ""
	}
	body := doc.Find("body")
	scrub(body)
	out, err := body.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// ContainerContent sanitizes a scraped container selection and returns its
// inner markup; the container element itself is discarded. The selection is
// mutated, so callers hand over a disposable parse.
func ContainerContent(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	scrub(sel)
	out, err := sel.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func scrub(sel *goquery.Selection) {
	sel.Find("script, style").Remove()
	sel.Find("*").Each(func(_ int, el *goquery.Selection) {
		for _, node := range el.Nodes {
			node.Attr = filterAttrs(node.Attr)
		}
	})
}

func filterAttrs(attrs []html.Attribute) []html.Attribute {
	kept := attrs[:0]
	for _, a := range attrs {
		switch {
		case a.Key == "class":
			if filtered := filterClasses(a.Val); filtered != "" {
				a.Val = filtered
				kept = append(kept, a)
			}
		case keptAttrs[a.Key]:
			kept = append(kept, a)
		}
	}
	return kept
}

// filterClasses keeps only the has- tokens of a class attribute value.
func filterClasses(val string) string {
	var kept []string
	for _, c := range strings.Fields(val) {
		if strings.HasPrefix(c, classPrefix) {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, " ")
}
