package sanitize_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/interautonomy/content-sync/internal/sanitize"
)

func TestFragmentEmptyInput(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", sanitize.Fragment(""))
	assert.Equal(t, "", sanitize.Fragment("   \n "))
}

func TestFragmentDropsScriptAndStyle(t *testing.T) {
	t.Parallel()

	in := `<p>keep</p><script>alert(1)</script><style>p{color:red}</style>`
	out := sanitize.Fragment(in)
	assert.Equal(t, "<p>keep</p>", out)
}

func TestFragmentFiltersClassTokens(t *testing.T) {
	t.Parallel()

	in := `<p class="elementor-widget has-red-color has-large-font-size">text</p>`
	out := sanitize.Fragment(in)
	assert.Equal(t, `<p class="has-red-color has-large-font-size">text</p>`, out)
}

func TestFragmentDropsClassWithoutMarkerTokens(t *testing.T) {
	t.Parallel()

	in := `<p class="elementor-widget jet-listing">text</p>`
	out := sanitize.Fragment(in)
	assert.Equal(t, "<p>text</p>", out)
}

func TestFragmentDropsStyleAndDataAttributes(t *testing.T) {
	t.Parallel()

	in := `<span style="color:red" data-id="abc" onclick="x()">text</span>` +
		`<a href="https://example.org" target="_blank" rel="noopener">link</a>` +
		`<img src="/a.jpg" alt="a" width="10" height="10"/>`
	out := sanitize.Fragment(in)
	assert.Equal(t,
		`<span>text</span><a href="https://example.org">link</a><img src="/a.jpg" alt="a"/>`,
		out)
}

// Every attribute that survives sanitization must be one of src, href, alt
// or a class whose tokens all carry the has- prefix.
func TestFragmentAttributeWhitelist(t *testing.T) {
	t.Parallel()

	in := `<div id="wrap" class="outer has-blue-color" style="font-size:2em">
		<p data-x="1" class="has-green-color inner"><strong title="t">bold</strong></p>
		<img src="pic.jpg" alt="pic" loading="lazy"/>
		<a href="/x" onmouseover="y()">l</a>
	</div>`
	out := sanitize.Fragment(in)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)

	doc.Find("*").Each(func(_ int, el *goquery.Selection) {
		for _, node := range el.Nodes {
			if node.Type != html.ElementNode || node.Data == "html" || node.Data == "head" || node.Data == "body" {
				continue
			}
			for _, a := range node.Attr {
				assert.Contains(t, []string{"src", "href", "alt", "class"}, a.Key)
				if a.Key == "class" {
					for _, c := range strings.Fields(a.Val) {
						assert.True(t, strings.HasPrefix(c, "has-"), "class token %q", c)
					}
				}
			}
		}
	})
}

func TestFragmentIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`<p class="has-red-color">a</p><p>b</p>`,
		`<div><span style="color:red">x</span><script>bad()</script></div>`,
		`<img src="a.jpg" alt="a"/>`,
		`plain text`,
	}
	for _, in := range inputs {
		once := sanitize.Fragment(in)
		assert.Equal(t, once, sanitize.Fragment(once), "input %q", in)
	}
}

func TestContainerContentReturnsInnerMarkup(t *testing.T) {
	t.Parallel()

	page := `<html><body><div class="elementor-widget-container" data-id="z">
		<p class="translation-block has-black-color">Hello <strong>world</strong></p>
	</div></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	out := sanitize.ContainerContent(doc.Find("div.elementor-widget-container"))
	assert.Equal(t, `<p class="has-black-color">Hello <strong>world</strong></p>`, out)
}

func TestContainerContentNilSelection(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", sanitize.ContainerContent(nil))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<p>x</p>"))
	require.NoError(t, err)
	assert.Equal(t, "", sanitize.ContainerContent(doc.Find("section.missing")))
}
