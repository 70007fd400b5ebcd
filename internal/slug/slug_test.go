package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/interautonomy/content-sync/internal/slug"
)

func TestNormalizeFromDetailURL(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		in   string
		want string
	}{
		"project url": {
			in:   "https://interautonomy.org/en/project/river-cleanup/",
			want: "river-cleanup",
		},
		"strategy url": {
			in:   "https://interautonomy.org/zh/strategy/solar/",
			want: "solar",
		},
		"relative path": {
			in:   "/project/upsala-circus-russia/",
			want: "upsala-circus-russia",
		},
		"missing trailing slash": {
			in:   "https://interautonomy.org/es/strategy/agroecologia",
			want: "agroecologia",
		},
		"percent encoded segment": {
			in:   "https://interautonomy.org/es/project/caf%C3%A9-cooperativo/",
			want: "café-cooperativo",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, slug.Normalize(tc.in))
		})
	}
}

func TestNormalizeBareSegments(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "upsala-circus-russia", slug.Normalize("Upsala Circus · Russia"))
	assert.Equal(t, "two-words", slug.Normalize("Two    Words"))
	assert.Equal(t, "a-b", slug.Normalize("a---b"))
	assert.Equal(t, "mixedcase", slug.Normalize("MixedCase"))
	assert.Equal(t, "trailing", slug.Normalize("trailing/"))
}

func TestNormalizeSentinel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slug.Sentinel, slug.Normalize(""))
	assert.Equal(t, slug.Sentinel, slug.Normalize("   "))
	assert.Equal(t, slug.Sentinel, slug.Normalize("https://interautonomy.org/en/about/"))
	assert.Equal(t, slug.Sentinel, slug.Normalize("···"))
	assert.True(t, slug.IsSentinel(slug.Normalize("/contact/")))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://interautonomy.org/en/project/river-cleanup/",
		"Upsala Circus · Russia",
		"caf%C3%A9-cooperativo",
		"already-normalized",
		slug.Sentinel,
		"",
		"/strategy/solar/",
	}
	for _, in := range inputs {
		once := slug.Normalize(in)
		assert.Equal(t, once, slug.Normalize(once), "input %q", in)
	}
}
