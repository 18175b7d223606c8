package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fallbackHTML = `<html><body>
<div class="card">
  <h2> Old title </h2>
  <span class="empty"></span>
  <a class="link" data-href="/x" href="/detail/1">go</a>
</div>
</body></html>`

func TestFirstPicksFirstMatchingSelector(t *testing.T) {
	doc, err := Document(fallbackHTML)
	require.NoError(t, err)

	name := Field{".vendorTile__title", ".app-vendor-tile-title", "h2"}.Text(doc.Selection)
	assert.Equal(t, "Old title", name)
}

func TestFirstReturnsDefaultWhenNothingMatches(t *testing.T) {
	doc, err := Document(fallbackHTML)
	require.NoError(t, err)

	got := Field{".missing", ".also-missing"}.TextOr(doc.Selection, "n/a")
	assert.Equal(t, "n/a", got)
}

func TestMatchWithEmptyTextStillWins(t *testing.T) {
	doc, err := Document(fallbackHTML)
	require.NoError(t, err)

	got := Field{".empty", "h2"}.TextOr(doc.Selection, "default")
	assert.Equal(t, "", got)
}

func TestStrategiesAreLazy(t *testing.T) {
	doc, err := Document(fallbackHTML)
	require.NoError(t, err)

	calls := 0
	counting := func(v string, ok bool) Strategy {
		return func(*goquery.Selection) (string, bool) {
			calls++
			return v, ok
		}
	}
	got := First(doc.Selection, "", counting("", false), counting("hit", true), counting("late", true))
	assert.Equal(t, "hit", got)
	assert.Equal(t, 2, calls)
}

func TestAttrPrefersFirstNonEmptyAttribute(t *testing.T) {
	doc, err := Document(fallbackHTML)
	require.NoError(t, err)

	assert.Equal(t, "/x", Field{"a.link"}.Attr(doc.Selection, "data-href", "href"))
	assert.Equal(t, "/detail/1", Field{"a.link"}.Attr(doc.Selection, "data-missing", "href"))
}

func TestFindReportsMatchedSelector(t *testing.T) {
	doc, err := Document(fallbackHTML)
	require.NoError(t, err)

	found, matched := Field{"article", ".card"}.Find(doc.Selection)
	assert.Equal(t, ".card", matched)
	assert.Equal(t, 1, found.Length())

	found, matched = Field{"article"}.Find(doc.Selection)
	assert.Equal(t, "", matched)
	assert.Equal(t, 0, found.Length())
}

func TestSourcesFallsBackToNextSelector(t *testing.T) {
	doc, err := Document(`<div>
	  <picture><source data-srcset="https://cdn/a.webp 1x, https://cdn/a2.webp 2x"></picture>
	  <img class="lazy" data-src="https://cdn/b.jpg" src="placeholder.gif">
	  <img class="plain" src="https://cdn/c.jpg">
	</div>`)
	require.NoError(t, err)

	got := Field{".gallery img", "picture source, img.lazy"}.Sources(doc.Selection)
	if diff := cmp.Diff([]string{"https://cdn/a.webp", "https://cdn/b.jpg"}, got); diff != "" {
		t.Errorf("Sources mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{}, Field{".none"}.Sources(doc.Selection))
}

func TestLoadSelectorsOverlaysFile(t *testing.T) {
	base := Selectors{Listing: ListingSelectors{
		Cards: Field{"article"},
		Name:  Field{"h2"},
	}}

	path := filepath.Join(t.TempDir(), "selectors.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// markup changed in the spring redesign
		listing: { name: [".vendorTile__title", "h3"] },
	}`), 0o644))

	got, err := LoadSelectors(path, base)
	require.NoError(t, err)
	assert.Equal(t, Field{".vendorTile__title", "h3"}, got.Listing.Name)
	assert.Equal(t, Field{"article"}, got.Listing.Cards)
}

func TestLoadSelectorsEmptyPathKeepsBase(t *testing.T) {
	base := Selectors{Listing: ListingSelectors{Cards: Field{"article"}}}
	got, err := LoadSelectors("", base)
	require.NoError(t, err)
	assert.Equal(t, base, got)
}
