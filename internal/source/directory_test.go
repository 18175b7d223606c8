package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffMauritius/scrapper/internal/fetch"
	"github.com/jeffMauritius/scrapper/internal/model"
)

type sitePages struct {
	pages   map[string]string
	visited []string
}

func (s *sitePages) Fetch(_ context.Context, rawURL string) (*fetch.Page, error) {
	s.visited = append(s.visited, rawURL)
	html, ok := s.pages[rawURL]
	if !ok {
		return nil, fmt.Errorf("%s: %w", rawURL, fetch.ErrNotFound)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	u, _ := url.Parse(rawURL)
	return &fetch.Page{URL: u, Doc: doc}, nil
}

type pageCounter map[string]int

func (p pageCounter) Page(result string) { p[result]++ }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const venueCard = `<article class="vendorTile">
	<a href="/domaine-mariage/%[1]s">
		<h2 class="vendorTile__title">%[2]s</h2>
	</a>
	<div class="vendorTile__location">%[3]s</div>
	<div class="vendorTile__rating">4,9</div><span class="rating-counter">(12)</span>
	<div class="vendorTileFooter__price"><i></i><span>95€/personne</span></div>
	<img class="vendorTileGallery__image" data-src="/img/%[1]s.jpg">
</article>`

func listingPage(cards ...string) string {
	return `<html><body><div id="app-lista-empresas">` + strings.Join(cards, "") + `</div></body></html>`
}

func TestDirectoryWalk(t *testing.T) {
	cfg := DefaultDirectory(model.KindVenue)
	cfg.HomeURL = "https://site.test/"
	cfg.PageURL = "https://site.test/list?page=%d"
	cfg.TotalItems = 70
	cfg.ItemsPerPage = 24

	site := &sitePages{pages: map[string]string{
		"https://site.test/": "<html></html>",
		"https://site.test/list?page=1": listingPage(
			fmt.Sprintf(venueCard, "rose", "Domaine des Roses", "Tours, Indre-et-Loire"),
			`<article class="vendorTile"><h2 class="vendorTile__title">Sans lien</h2></article>`,
		),
		"https://site.test/list?page=2": `<html><body><p>maintenance</p></body></html>`,
		"https://site.test/list?page=3": listingPage(
			fmt.Sprintf(venueCard, "lac", "Domaine du Lac", "Annecy, Haute-Savoie"),
		),
	}}
	pages := pageCounter{}
	dir := NewDirectory(cfg, site, discardLogger(), pages)
	require.Equal(t, 3, dir.LastPage())

	var got []model.Record
	err := dir.Walk(context.Background(), func(_ context.Context, r model.Record) error {
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "Domaine des Roses", got[0].Name)
	assert.Equal(t, "https://site.test/domaine-mariage/rose", got[0].URL)
	assert.Equal(t, "Tours", got[0].City)
	assert.Equal(t, "Indre-et-Loire", got[0].Region)
	assert.Equal(t, "4,9 (12)", got[0].Rating)
	assert.Equal(t, "95€/personne", got[0].Price)
	assert.Equal(t, []string{"https://site.test/img/rose.jpg"}, got[0].Images)
	assert.Equal(t, string(model.VenueDomain), got[0].Type)
	assert.Equal(t, "Domaine du Lac", got[1].Name)

	assert.Equal(t, 2, pages["ok"])
	assert.Equal(t, 1, pages["empty"])
	assert.Equal(t, "https://site.test/", site.visited[0])
}

func TestDirectorySkipsFailedPage(t *testing.T) {
	cfg := DefaultDirectory(model.KindVenue)
	cfg.HomeURL = ""
	cfg.PageURL = "https://site.test/list?page=%d"
	cfg.StartPage = 4
	cfg.MaxPages = 2

	site := &sitePages{pages: map[string]string{
		"https://site.test/list?page=5": listingPage(fmt.Sprintf(venueCard, "a", "Salle A", "Lille, Nord")),
	}}
	pages := pageCounter{}
	dir := NewDirectory(cfg, site, discardLogger(), pages)
	assert.Equal(t, 5, dir.LastPage())

	records, err := dir.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, pages["failed"])
	assert.Equal(t, []string{"https://site.test/list?page=4", "https://site.test/list?page=5"}, site.visited)
}

func TestDirectoryStopsOnEmitError(t *testing.T) {
	cfg := DefaultDirectory(model.KindVenue)
	cfg.HomeURL = ""
	cfg.PageURL = "https://site.test/list?page=%d"
	cfg.MaxPages = 1

	site := &sitePages{pages: map[string]string{
		"https://site.test/list?page=1": listingPage(
			fmt.Sprintf(venueCard, "a", "Salle A", "Lille"),
			fmt.Sprintf(venueCard, "b", "Salle B", "Lille"),
		),
	}}
	stop := errors.New("disk full")
	calls := 0
	err := NewDirectory(cfg, site, discardLogger(), nil).Walk(context.Background(), func(context.Context, model.Record) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestWindow(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}
	assert.Equal(t, []int{2, 3}, Window(items, 2, 2))
	assert.Equal(t, []int{3, 4}, Window(items, 3, 100))
	assert.Equal(t, items, Window(items, 0, 0))
	assert.Empty(t, Window(items, 9, 1))
}
