package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jeffMauritius/scrapper/internal/model"
)

// Document parses raw HTML.
func Document(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// Cards locates listing cards with the first card selector that matches.
func Cards(root *goquery.Selection, sel ListingSelectors) (*goquery.Selection, string) {
	return sel.Cards.Find(root)
}

// ParseCard builds the base record for one listing card. Fields the card
// lacks stay empty; links and images are resolved against base.
func ParseCard(card *goquery.Selection, base *url.URL, kind model.Kind, sel ListingSelectors) model.Record {
	location := sel.Location.Text(card)
	city, region := model.SplitLocation(location)
	link := resolve(base, sel.Link.Attr(card, "href"))

	images := sel.Images.Sources(card)
	for i, u := range images {
		images[i] = resolve(base, u)
	}

	return model.Record{
		URL:         link,
		Name:        sel.Name.Text(card),
		Type:        model.DetectType(kind, sel.Type.Text(card), link),
		Description: sel.Description.Text(card),
		Images:      images,
		Price:       sel.Price.Text(card),
		Address:     location,
		City:        city,
		Region:      region,
		Capacity:    sel.Capacity.Text(card),
		Rating:      model.FormatRating(sel.Rating.Text(card), sel.Reviews.Text(card)),
	}
}

// ParseListing returns the base record of every card on a listing page and
// the card selector that matched ("" when none did).
func ParseListing(root *goquery.Selection, base *url.URL, kind model.Kind, sel ListingSelectors) ([]model.Record, string) {
	cards, matched := Cards(root, sel)
	records := make([]model.Record, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		records = append(records, ParseCard(card, base, kind, sel))
	})
	return records, matched
}

func resolve(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
