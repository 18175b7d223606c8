package extract

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/jeffMauritius/scrapper/internal/model"
)

type Detail struct {
	Description string
	Services    []string
}

func ParseDetail(root *goquery.Selection, sel DetailSelectors) Detail {
	return Detail{
		Description: sel.Description.Text(root),
		Services:    sel.Services.All(root),
	}
}

// VenueLinks lists detail page URLs found on a listing page, at most limit
// when limit > 0.
func VenueLinks(root *goquery.Selection, base *url.URL, sel ContactSelectors, limit int) []string {
	found, _ := sel.VenueLinks.Find(root)
	var links []string
	found.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if href, ok := s.Attr("href"); ok && href != "" {
			links = append(links, resolve(base, href))
		}
		return limit <= 0 || len(links) < limit
	})
	return links
}

// ParseContact reads an opened contact panel.
func ParseContact(root *goquery.Selection, pageURL string, sel ContactSelectors) model.Contact {
	c := model.Contact{
		Name:          sel.Title.Text(root),
		Type:          model.VenueTypeFromURL(pageURL),
		Email:         sel.Email.Text(root),
		Phone:         sel.Phone.Text(root),
		ContactPerson: sel.Person.Text(root),
		URL:           pageURL,
	}
	c.FillMissing()
	return c
}
