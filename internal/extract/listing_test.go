package extract

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffMauritius/scrapper/internal/model"
)

var testListing = ListingSelectors{
	Cards:       Field{"#app-lista-empresas article", "article.vendorTile"},
	Name:        Field{".vendorTile__title", "h2"},
	Rating:      Field{".vendorTile__rating"},
	Reviews:     Field{".rating-counter"},
	Location:    Field{".vendorTile__location"},
	Price:       Field{".vendorTileFooter__price span:last-child", ".vendorTileFooter__price"},
	Capacity:    Field{".vendorTileFooter__capacity span:last-child", ".vendorTileFooter__capacity"},
	Description: Field{".vendorTile__description"},
	Link:        Field{"a.vendorTile__link"},
	Type:        Field{".vendorTile__subtitle"},
	Images:      Field{".vendorTileGallery__image, .vendorTileGallery picture source", ".vendorTileGallery img"},
}

const listingHTML = `<html><body><main>
<article class="vendorTile">
  <a class="vendorTile__link" href="/chateau-mariage/chateau-bleu--e1.htm">
    <h2 class="vendorTile__title">Château Bleu</h2>
  </a>
  <span class="vendorTile__subtitle">Château</span>
  <span class="vendorTile__rating">4.8</span>
  <span class="rating-counter">(23)</span>
  <span class="vendorTile__location">Paris, Île-de-France</span>
  <div class="vendorTileFooter__price"><i>€</i><span>450€/personne</span></div>
  <div class="vendorTileFooter__capacity">80-250</div>
  <p class="vendorTile__description">Un château du XVIIe...</p>
  <div class="vendorTileGallery">
    <img class="vendorTileGallery__image" data-src="/img/1.jpg">
    <img class="vendorTileGallery__image" src="https://cdn.example/2.jpg">
  </div>
</article>
<article class="vendorTile">
  <h2>Salle Sans Lien</h2>
  <span class="vendorTile__location">Lyon</span>
</article>
</main></body></html>`

func TestParseListing(t *testing.T) {
	doc, err := Document(listingHTML)
	require.NoError(t, err)
	base, _ := url.Parse("https://www.mariages.net/busc.php?NumPage=1")

	records, matched := ParseListing(doc.Selection, base, model.KindVenue, testListing)
	assert.Equal(t, "article.vendorTile", matched)
	require.Len(t, records, 2)

	r := records[0]
	assert.Equal(t, "https://www.mariages.net/chateau-mariage/chateau-bleu--e1.htm", r.URL)
	assert.Equal(t, "Château Bleu", r.Name)
	assert.Equal(t, string(model.VenueCastle), r.Type)
	assert.Equal(t, "450€/personne", r.Price)
	assert.Equal(t, "80-250", r.Capacity)
	assert.Equal(t, "4.8 (23)", r.Rating)
	assert.Equal(t, "Paris, Île-de-France", r.Address)
	assert.Equal(t, "Paris", r.City)
	assert.Equal(t, "Île-de-France", r.Region)
	assert.Equal(t, []string{
		"https://www.mariages.net/img/1.jpg",
		"https://cdn.example/2.jpg",
	}, r.Images)

	bare := records[1]
	assert.Equal(t, "", bare.URL)
	assert.Equal(t, "Salle Sans Lien", bare.Name)
	assert.Equal(t, "Lyon", bare.City)
	assert.Equal(t, []string{}, bare.Images)
	assert.Equal(t, string(model.VenueDomain), bare.Type)
}

func TestParseListingNoCards(t *testing.T) {
	doc, err := Document(`<html><body><p>Accès refusé</p></body></html>`)
	require.NoError(t, err)

	records, matched := ParseListing(doc.Selection, nil, model.KindVenue, testListing)
	assert.Empty(t, records)
	assert.Equal(t, "", matched)
}

func TestParseDetail(t *testing.T) {
	doc, err := Document(`<div>
	  <div class="storefrontDescription__content"> Description complète. </div>
	  <ul class="storefrontServices__list">
	    <li class="storefrontServices__item">Reportage</li>
	    <li class="storefrontServices__item"> </li>
	    <li class="storefrontServices__item">Album</li>
	  </ul>
	</div>`)
	require.NoError(t, err)

	d := ParseDetail(doc.Selection, DetailSelectors{
		Description: Field{".storefrontDescription__content"},
		Services:    Field{".storefrontServices__item"},
	})
	assert.Equal(t, "Description complète.", d.Description)
	assert.Equal(t, []string{"Reportage", "Album"}, d.Services)
}

func TestVenueLinksAndContact(t *testing.T) {
	doc, err := Document(`<div>
	  <div class="app-list-directory-item"><a class="gtm-business-list-link" href="/chateau-mariage/a--e1.htm">A</a></div>
	  <div class="app-list-directory-item"><a class="gtm-business-list-link" href="/domaine-mariage/b--e2.htm">B</a></div>
	  <div class="app-list-directory-item"><a class="gtm-business-list-link" href="/salle-mariage/c--e3.htm">C</a></div>
	  <h1 class="storefrontHeading__title">Château A</h1>
	  <span class="app-business-contact-email">contact@chateau-a.fr</span>
	</div>`)
	require.NoError(t, err)
	base, _ := url.Parse("https://www.mariages.net/")

	sel := ContactSelectors{
		VenueLinks: Field{".app-list-directory-item a.gtm-business-list-link"},
		Title:      Field{".storefrontHeading__title", "h1"},
		Email:      Field{".app-business-contact-email"},
		Phone:      Field{".app-business-contact-phone"},
		Person:     Field{".app-business-contact-name"},
	}

	links := VenueLinks(doc.Selection, base, sel, 2)
	assert.Equal(t, []string{
		"https://www.mariages.net/chateau-mariage/a--e1.htm",
		"https://www.mariages.net/domaine-mariage/b--e2.htm",
	}, links)

	c := ParseContact(doc.Selection, links[0], sel)
	assert.Equal(t, "Château A", c.Name)
	assert.Equal(t, model.VenueCastle, c.Type)
	assert.Equal(t, "contact@chateau-a.fr", c.Email)
	assert.Equal(t, model.Unavailable, c.Phone)
	assert.Equal(t, model.Unavailable, c.ContactPerson)
}
