package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffMauritius/scrapper/internal/model"
)

// fakeTab serves canned pages; clicking the contact button swaps in the
// page's "opened" variant.
type fakeTab struct {
	pages  map[string]string
	opened map[string]string
	broken map[string]bool
	url    string
	html   string
}

func (f *fakeTab) Navigate(_ context.Context, u string, _ time.Duration) (string, error) {
	if f.broken[u] {
		return "", errors.New("net::ERR_TIMED_OUT")
	}
	f.url = u
	f.html = f.pages[u]
	return f.html, nil
}

func (f *fakeTab) Click(_ context.Context, selectors []string, _ time.Duration) (bool, error) {
	if len(selectors) > 0 && selectors[0] == ".app-business-contact-button" {
		if html, ok := f.opened[f.url]; ok {
			f.html = html
			return true, nil
		}
	}
	return false, errors.New("not visible")
}

func (f *fakeTab) HTML(context.Context) (string, error) {
	return f.html, nil
}

func TestContactsRead(t *testing.T) {
	list := "https://site.test/list"
	tab := &fakeTab{
		pages: map[string]string{
			list: `<div class="app-list-directory-item"><a class="gtm-business-list-link" href="/chateau-mariage/a">A</a></div>
				<div class="app-list-directory-item"><a class="gtm-business-list-link" href="/domaine-mariage/b">B</a></div>
				<div class="app-list-directory-item"><a class="gtm-business-list-link" href="/domaine-mariage/c">C</a></div>
				<div class="app-list-directory-item"><a class="gtm-business-list-link" href="/domaine-mariage/d">D</a></div>`,
			"https://site.test/chateau-mariage/a": `<h1 class="storefrontHeading__title">Château A</h1>`,
			"https://site.test/domaine-mariage/b": `<h1 class="storefrontHeading__title">Domaine B</h1>`,
		},
		opened: map[string]string{
			"https://site.test/chateau-mariage/a": `<h1 class="storefrontHeading__title">Château A</h1>
				<span class="app-business-contact-email">contact@a.test</span>
				<span class="app-business-contact-phone">01 02 03 04 05</span>`,
		},
		broken: map[string]bool{"https://site.test/domaine-mariage/c": true},
	}

	cfg := DefaultContactsConfig()
	cfg.ListURL = list
	cfg.Limit = 3
	cfg.Pause, cfg.PauseJitter = 0, 0

	contacts, err := NewContacts(tab, cfg, discardLogger()).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, contacts, 2)

	a := contacts[0]
	assert.Equal(t, "Château A", a.Name)
	assert.Equal(t, model.VenueCastle, a.Type)
	assert.Equal(t, "contact@a.test", a.Email)
	assert.Equal(t, "01 02 03 04 05", a.Phone)
	assert.Equal(t, model.Unavailable, a.ContactPerson)

	b := contacts[1]
	assert.Equal(t, "Domaine B", b.Name)
	assert.Equal(t, model.VenueDomain, b.Type)
	assert.Equal(t, model.Unavailable, b.Email)
	assert.Equal(t, "https://site.test/domaine-mariage/b", b.URL)
}
