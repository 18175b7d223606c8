package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/jeffMauritius/scrapper/internal/extract"
	"github.com/jeffMauritius/scrapper/internal/fetch"
	"github.com/jeffMauritius/scrapper/internal/model"
)

// Tab is the part of a browser the contact reader drives.
type Tab interface {
	Navigate(ctx context.Context, url string, settle time.Duration) (string, error)
	Click(ctx context.Context, selectors []string, wait time.Duration) (bool, error)
	HTML(ctx context.Context) (string, error)
}

type ContactsConfig struct {
	ListURL   string
	Limit     int
	Selectors extract.ContactSelectors
	Settle    time.Duration
	ClickWait time.Duration
	// Pause and PauseJitter space out venue visits.
	Pause       time.Duration
	PauseJitter time.Duration
}

func DefaultContactsConfig() ContactsConfig {
	return ContactsConfig{
		ListURL:     ContactListURL,
		Limit:       5,
		Selectors:   contactSelectors,
		Settle:      2 * time.Second,
		ClickWait:   5 * time.Second,
		Pause:       time.Second,
		PauseJitter: 2 * time.Second,
	}
}

// Contacts opens the contact panel of the first venues of a listing page.
type Contacts struct {
	tab    Tab
	cfg    ContactsConfig
	logger *slog.Logger
}

func NewContacts(tab Tab, cfg ContactsConfig, logger *slog.Logger) *Contacts {
	return &Contacts{tab: tab, cfg: cfg, logger: logger}
}

func (c *Contacts) Read(ctx context.Context) ([]model.Contact, error) {
	if _, err := c.tab.Navigate(ctx, c.cfg.ListURL, c.cfg.Settle); err != nil {
		return nil, fmt.Errorf("open listing: %w", err)
	}
	if ok, _ := c.tab.Click(ctx, c.cfg.Selectors.CookieButton, c.cfg.ClickWait); !ok {
		c.logger.Info("No cookie banner")
	}

	html, err := c.tab.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Document(html)
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(c.cfg.ListURL)
	links := extract.VenueLinks(doc.Selection, base, c.cfg.Selectors, c.cfg.Limit)
	c.logger.Info("Venues to visit", "count", len(links))

	contacts := make([]model.Contact, 0, len(links))
	for i, link := range links {
		if i > 0 {
			if err := fetch.Sleep(ctx, fetch.Jitter(c.cfg.Pause, c.cfg.PauseJitter)); err != nil {
				return contacts, err
			}
		}
		c.logger.Info("Visiting venue", "n", i+1, "of", len(links), "url", link)
		contact, err := c.readOne(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				return contacts, ctx.Err()
			}
			c.logger.Error("Venue skipped", "url", link, "err", err)
			continue
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

func (c *Contacts) readOne(ctx context.Context, link string) (model.Contact, error) {
	if _, err := c.tab.Navigate(ctx, link, c.cfg.Settle); err != nil {
		return model.Contact{}, err
	}

	opened, err := c.tab.Click(ctx, c.cfg.Selectors.ContactButton, c.cfg.ClickWait)
	if !opened {
		c.logger.Warn("Contact panel unavailable", "url", link, "err", err)
	}

	html, err := c.tab.HTML(ctx)
	if err != nil {
		return model.Contact{}, err
	}
	doc, err := extract.Document(html)
	if err != nil {
		return model.Contact{}, err
	}

	contact := extract.ParseContact(doc.Selection, link, c.cfg.Selectors)
	if !opened {
		contact.Email, contact.Phone, contact.ContactPerson = model.Unavailable, model.Unavailable, model.Unavailable
	}
	return contact, nil
}
