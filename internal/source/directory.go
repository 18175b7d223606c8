package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jeffMauritius/scrapper/internal/extract"
	"github.com/jeffMauritius/scrapper/internal/fetch"
	"github.com/jeffMauritius/scrapper/internal/model"
)

type DirectoryConfig struct {
	Name string
	Kind model.Kind
	// HomeURL is visited once before the listing, "" to skip.
	HomeURL string
	// PageURL is a format string taking the page number.
	PageURL      string
	TotalItems   int
	ItemsPerPage int
	StartPage    int
	// MaxPages caps the walk; 0 walks to the last page.
	MaxPages  int
	Selectors extract.ListingSelectors
}

// PageObserver is told how each listing page went: "ok", "empty" or
// "failed".
type PageObserver interface {
	Page(result string)
}

// Directory walks the paginated listing of a directory and emits the base
// record of every card that links to a detail page.
type Directory struct {
	cfg      DirectoryConfig
	fetcher  fetch.Fetcher
	logger   *slog.Logger
	observer PageObserver
}

func NewDirectory(cfg DirectoryConfig, fetcher fetch.Fetcher, logger *slog.Logger, observer PageObserver) *Directory {
	if cfg.StartPage < 1 {
		cfg.StartPage = 1
	}
	return &Directory{cfg: cfg, fetcher: fetcher, logger: logger, observer: observer}
}

func (d *Directory) Name() string { return d.cfg.Name }

// LastPage is the last listing page to visit.
func (d *Directory) LastPage() int {
	last := d.cfg.StartPage
	if d.cfg.ItemsPerPage > 0 {
		last = (d.cfg.TotalItems + d.cfg.ItemsPerPage - 1) / d.cfg.ItemsPerPage
	}
	if d.cfg.MaxPages > 0 && d.cfg.StartPage+d.cfg.MaxPages-1 < last {
		last = d.cfg.StartPage + d.cfg.MaxPages - 1
	}
	return last
}

func (d *Directory) Fetch(ctx context.Context) ([]model.Record, error) {
	return collect(ctx, d)
}

func (d *Directory) Walk(ctx context.Context, emit EmitFunc) error {
	if d.cfg.HomeURL != "" {
		d.logger.Info("Warming up session", "url", d.cfg.HomeURL)
		if _, err := d.fetcher.Fetch(ctx, d.cfg.HomeURL); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Warn("Warm-up visit failed", "err", err)
		}
	}

	last := d.LastPage()
	d.logger.Info("Walking directory", "from", d.cfg.StartPage, "to", last)

	for page := d.cfg.StartPage; page <= last; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		pageURL := fmt.Sprintf(d.cfg.PageURL, page)
		d.logger.Info("Listing page", "page", page, "of", last)

		p, err := d.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Error("Page skipped", "page", page, "err", err)
			d.observe("failed")
			continue
		}

		records, matched := extract.ParseListing(p.Doc.Selection, p.URL, d.cfg.Kind, d.cfg.Selectors)
		if len(records) == 0 {
			d.logger.Warn("No cards found", "page", page, "url", pageURL)
			d.observe("empty")
			continue
		}
		d.observe("ok")
		d.logger.Debug("Cards found", "page", page, "count", len(records), "selector", matched)

		for _, rec := range records {
			if rec.URL == "" || rec.Name == "" {
				d.logger.Debug("Card without name or link", "page", page, "name", rec.Name)
				continue
			}
			if err := emit(ctx, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Directory) observe(result string) {
	if d.observer != nil {
		d.observer.Page(result)
	}
}
