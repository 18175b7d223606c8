package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jeffMauritius/scrapper/internal/extract"
	"github.com/jeffMauritius/scrapper/internal/fetch"
	"github.com/jeffMauritius/scrapper/internal/model"
)

// DetailPage completes a listing record from its detail page: the full
// description replaces the card summary, and vendor services are added.
// Fields the page lacks keep their listing values.
type DetailPage struct {
	fetcher fetch.Fetcher
	sel     extract.DetailSelectors
	logger  *slog.Logger
}

func NewDetailPage(fetcher fetch.Fetcher, sel extract.DetailSelectors, logger *slog.Logger) *DetailPage {
	return &DetailPage{fetcher: fetcher, sel: sel, logger: logger}
}

func (d *DetailPage) Enrich(ctx context.Context, rec *model.Record) error {
	if rec.URL == "" {
		return nil
	}
	page, err := d.fetcher.Fetch(ctx, rec.URL)
	if err != nil {
		return fmt.Errorf("detail page: %w", err)
	}

	detail := extract.ParseDetail(page.Doc.Selection, d.sel)
	if detail.Description != "" {
		rec.Description = detail.Description
	}
	if len(detail.Services) > 0 {
		rec.Services = detail.Services
	}
	d.logger.Debug("Detail enriched", "name", rec.Name, "services", len(detail.Services))
	return nil
}
