package enrich

import (
	"context"

	"github.com/jeffMauritius/scrapper/internal/model"
)

type Enricher interface {
	Enrich(ctx context.Context, rec *model.Record) error
}
