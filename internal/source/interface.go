package source

import (
	"context"

	"github.com/jeffMauritius/scrapper/internal/model"
)

type Sourcer interface {
	Name() string
	Fetch(ctx context.Context) ([]model.Record, error)
}

// EmitFunc receives records one at a time; returning an error stops the
// source.
type EmitFunc func(ctx context.Context, rec model.Record) error

// Walker is a source that can hand records over as it finds them.
type Walker interface {
	Sourcer
	Walk(ctx context.Context, emit EmitFunc) error
}

// collect adapts a Walker to Fetch.
func collect(ctx context.Context, w Walker) ([]model.Record, error) {
	var out []model.Record
	err := w.Walk(ctx, func(_ context.Context, rec model.Record) error {
		out = append(out, rec)
		return nil
	})
	return out, err
}
