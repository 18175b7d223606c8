package source

import (
	"context"
	"log/slog"

	"github.com/jeffMauritius/scrapper/internal/model"
	"github.com/jeffMauritius/scrapper/internal/storage"
)

// JSONFile replays records from a document written by a previous scrape,
// optionally restricted to the slice [Offset, Offset+Limit).
type JSONFile struct {
	store  *storage.JSONStore
	Offset int
	// Limit of 0 reads to the end.
	Limit int
}

func NewJSONFile(path string, kind model.Kind, logger *slog.Logger) *JSONFile {
	return &JSONFile{store: storage.NewJSONStore(path, kind, logger)}
}

func (s *JSONFile) Name() string {
	return "JSON:" + s.store.Path()
}

func (s *JSONFile) Fetch(ctx context.Context) ([]model.Record, error) {
	records, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return Window(records, s.Offset, s.Limit), nil
}

func (s *JSONFile) Walk(ctx context.Context, emit EmitFunc) error {
	records, err := s.Fetch(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := emit(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Window returns records[offset:offset+limit], clamped to the slice.
func Window[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return items[:0]
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
