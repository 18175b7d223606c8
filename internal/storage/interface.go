package storage

import (
	"context"

	"github.com/jeffMauritius/scrapper/internal/model"
)

// RecordStore is the flat-file side: a whole collection read and written
// at once.
type RecordStore interface {
	Load() ([]model.Record, error)
	Save(records []model.Record) error
	Append(ctx context.Context, rec model.Record) (bool, error)
}

// KeyRegistry lets concurrent runs agree on which identity keys are taken.
type KeyRegistry interface {
	Claim(ctx context.Context, key model.Key) (bool, error)
	Release(ctx context.Context, key model.Key) error
	Close() error
}

var (
	_ RecordStore = (*JSONStore)(nil)
	_ KeyRegistry = (*RedisRegistry)(nil)
)
