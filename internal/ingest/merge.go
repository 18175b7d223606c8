package ingest

import "github.com/jeffMauritius/scrapper/internal/model"

type Result struct {
	Records []model.Record
	Added   int
	Skipped int
}

// Merge appends to existing every incoming record whose key is not already
// in existing. Existing records are never modified or reordered. Keys are
// only checked against existing, so two incoming records sharing a key are
// both added.
func Merge(existing, incoming []model.Record) Result {
	keys := make(map[model.Key]struct{}, len(existing))
	for _, r := range existing {
		keys[r.Key()] = struct{}{}
	}

	out := make([]model.Record, 0, len(existing)+len(incoming))
	out = append(out, existing...)

	res := Result{}
	for _, r := range incoming {
		if _, ok := keys[r.Key()]; ok {
			res.Skipped++
			continue
		}
		out = append(out, r.Normalized())
		res.Added++
	}
	res.Records = out
	return res
}

// Dedupe keeps the first record of every key.
func Dedupe(records []model.Record) []model.Record {
	seen := make(map[model.Key]struct{}, len(records))
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r.Normalized())
	}
	return out
}
