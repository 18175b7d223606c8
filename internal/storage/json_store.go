package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeffMauritius/scrapper/internal/ingest"
	"github.com/jeffMauritius/scrapper/internal/model"
)

// JSONStore keeps one kind of record in a single JSON document of the form
// {"venues": [...]} or {"vendors": [...]}.
type JSONStore struct {
	path   string
	kind   model.Kind
	logger *slog.Logger
	mu     sync.Mutex
}

func NewJSONStore(path string, kind model.Kind, logger *slog.Logger) *JSONStore {
	return &JSONStore{path: path, kind: kind, logger: logger}
}

func (s *JSONStore) Path() string { return s.path }

// Load returns the stored records. A missing file is an empty store, and so
// is unreadable JSON: a damaged document is replaced on the next write
// rather than stopping the run.
func (s *JSONStore) Load() ([]model.Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	records, err := decodeDocument(data, s.kind)
	if err != nil {
		s.logger.Warn("Existing store is malformed, starting empty", "path", s.path, "err", err)
		return []model.Record{}, nil
	}
	return records, nil
}

func decodeDocument(data []byte, kind model.Kind) ([]model.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []model.Record{}, nil
	}

	if data[0] == '[' {
		var records []model.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	raw, ok := doc[kind.Collection()]
	if !ok || string(raw) == "null" {
		return []model.Record{}, nil
	}
	var records []model.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Save replaces the document with records, creating the directory when
// needed. A failed write is retried once.
func (s *JSONStore) Save(records []model.Record) error {
	normalized := make([]model.Record, len(records))
	for i, r := range records {
		normalized[i] = r.Normalized()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string][]model.Record{s.kind.Collection(): normalized}); err != nil {
		return fmt.Errorf("encode %s: %w", s.kind.Collection(), err)
	}

	err := s.write(buf.Bytes())
	if err != nil {
		s.logger.Warn("Write failed, retrying", "path", s.path, "err", err)
		err = s.write(buf.Bytes())
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

func (s *JSONStore) write(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Merge loads the store, appends the new records and writes it back.
func (s *JSONStore) Merge(incoming []model.Record) (ingest.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.Load()
	if err != nil {
		return ingest.Result{}, err
	}
	res := ingest.Merge(existing, incoming)
	if err := s.Save(res.Records); err != nil {
		return res, err
	}
	s.logger.Debug("Store updated", "path", s.path, "added", res.Added, "skipped", res.Skipped, "total", len(res.Records))
	return res, nil
}

// Append stores a single record; it reports false when the key was
// already present.
func (s *JSONStore) Append(ctx context.Context, rec model.Record) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	res, err := s.Merge([]model.Record{rec})
	if err != nil {
		return false, err
	}
	return res.Added == 1, nil
}
