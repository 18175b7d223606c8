package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jeffMauritius/scrapper/internal/model"
)

type Enricher interface {
	Enrich(ctx context.Context, rec *model.Record) error
}

// Sink persists one record and reports whether it was new.
type Sink interface {
	Append(ctx context.Context, rec model.Record) (bool, error)
}

// Observer receives per-record outcomes, typically a metrics run.
type Observer interface {
	Outcome(outcome string)
}

const (
	OutcomeAdded        = "added"
	OutcomeSkipped      = "skipped"
	OutcomeFailed       = "failed"
	OutcomeEnrichFailed = "enrich_failed"
)

type Stats struct {
	Found, Added, Skipped, EnrichFailed, Failed int
}

func (s *Stats) incr(field string) {
	switch field {
	case "Found":
		s.Found++
	case OutcomeAdded:
		s.Added++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeEnrichFailed:
		s.EnrichFailed++
	case OutcomeFailed:
		s.Failed++
	}
}

type Options struct {
	Enricher Enricher
	Observer Observer
	// ProgressEvery logs a progress line every n records; 0 disables it.
	ProgressEvery int
	// ContinueOnError counts a failed write and moves on instead of
	// stopping the run.
	ContinueOnError bool
}

// Pipeline enriches each record and writes it straight to the sink, so an
// interrupted run keeps everything processed so far.
type Pipeline struct {
	sink   Sink
	logger *slog.Logger
	opts   Options

	mu    sync.Mutex
	stats Stats
}

func NewPipeline(sink Sink, logger *slog.Logger, opts Options) *Pipeline {
	return &Pipeline{sink: sink, logger: logger, opts: opts}
}

func (p *Pipeline) Process(ctx context.Context, rec model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.count("Found")

	if p.opts.Enricher != nil && rec.URL != "" {
		if err := p.opts.Enricher.Enrich(ctx, &rec); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("Enrichment failed, keeping listing fields", "name", rec.Name, "url", rec.URL, "err", err)
			p.outcome(OutcomeEnrichFailed)
		}
	}

	added, err := p.sink.Append(ctx, rec)
	switch {
	case err != nil:
		p.outcome(OutcomeFailed)
		p.logger.Error("Save failed", "name", rec.Name, "err", err)
		if !p.opts.ContinueOnError {
			return fmt.Errorf("save %q: %w", rec.Name, err)
		}
	case added:
		p.outcome(OutcomeAdded)
		p.logger.Debug("Saved new", "name", rec.Name, "city", rec.City)
	default:
		p.outcome(OutcomeSkipped)
		p.logger.Debug("Skipped duplicate", "name", rec.Name, "city", rec.City)
	}

	if n := p.opts.ProgressEvery; n > 0 {
		if s := p.Stats(); s.Found%n == 0 {
			p.logger.Info("Progress", "processed", s.Found, "added", s.Added, "skipped", s.Skipped, "failed", s.Failed)
		}
	}
	return nil
}

// Run processes records in order until the first fatal error.
func (p *Pipeline) Run(ctx context.Context, records []model.Record) error {
	for _, rec := range records {
		if err := p.Process(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns a snapshot of the counters.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Pipeline) count(field string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.incr(field)
}

func (p *Pipeline) outcome(o string) {
	p.count(o)
	if p.opts.Observer != nil {
		p.opts.Observer.Outcome(o)
	}
}
