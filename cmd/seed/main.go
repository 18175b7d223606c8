package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeffMauritius/scrapper/internal/config"
	"github.com/jeffMauritius/scrapper/internal/ingest"
	"github.com/jeffMauritius/scrapper/internal/metrics"
	"github.com/jeffMauritius/scrapper/internal/model"
	"github.com/jeffMauritius/scrapper/internal/source"
	"github.com/jeffMauritius/scrapper/internal/storage"
)

func main() {
	cfg := config.Load()

	kindFlag := flag.String("kind", "venues", "Collection to read: venues or vendors")
	path := flag.String("file", "", "JSON file to import (default depends on -kind)")
	offset := flag.Int("offset", 0, "Index of the first record to import")
	limit := flag.Int("limit", 0, "Number of records to import (0 = to the end)")
	driver := flag.String("driver", cfg.DBDriver, "Database driver: duckdb or pgx")
	dsn := flag.String("dsn", cfg.DatabaseURL, "DuckDB file or Postgres URL")
	redisURL := flag.String("redis", cfg.RedisURL, "Redis URL for sharing seen keys between runs (optional)")
	metricsFile := flag.String("metrics", cfg.MetricsFile, "Write Prometheus metrics to this textfile")
	debug := flag.Bool("debug", false, "Enable debug logs")
	flag.Parse()

	logger := config.NewLogger(false, *debug)

	kind, err := model.ParseKind(*kindFlag)
	if err != nil {
		logger.Error("Invalid kind", "err", err)
		os.Exit(1)
	}
	if *path == "" {
		*path = cfg.VenuesFile
		if kind == model.KindVendor {
			*path = cfg.VendorsFile
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := storage.Open(*driver, *dsn, logger)
	if err != nil {
		logger.Error("DB connection failed", "err", err)
		os.Exit(1)
	}
	defer repo.Close()
	if err := repo.Init(ctx); err != nil {
		logger.Error("DB init failed", "err", err)
		os.Exit(1)
	}
	if *redisURL != "" {
		reg, err := storage.NewRedisRegistry(ctx, *redisURL, kind)
		if err != nil {
			logger.Error("Redis connection failed", "err", err)
			os.Exit(1)
		}
		repo.WithRegistry(reg)
	}

	src := source.NewJSONFile(*path, kind, logger)
	src.Offset, src.Limit = *offset, *limit

	run := metrics.NewRun("seed", string(kind))
	pipeline := ingest.NewPipeline(repo, logger.With("source", src.Name()), ingest.Options{
		Observer:        run,
		ProgressEvery:   100,
		ContinueOnError: true,
	})

	logger.Info("Seeding", "file", *path, "offset", *offset, "limit", *limit, "driver", repo.Driver())
	err = src.Walk(ctx, pipeline.Process)

	s := pipeline.Stats()
	logger.Info("Seed complete", "processed", s.Found, "added", s.Added, "skipped", s.Skipped, "errors", s.Failed)
	if werr := run.WriteTextfile(*metricsFile); werr != nil {
		logger.Warn("Metrics write failed", "path", *metricsFile, "err", werr)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Seed failed", "err", err)
		repo.Close()
		os.Exit(1)
	}
}
