package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeffMauritius/scrapper/internal/blob"
	"github.com/jeffMauritius/scrapper/internal/config"
	"github.com/jeffMauritius/scrapper/internal/metrics"
	"github.com/jeffMauritius/scrapper/internal/storage"
)

func main() {
	cfg := config.Load()

	offset := flag.Int("offset", 0, "Skip this many establishments, oldest first")
	limit := flag.Int("limit", 0, "Number of establishments to process (0 = all)")
	pause := flag.Duration("pause", time.Second, "Pause between two images")
	driver := flag.String("driver", cfg.DBDriver, "Database driver: duckdb or pgx")
	dsn := flag.String("dsn", cfg.DatabaseURL, "DuckDB file or Postgres URL")
	blobURL := flag.String("blob-url", cfg.BlobBaseURL, "Blob store base URL")
	metricsFile := flag.String("metrics", cfg.MetricsFile, "Write Prometheus metrics to this textfile")
	debug := flag.Bool("debug", false, "Enable debug logs")
	flag.Parse()

	logger := config.NewLogger(false, *debug)

	client, err := blob.NewClient(*blobURL, cfg.BlobToken)
	if errors.Is(err, blob.ErrNoToken) {
		logger.Error("BLOB_READ_WRITE_TOKEN environment variable not set")
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Blob client setup failed", "err", err)
		os.Exit(1)
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

	run := metrics.NewRun("upload-images", "venue")
	mirror := blob.NewMirror(client, repo, logger, *pause, run)

	stats, err := mirror.Run(ctx, *offset, *limit)
	logger.Info("Upload complete",
		"establishments", stats.Establishments,
		"already_mirrored", stats.Skipped,
		"uploaded", stats.Uploaded,
		"failed", stats.Failed)
	if werr := run.WriteTextfile(*metricsFile); werr != nil {
		logger.Warn("Metrics write failed", "path", *metricsFile, "err", werr)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Upload failed", "err", err)
		os.Exit(1)
	}
}
