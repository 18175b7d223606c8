package main

import (
	"context"
	"flag"
	"os"

	"github.com/jeffMauritius/scrapper/internal/config"
	"github.com/jeffMauritius/scrapper/internal/model"
	"github.com/jeffMauritius/scrapper/internal/storage"
)

// migrate-urls copies detail page URLs from a scraped JSON file onto
// establishments seeded before the url column was filled.
func main() {
	cfg := config.Load()

	kindFlag := flag.String("kind", "venues", "Collection in the file: venues or vendors")
	path := flag.String("file", "", "JSON file holding the URLs (default depends on -kind)")
	driver := flag.String("driver", cfg.DBDriver, "Database driver: duckdb or pgx")
	dsn := flag.String("dsn", cfg.DatabaseURL, "DuckDB file or Postgres URL")
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

	records, err := storage.NewJSONStore(*path, kind, logger).Load()
	if err != nil {
		logger.Error("Read failed", "path", *path, "err", err)
		os.Exit(1)
	}

	repo, err := storage.Open(*driver, *dsn, logger)
	if err != nil {
		logger.Error("DB connection failed", "err", err)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()
	if err := repo.Init(ctx); err != nil {
		logger.Error("DB init failed", "err", err)
		os.Exit(1)
	}

	var updated, missing, failed int64
	for _, r := range records {
		if r.URL == "" {
			continue
		}
		n, err := repo.SetURL(ctx, r.Name, r.City, r.Region, r.URL)
		if err != nil {
			logger.Error("Update failed", "name", r.Name, "err", err)
			failed++
			continue
		}
		if n == 0 {
			logger.Debug("No establishment matches", "name", r.Name, "city", r.City)
			missing++
		}
		updated += n
	}

	logger.Info("Migration complete", "records", len(records), "updated", updated, "unmatched", missing, "errors", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
