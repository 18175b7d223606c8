package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/jeffMauritius/scrapper/internal/config"
	"github.com/jeffMauritius/scrapper/internal/storage"
)

func main() {
	cfg := config.Load()

	driver := flag.String("driver", cfg.DBDriver, "Database driver: duckdb or pgx")
	dsn := flag.String("dsn", cfg.DatabaseURL, "DuckDB file or Postgres URL")
	name := flag.String("name", "", "Search by name (case-insensitive contains)")
	city := flag.String("city", "", "Filter by city")
	region := flag.String("region", "", "Filter by region")
	typ := flag.String("type", "", "Filter by type, e.g. \"Château mariage\"")
	outPath := flag.String("out", "out/establishments.csv", "Output CSV path")
	flag.Parse()

	logger := config.NewLogger(false, false)

	repo, err := storage.Open(*driver, *dsn, logger)
	if err != nil {
		logger.Error("Failed to connect to DB", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()
	if err := repo.Init(ctx); err != nil {
		logger.Error("DB init failed", "error", err)
		os.Exit(1)
	}

	list, err := repo.Search(ctx, storage.SearchFilter{Name: *name, City: *city, Region: *region, Type: *typ})
	if err != nil {
		logger.Error("Search failed", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		logger.Error("Failed to create output directory", "error", err)
		os.Exit(1)
	}
	f, err := os.Create(*outPath)
	if err != nil {
		logger.Error("Failed to create output file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := storage.WriteCSV(f, list); err != nil {
		logger.Error("Export failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Search complete", "output", *outPath, "rows", len(list))
}
