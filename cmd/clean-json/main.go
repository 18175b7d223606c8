package main

import (
	"flag"
	"os"

	"github.com/jeffMauritius/scrapper/internal/config"
	"github.com/jeffMauritius/scrapper/internal/ingest"
	"github.com/jeffMauritius/scrapper/internal/model"
	"github.com/jeffMauritius/scrapper/internal/storage"
)

func main() {
	cfg := config.Load()

	kindFlag := flag.String("kind", "venues", "Collection in the file: venues or vendors")
	path := flag.String("file", "", "JSON file to clean (default depends on -kind)")
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

	store := storage.NewJSONStore(*path, kind, logger)
	records, err := store.Load()
	if err != nil {
		logger.Error("Read failed", "path", *path, "err", err)
		os.Exit(1)
	}

	cleaned := ingest.Dedupe(records)
	if err := store.Save(cleaned); err != nil {
		logger.Error("Write failed", "path", *path, "err", err)
		os.Exit(1)
	}

	logger.Info("Cleaning complete",
		"path", *path,
		"before", len(records),
		"after", len(cleaned),
		"removed", len(records)-len(cleaned))
}
