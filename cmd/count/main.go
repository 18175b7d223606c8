package main

import (
	"context"
	"flag"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jeffMauritius/scrapper/internal/config"
	"github.com/jeffMauritius/scrapper/internal/storage"
)

func main() {
	cfg := config.Load()

	driver := flag.String("driver", cfg.DBDriver, "Database driver: duckdb or pgx")
	dsn := flag.String("dsn", cfg.DatabaseURL, "DuckDB file or Postgres URL")
	flag.Parse()

	logger := config.NewLogger(false, false)

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

	n, err := repo.Count(ctx)
	if err != nil {
		logger.Error("Count failed", "err", err)
		os.Exit(1)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Database", "Establishments"})
	t.AppendRow(table.Row{repo.Driver(), n})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
