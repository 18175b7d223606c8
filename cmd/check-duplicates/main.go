package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jeffMauritius/scrapper/internal/config"
	"github.com/jeffMauritius/scrapper/internal/storage"
)

func main() {
	cfg := config.Load()

	driver := flag.String("driver", cfg.DBDriver, "Database driver: duckdb or pgx")
	dsn := flag.String("dsn", cfg.DatabaseURL, "DuckDB file or Postgres URL")
	del := flag.Bool("delete", false, "Delete every duplicate except the oldest of each group")
	fuzzy := flag.Bool("fuzzy", false, "Also list names that are nearly identical")
	threshold := flag.Float64("threshold", 0.92, "Minimum Jaro-Winkler similarity for -fuzzy")
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

	groups, err := repo.Duplicates(ctx)
	if err != nil {
		logger.Error("Duplicate lookup failed", "err", err)
		os.Exit(1)
	}

	if len(groups) == 0 {
		fmt.Println("No duplicates found.")
	} else {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "ID", "City", "Created", "Images", "Action"})
		extra := 0
		for _, g := range groups {
			for i, m := range g.Members {
				action := "keep"
				if i > 0 {
					action = "delete"
					extra++
				}
				t.AppendRow(table.Row{m.Name, m.ID, m.City, m.CreatedAt.Format("2006-01-02 15:04"), m.ImageCount, action})
			}
			t.AppendSeparator()
		}
		t.AppendFooter(table.Row{fmt.Sprintf("%d groups", len(groups)), "", "", "", "", fmt.Sprintf("%d extra", extra)})
		t.SetStyle(table.StyleRounded)
		t.Render()
	}

	if *fuzzy {
		names, err := repo.Names(ctx)
		if err != nil {
			logger.Error("Name lookup failed", "err", err)
			os.Exit(1)
		}
		pairs := storage.SimilarNames(names, *threshold)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "City", "Similar to", "City", "Similarity"})
		for _, p := range pairs {
			t.AppendRow(table.Row{p.Left.Name, p.Left.City, p.Right.Name, p.Right.City, fmt.Sprintf("%.3f", p.Similarity)})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	}

	if !*del || len(groups) == 0 {
		return
	}

	var ids []string
	for _, g := range groups {
		for _, m := range g.Members[1:] {
			ids = append(ids, m.ID)
		}
	}
	deleted, err := repo.Delete(ctx, ids...)
	if err != nil {
		logger.Error("Delete failed", "err", err)
		os.Exit(1)
	}
	logger.Info("Duplicates deleted", "groups", len(groups), "rows_deleted", deleted)
}
