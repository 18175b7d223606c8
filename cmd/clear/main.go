package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jeffMauritius/scrapper/internal/config"
	"github.com/jeffMauritius/scrapper/internal/model"
	"github.com/jeffMauritius/scrapper/internal/storage"
)

func main() {
	cfg := config.Load()

	driver := flag.String("driver", cfg.DBDriver, "Database driver: duckdb or pgx")
	dsn := flag.String("dsn", cfg.DatabaseURL, "DuckDB file or Postgres URL")
	redisURL := flag.String("redis", cfg.RedisURL, "Redis URL whose claimed keys are reset too (optional)")
	yes := flag.Bool("yes", false, "Do not ask for confirmation")
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

	if !*yes {
		fmt.Printf("\nDelete ALL %d establishments and their images from %s?\n", n, repo.Driver())
		fmt.Print("\nAre you sure? (yes/no): ")

		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "yes" && response != "y" {
			fmt.Println("Cancelled.")
			os.Exit(0)
		}
	}

	images, establishments, err := repo.Clear(ctx)
	if err != nil {
		logger.Error("Clear failed", "err", err)
		os.Exit(1)
	}
	logger.Info("Collection cleared", "images_deleted", images, "establishments_deleted", establishments)

	if *redisURL != "" {
		for _, kind := range []model.Kind{model.KindVenue, model.KindVendor} {
			reg, err := storage.NewRedisRegistry(ctx, *redisURL, kind)
			if err != nil {
				logger.Error("Redis connection failed", "err", err)
				os.Exit(1)
			}
			if err := reg.Reset(ctx); err != nil {
				logger.Error("Key reset failed", "kind", kind, "err", err)
			}
			reg.Close()
		}
		logger.Info("Claimed keys reset")
	}
}
