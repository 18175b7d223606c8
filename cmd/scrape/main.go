package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeffMauritius/scrapper/internal/browser"
	"github.com/jeffMauritius/scrapper/internal/config"
	"github.com/jeffMauritius/scrapper/internal/enrich"
	"github.com/jeffMauritius/scrapper/internal/extract"
	"github.com/jeffMauritius/scrapper/internal/fetch"
	"github.com/jeffMauritius/scrapper/internal/ingest"
	"github.com/jeffMauritius/scrapper/internal/metrics"
	"github.com/jeffMauritius/scrapper/internal/model"
	"github.com/jeffMauritius/scrapper/internal/source"
	"github.com/jeffMauritius/scrapper/internal/storage"
)

type options struct {
	kind          model.Kind
	outPath       string
	useDB         bool
	driver, dsn   string
	redisURL      string
	useBrowser    bool
	headless      bool
	startPage     int
	maxPages      int
	noDetail      bool
	selectorsFile string
}

func main() {
	cfg := config.Load()

	kindFlag := flag.String("kind", "venues", "What to scrape: venues or vendors")
	outPath := flag.String("out", "", "JSON output file (default depends on -kind)")
	useDB := flag.Bool("db", false, "Write to the database instead of the JSON file")
	driver := flag.String("driver", cfg.DBDriver, "Database driver: duckdb or pgx")
	dsn := flag.String("dsn", cfg.DatabaseURL, "DuckDB file or Postgres URL")
	redisURL := flag.String("redis", cfg.RedisURL, "Redis URL for sharing seen keys between runs (optional)")
	useBrowser := flag.Bool("browser", false, "Load pages in Chrome instead of plain HTTP")
	headless := flag.Bool("headless", cfg.Headless, "Run Chrome headless")
	startPage := flag.Int("start", 1, "First listing page")
	maxPages := flag.Int("max-pages", 0, "Number of listing pages to walk (0 = all)")
	noDetail := flag.Bool("no-detail", false, "Skip detail pages")
	selectorsFile := flag.String("selectors", cfg.SelectorsFile, "JSON5 file overriding the default selectors")
	metricsFile := flag.String("metrics", cfg.MetricsFile, "Write Prometheus metrics to this textfile")
	debug := flag.Bool("debug", false, "Enable debug logs")
	flag.Parse()

	logger := config.NewLogger(true, *debug)

	kind, err := model.ParseKind(*kindFlag)
	if err != nil {
		logger.Error("Invalid kind", "err", err)
		os.Exit(1)
	}
	if *outPath == "" {
		*outPath = cfg.VenuesFile
		if kind == model.KindVendor {
			*outPath = cfg.VendorsFile
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := metrics.NewRun("scrape", string(kind))
	err = scrape(ctx, cfg, options{
		kind:          kind,
		outPath:       *outPath,
		useDB:         *useDB,
		driver:        *driver,
		dsn:           *dsn,
		redisURL:      *redisURL,
		useBrowser:    *useBrowser,
		headless:      *headless,
		startPage:     *startPage,
		maxPages:      *maxPages,
		noDetail:      *noDetail,
		selectorsFile: *selectorsFile,
	}, run, logger)

	if werr := run.WriteTextfile(*metricsFile); werr != nil {
		logger.Warn("Metrics write failed", "path", *metricsFile, "err", werr)
	}

	switch {
	case errors.Is(err, context.Canceled):
		logger.Warn("Interrupted, progress so far is saved")
	case err != nil:
		logger.Error("Scrape failed", "err", err)
		os.Exit(1)
	}
}

func scrape(ctx context.Context, cfg *config.Config, opts options, run *metrics.Run, logger *slog.Logger) error {
	selectors, err := extract.LoadSelectors(opts.selectorsFile, source.DefaultSelectors(opts.kind))
	if err != nil {
		return err
	}

	// Fetcher
	var fetcher fetch.Fetcher
	if opts.useBrowser {
		lock, err := browser.AcquireLock(cfg.LockFile, time.Hour)
		if err != nil {
			return err
		}
		defer lock.Release()

		bo := browser.DefaultOptions()
		bo.Headless = opts.headless
		bo.ExecPath = cfg.ChromeBin
		bo.Timeout = 2 * cfg.RequestTimeout
		b, err := browser.New(ctx, bo)
		if err != nil {
			return err
		}
		defer b.Close()

		fo := fetch.DefaultBrowserOptions()
		fo.Delay, fo.RandomDelay = cfg.PageDelay, cfg.PageRandomDelay
		fetcher = fetch.NewBrowser(b, logger.With("fetcher", "browser"), fo)
	} else {
		co := fetch.DefaultCollyOptions()
		co.Delay, co.RandomDelay = cfg.PageDelay, cfg.PageRandomDelay
		co.Timeout = cfg.RequestTimeout
		c, err := fetch.NewColly(logger.With("fetcher", "colly"), co)
		if err != nil {
			return err
		}
		fetcher = c
	}

	// Sink
	var sink ingest.Sink
	if opts.useDB {
		repo, err := storage.Open(opts.driver, opts.dsn, logger)
		if err != nil {
			return fmt.Errorf("DB connection failed: %w", err)
		}
		defer repo.Close()
		if err := repo.Init(ctx); err != nil {
			return err
		}
		if opts.redisURL != "" {
			reg, err := storage.NewRedisRegistry(ctx, opts.redisURL, opts.kind)
			if err != nil {
				return err
			}
			repo.WithRegistry(reg)
		}
		sink = repo
		logger.Info("Writing to database", "driver", repo.Driver())
	} else {
		sink = storage.NewJSONStore(opts.outPath, opts.kind, logger)
		logger.Info("Writing to JSON", "path", opts.outPath)
	}

	var enricher ingest.Enricher
	if !opts.noDetail {
		enricher = enrich.NewDetailPage(fetcher, selectors.Detail, logger.With("source", "detail"))
	}

	dcfg := source.DefaultDirectory(opts.kind)
	dcfg.Selectors = selectors.Listing
	dcfg.StartPage = opts.startPage
	dcfg.MaxPages = opts.maxPages
	srcLogger := logger.With("source", dcfg.Name)
	dir := source.NewDirectory(dcfg, fetcher, srcLogger, run)

	pipeline := ingest.NewPipeline(sink, srcLogger, ingest.Options{
		Enricher:      enricher,
		Observer:      run,
		ProgressEvery: source.ItemsPerPage,
	})

	err = dir.Walk(ctx, pipeline.Process)
	s := pipeline.Stats()
	logger.Info("Pipeline Complete",
		"total_found", s.Found,
		"added", s.Added,
		"skipped", s.Skipped,
		"enrich_failed", s.EnrichFailed,
		"errors", s.Failed)
	if err != nil && !errors.Is(err, context.Canceled) {
		run.Error("walk")
	}
	return err
}
