package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jeffMauritius/scrapper/internal/browser"
	"github.com/jeffMauritius/scrapper/internal/config"
	"github.com/jeffMauritius/scrapper/internal/extract"
	"github.com/jeffMauritius/scrapper/internal/model"
	"github.com/jeffMauritius/scrapper/internal/source"
)

func main() {
	cfg := config.Load()

	limit := flag.Int("limit", 5, "Number of venues to visit")
	listURL := flag.String("url", source.ContactListURL, "Listing page to take venues from")
	headless := flag.Bool("headless", cfg.Headless, "Run Chrome headless")
	selectorsFile := flag.String("selectors", cfg.SelectorsFile, "JSON5 file overriding the default selectors")
	debug := flag.Bool("debug", false, "Enable debug logs")
	flag.Parse()

	logger := config.NewLogger(false, *debug)

	selectors, err := extract.LoadSelectors(*selectorsFile, source.DefaultSelectors(model.KindVenue))
	if err != nil {
		logger.Error("Selectors load failed", "err", err)
		os.Exit(1)
	}

	lock, err := browser.AcquireLock(cfg.LockFile, time.Hour)
	if errors.Is(err, browser.ErrLocked) {
		logger.Warn("Another browser run is in progress; wait for it or remove the lock file if it is stale", "lock", cfg.LockFile)
		return
	}
	if err != nil {
		logger.Error("Lock failed", "err", err)
		os.Exit(1)
	}
	defer lock.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := browser.DefaultOptions()
	opts.Headless = *headless
	opts.ExecPath = cfg.ChromeBin
	opts.Timeout = cfg.RequestTimeout
	b, err := browser.New(ctx, opts)
	if err != nil {
		logger.Error("Browser start failed", "err", err)
		lock.Release()
		os.Exit(1)
	}
	defer b.Close()

	ccfg := source.DefaultContactsConfig()
	ccfg.ListURL = *listURL
	ccfg.Limit = *limit
	ccfg.Selectors = selectors.Contact

	contacts, err := source.NewContacts(b, ccfg, logger).Read(ctx)
	if err != nil {
		logger.Error("Contact read failed", "err", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Name", "Type", "Contact", "Email", "Phone", "URL"})
	for i, c := range contacts {
		t.AppendRow(table.Row{i + 1, c.Name, c.Type, c.ContactPerson, c.Email, c.Phone, c.URL})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
