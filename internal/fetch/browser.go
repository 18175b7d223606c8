package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jeffMauritius/scrapper/internal/browser"
)

type BrowserOptions struct {
	// Settle is how long a page is left to run its scripts before reading.
	Settle time.Duration
	// RetrySettle is the longer wait used after a reload.
	RetrySettle time.Duration
	Delay       time.Duration
	RandomDelay time.Duration
}

func DefaultBrowserOptions() BrowserOptions {
	return BrowserOptions{
		Settle:      5 * time.Second,
		RetrySettle: 10 * time.Second,
		Delay:       2 * time.Second,
		RandomDelay: 3 * time.Second,
	}
}

// Navigator is the part of a browser tab Browser drives.
type Navigator interface {
	Navigate(ctx context.Context, url string, settle time.Duration) (string, error)
	Reload(ctx context.Context, settle time.Duration) (string, error)
}

var _ Navigator = (*browser.Browser)(nil)

// Browser fetches pages through a real Chrome tab, for markup that is only
// complete after scripts ran.
type Browser struct {
	b      Navigator
	logger *slog.Logger
	opts   BrowserOptions
	last   time.Time
}

func NewBrowser(b Navigator, logger *slog.Logger, opts BrowserOptions) *Browser {
	return &Browser{b: b, logger: logger, opts: opts}
}

// Fetch navigates to rawURL. On failure the page is reloaded once with the
// longer settle delay.
func (f *Browser) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := f.pace(ctx); err != nil {
		return nil, err
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	html, err := f.b.Navigate(ctx, rawURL, f.opts.Settle)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Warn("Navigation failed, reloading", "url", rawURL, "err", err)
		html, err = f.b.Reload(ctx, f.opts.RetrySettle)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return &Page{URL: u, Doc: doc}, nil
}

func (f *Browser) pace(ctx context.Context) error {
	if f.last.IsZero() {
		f.last = time.Now()
		return nil
	}
	wait := Jitter(f.opts.Delay, f.opts.RandomDelay) - time.Since(f.last)
	if err := Sleep(ctx, wait); err != nil {
		return err
	}
	f.last = time.Now()
	return nil
}
