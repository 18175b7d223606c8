package fetch

import (
	"context"
	"errors"
	"math/rand"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var ErrNotFound = errors.New("page not found")

// Page is a fetched and parsed HTML document.
type Page struct {
	URL *url.URL
	Doc *goquery.Document
}

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
}

func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// Jitter returns base plus a random duration in [0, spread).
func Jitter(base, spread time.Duration) time.Duration {
	if spread <= 0 {
		return base
	}
	return base + time.Duration(rand.Int63n(int64(spread)))
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
