package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

type CollyOptions struct {
	AllowedDomains []string
	// UserAgent is fixed for the whole run; empty picks a random one.
	UserAgent      string
	AcceptLanguage string
	Referer        string
	Delay          time.Duration
	RandomDelay    time.Duration
	Timeout        time.Duration
	// RetryWait is the pause before the single retry of a failed page.
	RetryWait time.Duration
}

func DefaultCollyOptions() CollyOptions {
	return CollyOptions{
		AllowedDomains: []string{"mariages.net", "www.mariages.net"},
		AcceptLanguage: "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7",
		Referer:        "https://www.mariages.net/",
		Delay:          2 * time.Second,
		RandomDelay:    3 * time.Second,
		Timeout:        60 * time.Second,
		RetryWait:      5 * time.Second,
	}
}

// Colly fetches pages over plain HTTP with a per-domain rate limit.
type Colly struct {
	c         *colly.Collector
	logger    *slog.Logger
	retryWait time.Duration
}

const (
	pageKey   = "page"
	statusKey = "status"
)

func NewColly(logger *slog.Logger, opts CollyOptions) (*Colly, error) {
	collyOpts := []colly.CollectorOption{colly.AllowURLRevisit()}
	if len(opts.AllowedDomains) > 0 {
		collyOpts = append(collyOpts, colly.AllowedDomains(opts.AllowedDomains...))
	}
	c := colly.NewCollector(collyOpts...)
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}

	err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       opts.Delay,
		RandomDelay: opts.RandomDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("colly limit: %w", err)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = RandomUserAgent()
	}
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", ua)
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		if opts.AcceptLanguage != "" {
			r.Headers.Set("Accept-Language", opts.AcceptLanguage)
		}
		if opts.Referer != "" {
			r.Headers.Set("Referer", opts.Referer)
		}
	})

	c.OnResponse(func(r *colly.Response) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			logger.Debug("Unparseable response", "url", r.Request.URL.String(), "err", err)
			return
		}
		r.Ctx.Put(pageKey, &Page{URL: r.Request.URL, Doc: doc})
	})

	c.OnError(func(r *colly.Response, err error) {
		if r.Ctx != nil {
			r.Ctx.Put(statusKey, r.StatusCode)
		}
	})

	logger.Debug("Colly fetcher ready", "ua", ua)
	return &Colly{c: c, logger: logger, retryWait: opts.RetryWait}, nil
}

// Fetch requests rawURL, retrying once after RetryWait. A 404 is not
// retried and reports ErrNotFound.
func (f *Colly) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	page, err := f.visit(ctx, rawURL)
	if err == nil || errors.Is(err, ErrNotFound) || ctx.Err() != nil {
		return page, err
	}

	f.logger.Warn("Fetch failed, retrying", "url", rawURL, "err", err)
	if err := Sleep(ctx, f.retryWait); err != nil {
		return nil, err
	}
	page, err = f.visit(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	return page, nil
}

func (f *Colly) visit(ctx context.Context, rawURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reqCtx := colly.NewContext()
	if err := f.c.Request(http.MethodGet, rawURL, nil, reqCtx, nil); err != nil {
		if status, _ := reqCtx.GetAny(statusKey).(int); status == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrNotFound)
		}
		return nil, err
	}

	page, ok := reqCtx.GetAny(pageKey).(*Page)
	if !ok {
		return nil, fmt.Errorf("no HTML document at %s", rawURL)
	}
	return page, nil
}
