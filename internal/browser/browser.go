package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

type Options struct {
	Headless       bool
	ExecPath       string
	UserAgent      string
	AcceptLanguage string
	Width, Height  int
	// Timeout bounds every single browser step (navigate, click, read).
	Timeout time.Duration
	Logf    func(string, ...any)
}

func DefaultOptions() Options {
	return Options{
		Headless:       true,
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		AcceptLanguage: "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7",
		Width:          1920,
		Height:         1080,
		Timeout:        2 * time.Minute,
	}
}

// Browser is one Chrome instance with a single tab, opened once per command
// run and released with Close.
type Browser struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

func New(ctx context.Context, opts Options) (*Browser, error) {
	execPath := opts.ExecPath
	if execPath == "" {
		execPath = FindExecPath()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)

	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(logf))

	cancel := func() {
		cancelTab()
		cancelAlloc()
	}

	// The first Run starts the browser; it must not carry a timeout or the
	// browser dies with it.
	actions := []chromedp.Action{network.Enable()}
	if opts.AcceptLanguage != "" {
		actions = append(actions, network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": opts.AcceptLanguage,
		}))
	}
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		cancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultOptions().Timeout
	}
	return &Browser{ctx: tabCtx, cancel: cancel, timeout: timeout}, nil
}

func (b *Browser) Close() {
	b.cancel()
}

// Run executes actions on the tab, bounded by the browser timeout and
// cancelled together with ctx.
func (b *Browser) Run(ctx context.Context, actions ...chromedp.Action) error {
	return b.RunTimeout(ctx, b.timeout, actions...)
}

func (b *Browser) RunTimeout(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url, waits settle for late scripts and returns the page HTML.
func (b *Browser) Navigate(ctx context.Context, url string, settle time.Duration) (string, error) {
	var html string
	err := b.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	return html, nil
}

// Reload reloads the current page and waits settle before reading it.
func (b *Browser) Reload(ctx context.Context, settle time.Duration) (string, error) {
	var html string
	err := b.Run(ctx,
		chromedp.Reload(),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("reload: %w", err)
	}
	return html, nil
}

// HTML returns the current page HTML without navigating.
func (b *Browser) HTML(ctx context.Context) (string, error) {
	var html string
	if err := b.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Click clicks the first selector in order that becomes visible within
// wait. It reports whether anything was clicked.
func (b *Browser) Click(ctx context.Context, selectors []string, wait time.Duration) (bool, error) {
	var lastErr error
	for _, sel := range selectors {
		err := b.RunTimeout(ctx, wait, chromedp.Click(sel, chromedp.ByQuery, chromedp.NodeVisible))
		if err == nil {
			return true, nil
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		lastErr = err
	}
	return false, lastErr
}

// FindExecPath locates a Chrome or Chromium binary, "" when none is found
// and chromedp should use its own lookup.
func FindExecPath() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}
	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	for _, p := range []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
