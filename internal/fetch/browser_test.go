package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTab struct {
	navigateErr error
	reloadErr   error
	html        string

	navigated []string
	settles   []time.Duration
	reloads   int
}

func (f *fakeTab) Navigate(_ context.Context, url string, settle time.Duration) (string, error) {
	f.navigated = append(f.navigated, url)
	f.settles = append(f.settles, settle)
	if f.navigateErr != nil {
		return "", f.navigateErr
	}
	return f.html, nil
}

func (f *fakeTab) Reload(_ context.Context, settle time.Duration) (string, error) {
	f.reloads++
	f.settles = append(f.settles, settle)
	if f.reloadErr != nil {
		return "", f.reloadErr
	}
	return f.html, nil
}

func testBrowserOptions() BrowserOptions {
	return BrowserOptions{Settle: time.Second, RetrySettle: 3 * time.Second}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBrowserFetchParsesPage(t *testing.T) {
	tab := &fakeTab{html: `<html><body><h1>Domaine</h1></body></html>`}
	f := NewBrowser(tab, quietLogger(), testBrowserOptions())

	page, err := f.Fetch(context.Background(), "https://www.mariages.net/domaine")
	require.NoError(t, err)
	assert.Equal(t, "Domaine", page.Doc.Find("h1").Text())
	assert.Equal(t, "www.mariages.net", page.URL.Host)
	assert.Zero(t, tab.reloads)
	assert.Equal(t, []time.Duration{time.Second}, tab.settles)
}

func TestBrowserFetchReloadsWithLongerSettle(t *testing.T) {
	tab := &fakeTab{navigateErr: errors.New("net::ERR_TIMED_OUT")}
	f := NewBrowser(tab, quietLogger(), testBrowserOptions())

	// Navigate fails but the reloaded tab has content.
	tab.html = `<html><body><h1>Après reload</h1></body></html>`
	page, err := f.Fetch(context.Background(), "https://www.mariages.net/lent")
	require.NoError(t, err)
	assert.Equal(t, "Après reload", page.Doc.Find("h1").Text())
	assert.Equal(t, 1, tab.reloads)
	assert.Equal(t, []time.Duration{time.Second, 3 * time.Second}, tab.settles)
}

func TestBrowserFetchGivesUpAfterReload(t *testing.T) {
	tab := &fakeTab{
		navigateErr: errors.New("net::ERR_TIMED_OUT"),
		reloadErr:   errors.New("net::ERR_TIMED_OUT"),
	}
	f := NewBrowser(tab, quietLogger(), testBrowserOptions())

	_, err := f.Fetch(context.Background(), "https://www.mariages.net/mort")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "https://www.mariages.net/mort")
	assert.Equal(t, 1, tab.reloads)
	assert.Len(t, tab.navigated, 1)
}

func TestBrowserFetchDoesNotReloadWhenCancelled(t *testing.T) {
	tab := &fakeTab{navigateErr: context.Canceled}
	f := NewBrowser(tab, quietLogger(), testBrowserOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Fetch(ctx, "https://www.mariages.net/stop")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, tab.reloads)
}
