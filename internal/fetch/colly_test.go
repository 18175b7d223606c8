package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcher(t *testing.T) *Colly {
	t.Helper()
	f, err := NewColly(slog.New(slog.NewTextHandler(io.Discard, nil)), CollyOptions{
		UserAgent:      "scrapper-test",
		AcceptLanguage: "fr-FR",
		Timeout:        5 * time.Second,
	})
	require.NoError(t, err)
	return f
}

func TestCollyFetchParsesDocument(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><h1 class="title"> Domaine des Roses </h1></body></html>`)
	}))
	defer srv.Close()

	page, err := testFetcher(t).Fetch(context.Background(), srv.URL+"/venue")
	require.NoError(t, err)

	assert.Equal(t, "Domaine des Roses", strings.TrimSpace(page.Doc.Find(".title").Text()))
	assert.Equal(t, "/venue", page.URL.Path)
	assert.Equal(t, "scrapper-test", gotUA)
	assert.Equal(t, "fr-FR", gotLang)
}

func TestCollyFetchRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><p>ok</p></body></html>`)
	}))
	defer srv.Close()

	page, err := testFetcher(t).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", page.Doc.Find("p").Text())
	assert.EqualValues(t, 2, calls.Load())
}

func TestCollyFetchGivesUpAfterRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testFetcher(t).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestCollyFetchNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testFetcher(t).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 1, calls.Load())
}

func TestCollyFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testFetcher(t).Fetch(ctx, "http://127.0.0.1:1/")
	assert.ErrorIs(t, err, context.Canceled)
}
