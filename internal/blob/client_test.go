package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffMauritius/scrapper/internal/model"
)

func TestFilename(t *testing.T) {
	assert.Equal(t, "venues/abc/image-0.webp", Filename("https://cdn.test/p/photo.WEBP?w=800", "abc", 0))
	assert.Equal(t, "venues/abc/image-2.jpg", Filename("https://cdn.test/p/photo", "abc", 2))
	assert.Equal(t, "venues/abc/image-1.png", Filename("https://cdn.test/a.b/photo.png", "abc", 1))
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient("https://blob.test", "")
	assert.ErrorIs(t, err, ErrNoToken)
}

// blobServer serves images under /src/ and accepts uploads anywhere else.
type blobServer struct {
	mu       sync.Mutex
	uploads  map[string][]byte
	failPath string
}

func (b *blobServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/src/") {
		if r.URL.Path == b.failPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		fmt.Fprint(w, "img:"+r.URL.Path)
		return
	}
	if r.Method != http.MethodPut || r.Header.Get("Authorization") != "Bearer secret" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.uploads[r.URL.Path] = body
	b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"url":      "https://public.blob.test" + r.URL.Path,
		"pathname": strings.TrimPrefix(r.URL.Path, "/"),
	})
}

func TestUploadAndDownload(t *testing.T) {
	bs := &blobServer{uploads: map[string][]byte{}}
	srv := httptest.NewServer(bs)
	defer srv.Close()

	c, err := NewClient(srv.URL+"/", "secret")
	require.NoError(t, err)

	data, ct, err := c.Download(context.Background(), srv.URL+"/src/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)

	u, err := c.Upload(context.Background(), "venues/x/image-0.jpg", data, ct)
	require.NoError(t, err)
	assert.Equal(t, "https://public.blob.test/venues/x/image-0.jpg", u)
	assert.Equal(t, "img:/src/a.jpg", string(bs.uploads["/venues/x/image-0.jpg"]))

	bad, err := NewClient(srv.URL, "wrong")
	require.NoError(t, err)
	_, err = bad.Upload(context.Background(), "venues/x/image-1.jpg", data, ct)
	assert.Error(t, err)
}

type imageRows struct {
	list    []model.Establishment
	updated map[string]string
}

func (r *imageRows) List(_ context.Context, offset, limit int) ([]model.Establishment, error) {
	return r.list, nil
}

func (r *imageRows) UpdateImageURL(_ context.Context, id, url string) error {
	r.updated[id] = url
	return nil
}

type imageCounter map[string]int

func (c imageCounter) Image(result string) { c[result]++ }

func TestMirrorRun(t *testing.T) {
	bs := &blobServer{uploads: map[string][]byte{}, failPath: "/src/broken.jpg"}
	srv := httptest.NewServer(bs)
	defer srv.Close()

	c, err := NewClient(srv.URL, "secret")
	require.NoError(t, err)

	rows := &imageRows{
		updated: map[string]string{},
		list: []model.Establishment{
			{ID: "e1", Name: "Domaine A", Images: []model.Image{
				{ID: "i1", URL: srv.URL + "/src/one.jpg"},
				{ID: "i2", URL: srv.URL + "/src/broken.jpg"},
				{ID: "i3", URL: srv.URL + "/src/three.png"},
			}},
			{ID: "e2", Name: "Salle B", Images: []model.Image{
				{ID: "i4", URL: "https://public.blob.test/venues/e2/image-0.jpg"},
			}},
		},
	}
	counts := imageCounter{}
	m := NewMirror(c, rows, slog.New(slog.NewTextHandler(io.Discard, nil)), 0, counts)

	stats, err := m.Run(context.Background(), 0, 0)
	require.NoError(t, err)

	assert.Equal(t, MirrorStats{Establishments: 2, Skipped: 1, Uploaded: 2, Failed: 1}, stats)
	assert.Equal(t, "https://public.blob.test/venues/e1/image-0.jpg", rows.updated["i1"])
	assert.Equal(t, "https://public.blob.test/venues/e1/image-2.png", rows.updated["i3"])
	assert.NotContains(t, rows.updated, "i2")
	assert.NotContains(t, rows.updated, "i4")
	assert.Equal(t, 2, counts["uploaded"])
	assert.Equal(t, 1, counts["failed"])
	assert.Equal(t, 1, counts["skipped"])
}
