package blob

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrNoToken = errors.New("blob storage token not set")

// Client downloads source images and uploads them to a blob store that
// accepts PUT <base>/<pathname> with a bearer token and answers with the
// public URL.
type Client struct {
	http  *resty.Client
	base  string
	token string
}

type putResponse struct {
	URL      string `json:"url"`
	Pathname string `json:"pathname"`
}

func NewClient(baseURL, token string) (*Client, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	client := resty.New()
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	client.SetTimeout(60 * time.Second)
	client.SetRetryCount(1)
	client.SetRetryWaitTime(2 * time.Second)

	return &Client{http: client, base: strings.TrimRight(baseURL, "/"), token: token}, nil
}

// Download fetches an image and its content type.
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, string, error) {
	res, err := c.http.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", imageURL, err)
	}
	if res.IsError() {
		return nil, "", fmt.Errorf("download %s: status %d", imageURL, res.StatusCode())
	}
	return res.Body(), res.Header().Get("Content-Type"), nil
}

// Upload stores data under pathname and returns its public URL. The store
// adds a random suffix so re-uploads never overwrite.
func (c *Client) Upload(ctx context.Context, pathname string, data []byte, contentType string) (string, error) {
	var out putResponse
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetHeader("x-api-version", "7").
		SetHeader("x-add-random-suffix", "1").
		SetBody(data).
		SetResult(&out)
	if contentType != "" {
		req.SetHeader("x-content-type", contentType)
	}

	res, err := req.Put(c.base + "/" + pathname)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", pathname, err)
	}
	if res.IsError() {
		return "", fmt.Errorf("upload %s: status %d: %s", pathname, res.StatusCode(), strings.TrimSpace(res.String()))
	}
	if out.URL == "" {
		return "", fmt.Errorf("upload %s: response without url", pathname)
	}
	return out.URL, nil
}

// Filename is the blob path of the i-th image of an establishment, keeping
// the source extension ("jpg" when there is none).
func Filename(imageURL, establishmentID string, i int) string {
	ext := "jpg"
	if u, err := url.Parse(imageURL); err == nil {
		if e := strings.TrimPrefix(path.Ext(u.Path), "."); e != "" {
			ext = strings.ToLower(e)
		}
	}
	return fmt.Sprintf("venues/%s/image-%d.%s", establishmentID, i, ext)
}
