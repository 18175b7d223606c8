package blob

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jeffMauritius/scrapper/internal/fetch"
	"github.com/jeffMauritius/scrapper/internal/model"
)

type Store interface {
	Download(ctx context.Context, imageURL string) ([]byte, string, error)
	Upload(ctx context.Context, pathname string, data []byte, contentType string) (string, error)
}

type Repository interface {
	List(ctx context.Context, offset, limit int) ([]model.Establishment, error)
	UpdateImageURL(ctx context.Context, imageID, url string) error
}

// ImageObserver is told about every image: "uploaded", "failed" or
// "skipped".
type ImageObserver interface {
	Image(result string)
}

type MirrorStats struct {
	Establishments, Skipped, Uploaded, Failed int
}

// Mirror copies establishment images to blob storage and points the image
// rows at the copies.
type Mirror struct {
	store    Store
	repo     Repository
	logger   *slog.Logger
	pause    time.Duration
	observer ImageObserver
}

func NewMirror(store Store, repo Repository, logger *slog.Logger, pause time.Duration, observer ImageObserver) *Mirror {
	return &Mirror{store: store, repo: repo, logger: logger, pause: pause, observer: observer}
}

// Mirrored reports whether an establishment's images already live in blob
// storage, which is recognisable by its id in their path.
func Mirrored(e model.Establishment) bool {
	for _, img := range e.Images {
		if strings.Contains(img.URL, e.ID) {
			return true
		}
	}
	return false
}

// Run mirrors the establishments in [offset, offset+limit) by creation
// order.
func (m *Mirror) Run(ctx context.Context, offset, limit int) (MirrorStats, error) {
	var stats MirrorStats
	list, err := m.repo.List(ctx, offset, limit)
	if err != nil {
		return stats, err
	}
	m.logger.Info("Mirroring images", "establishments", len(list), "from", offset+1)

	for i, e := range list {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Establishments++
		if Mirrored(e) {
			m.logger.Info("Already mirrored", "name", e.Name, "id", e.ID)
			stats.Skipped++
			m.observe("skipped")
			continue
		}

		uploaded, failed, err := m.MirrorOne(ctx, e)
		stats.Uploaded += uploaded
		stats.Failed += failed
		if err != nil {
			return stats, err
		}
		m.logger.Info("Establishment done", "name", e.Name, "uploaded", uploaded, "failed", failed)

		if (i+1)%100 == 0 {
			m.logger.Info("Progress", "processed", i+1, "of", len(list))
		}
	}
	return stats, nil
}

// MirrorOne uploads each image of e and updates the rows of those that
// succeeded. A failed image keeps its original URL. Only context
// cancellation is returned as an error.
func (m *Mirror) MirrorOne(ctx context.Context, e model.Establishment) (uploaded, failed int, err error) {
	for i, img := range e.Images {
		if i > 0 {
			if err := fetch.Sleep(ctx, m.pause); err != nil {
				return uploaded, failed, err
			}
		}

		blobURL, err := m.copy(ctx, e.ID, i, img.URL)
		if err == nil {
			err = m.repo.UpdateImageURL(ctx, img.ID, blobURL)
		}
		if err != nil {
			if ctx.Err() != nil {
				return uploaded, failed, ctx.Err()
			}
			m.logger.Error("Image failed", "name", e.Name, "url", img.URL, "err", err)
			failed++
			m.observe("failed")
			continue
		}
		uploaded++
		m.observe("uploaded")
		m.logger.Debug("Image uploaded", "name", e.Name, "n", i+1, "of", len(e.Images))
	}
	return uploaded, failed, nil
}

func (m *Mirror) copy(ctx context.Context, id string, i int, imageURL string) (string, error) {
	data, contentType, err := m.store.Download(ctx, imageURL)
	if err != nil {
		return "", err
	}
	return m.store.Upload(ctx, Filename(imageURL, id, i), data, contentType)
}

func (m *Mirror) observe(result string) {
	if m.observer != nil {
		m.observer.Image(result)
	}
}
