package epub

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bookforge/bookforge/internal/assets"
	"github.com/bookforge/bookforge/internal/book"
	"github.com/bookforge/bookforge/internal/errs"
)

// embeddedImage is a fetched illustration with its archive location.
// Index 0 is always the cover; index i is the illustration for chapter i.
type embeddedImage struct {
	id        string // manifest id
	path      string // relative to the package document
	mediaType string
	data      []byte
}

// embedImages fetches the cover and every chapter illustration. Fetches
// run concurrently up to the configured limit, each filling its own
// slot; the slots become archive entries only after the join. Any
// failed fetch aborts the whole batch.
func (w *Writer) embedImages(ctx context.Context, b *book.Book) ([]embeddedImage, error) {
	urls := make([]string, 0, len(b.Chapters)+1)
	urls = append(urls, b.CoverImageURL)
	for _, c := range b.Chapters {
		urls = append(urls, c.ImageURL)
	}

	results := make([]*assets.Asset, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.fetchLimit)
	for i, u := range urls {
		g.Go(func() error {
			a, err := w.fetcher.Fetch(gctx, u)
			if err != nil {
				return err
			}
			results[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to embed illustrations: %w", err)
	}

	images := make([]embeddedImage, len(results))
	for i, a := range results {
		if !strings.HasPrefix(a.ContentType, "image/") {
			return nil, errs.New(errs.ErrCodePackaging, "%s is not an image (%s)", urls[i], a.ContentType)
		}
		img := embeddedImage{mediaType: a.ContentType, data: a.Data}
		if i == 0 {
			img.id = "cover-image"
			img.path = "images/cover" + a.Ext
		} else {
			img.id = fmt.Sprintf("img-%d", i)
			img.path = fmt.Sprintf("images/chapter-%d%s", i, a.Ext)
		}
		images[i] = img
	}
	return images, nil
}
