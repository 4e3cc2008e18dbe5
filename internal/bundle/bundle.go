// Package bundle produces the distribution archive for one finished
// book: the packed e-book, the cover art as JPEG, and a plain-text
// metadata listing, zipped under the sanitized book title.
package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/bookforge/bookforge/internal/assets"
	"github.com/bookforge/bookforge/internal/book"
	"github.com/bookforge/bookforge/internal/errs"
)

// Fixed member names inside the bundle.
const (
	epubName     = "manuscript.epub"
	coverName    = "cover.jpeg"
	metadataName = "metadata.txt"

	coverJPEGQuality = 90
)

// Config holds the settings for creating a Builder.
type Config struct {
	// Fetcher retrieves the cover art. Required.
	Fetcher *assets.Fetcher

	// Logger defaults to the standard logger.
	Logger *log.Logger
}

// Builder assembles distribution bundles.
type Builder struct {
	fetcher *assets.Fetcher
	logger  *log.Logger
}

// NewBuilder creates a Builder from the given configuration.
func NewBuilder(cfg Config) (*Builder, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Builder{fetcher: cfg.Fetcher, logger: cfg.Logger}, nil
}

// Write assembles the bundle for b into dir using the already-packed
// e-book archive, and returns the path of the written file. Nothing is
// written when any member fails to build.
func (bd *Builder) Write(ctx context.Context, b *book.Book, epubData []byte, dir string) (string, error) {
	if len(epubData) == 0 {
		return "", errs.New(errs.ErrCodePackaging, "e-book payload is empty")
	}
	if b.CoverImageURL == "" {
		return "", errs.New(errs.ErrCodePackaging, "cover image url is empty")
	}

	cover, err := bd.coverJPEG(ctx, b.CoverImageURL)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	members := []struct {
		name string
		data []byte
	}{
		{epubName, epubData},
		{coverName, cover},
		{metadataName, metadata(b)},
	}
	for _, m := range members {
		w, err := zw.Create(m.name)
		if err != nil {
			return "", errs.Wrap(errs.ErrCodePackaging, err, "failed to create bundle member %s", m.name)
		}
		if _, err := w.Write(m.data); err != nil {
			return "", errs.Wrap(errs.ErrCodePackaging, err, "failed to write bundle member %s", m.name)
		}
	}
	if err := zw.Close(); err != nil {
		return "", errs.Wrap(errs.ErrCodePackaging, err, "failed to finalize bundle")
	}

	path := filepath.Join(dir, book.SanitizeFilename(b.Title)+".zip")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", errs.Wrap(errs.ErrCodePackaging, err, "failed to write %s", path)
	}
	bd.logger.Info("wrote distribution bundle", "path", path, "bytes", buf.Len())
	return path, nil
}

// coverJPEG fetches the cover art and returns it as JPEG bytes. A cover
// already in JPEG form passes through byte-exact; other formats are
// flattened onto white and re-encoded.
func (bd *Builder) coverJPEG(ctx context.Context, url string) ([]byte, error) {
	a, err := bd.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if a.ContentType == "image/jpeg" {
		return a.Data, nil
	}

	img, err := imaging.Decode(bytes.NewReader(a.Data))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodePackaging, err, "failed to decode cover image")
	}
	bounds := img.Bounds()
	flat := imaging.Overlay(imaging.New(bounds.Dx(), bounds.Dy(), color.White), img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: coverJPEGQuality}); err != nil {
		return nil, errs.Wrap(errs.ErrCodePackaging, err, "failed to encode cover image")
	}
	bd.logger.Debug("converted cover art to jpeg", "from", a.ContentType)
	return buf.Bytes(), nil
}

// metadata renders the plain-text listing shipped beside the e-book.
func metadata(b *book.Book) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", b.Title)
	fmt.Fprintf(&sb, "Author: %s\n", b.Author.Name)
	if b.Publisher != "" {
		fmt.Fprintf(&sb, "Publisher: %s\n", b.Publisher)
	}
	if b.BackCoverBlurb != "" {
		fmt.Fprintf(&sb, "\n%s\n", b.BackCoverBlurb)
	}
	if len(b.KDPKeywords) > 0 {
		fmt.Fprintf(&sb, "\nKeywords: %s\n", strings.Join(b.KDPKeywords, ", "))
	}
	if len(b.KDPCategories) > 0 {
		fmt.Fprintf(&sb, "Categories: %s\n", strings.Join(b.KDPCategories, ", "))
	}
	return []byte(sb.String())
}
