// Package render walks a laid-out page sequence, captures each page
// through an external rasterizer, and assembles the captures into a
// single fixed-size paginated document.
package render

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jung-kurt/gofpdf"

	"github.com/bookforge/bookforge/internal/errs"
	"github.com/bookforge/bookforge/internal/layout"
)

// Physical page size of the paginated document, portrait A4.
const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
)

// PageRasterizer captures one laid-out page as a bitmap in any
// stdlib-decodable format. Implementations are not assumed reentrant: the
// renderer calls Capture strictly in page order, one call at a time.
type PageRasterizer interface {
	Capture(ctx context.Context, page layout.Page) ([]byte, error)
}

// RendererConfig configures a Renderer.
type RendererConfig struct {
	// Rasterizer captures pages. Required.
	Rasterizer PageRasterizer

	// Logger for progress output. Optional.
	Logger *log.Logger
}

// Renderer assembles captured page bitmaps into the paginated document
// artifact.
type Renderer struct {
	rasterizer PageRasterizer
	logger     *log.Logger
}

// NewRenderer creates a Renderer and validates the configuration.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if cfg.Rasterizer == nil {
		return nil, fmt.Errorf("rasterizer is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{rasterizer: cfg.Rasterizer, logger: logger}, nil
}

// Render captures every page in order and assembles one document, one
// bitmap per physical page. A single capture failure aborts the whole
// render; no partial document is ever returned.
func (r *Renderer) Render(ctx context.Context, pages []layout.Page) ([]byte, error) {
	if len(pages) == 0 {
		return nil, errs.New(errs.ErrCodeRasterization, "no pages to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, errs.Wrap(errs.ErrCodeRasterization, err, "render canceled at page %d", i+1)
		}

		bitmap, err := r.rasterizer.Capture(ctx, page)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeRasterization, err, "failed to capture page %d (%s)", i+1, page.Kind)
		}

		data, w, h, err := normalizeBitmap(bitmap)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeRasterization, err, "page %d (%s)", i+1, page.Kind)
		}

		name := fmt.Sprintf("page-%04d", i+1)
		opts := gofpdf.ImageOptions{ImageType: "JPEG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))

		x, y, drawW, drawH := fitToPage(w, h)
		pdf.AddPage()
		pdf.ImageOptions(name, x, y, drawW, drawH, false, opts, 0, "")

		r.logger.Debug("captured page", "page", i+1, "kind", page.Kind)
	}

	if pdf.Err() {
		return nil, errs.Wrap(errs.ErrCodeRasterization, pdf.Error(), "failed to assemble paginated document")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeRasterization, err, "failed to assemble paginated document")
	}
	return buf.Bytes(), nil
}

// RenderToFile renders pages and writes the document to path. The file is
// only created once the whole render has succeeded.
func (r *Renderer) RenderToFile(ctx context.Context, pages []layout.Page, path string) error {
	data, err := r.Render(ctx, pages)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write paginated document: %w", err)
	}
	r.logger.Info("wrote paginated document", "path", path, "pages", len(pages))
	return nil
}

// fitToPage computes the centered, aspect-preserving placement of a
// bitmap on the physical page, in millimeters.
func fitToPage(imgW, imgH int) (x, y, w, h float64) {
	scale := math.Min(pageWidthMM/float64(imgW), pageHeightMM/float64(imgH))
	w = float64(imgW) * scale
	h = float64(imgH) * scale
	x = (pageWidthMM - w) / 2
	y = (pageHeightMM - h) / 2
	return x, y, w, h
}
