package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookforge/bookforge/internal/layout"
)

// ImageDirRasterizer replays pre-captured page bitmaps from a directory,
// one file per page in lexical filename order. It stands in for a live
// capture backend when pages have already been rendered externally.
type ImageDirRasterizer struct {
	files []string
	next  int
}

// NewImageDirRasterizer lists the bitmap files under dir. The directory
// must contain one image file per page the caller intends to render.
func NewImageDirRasterizer(dir string) (*ImageDirRasterizer, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read bitmap directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".gif":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no page bitmaps found in %s", dir)
	}
	return &ImageDirRasterizer{files: files}, nil
}

// Capture returns the next bitmap in order. Running out of files fails
// the capture, which surfaces the page/file count mismatch to the caller.
func (r *ImageDirRasterizer) Capture(_ context.Context, page layout.Page) ([]byte, error) {
	if r.next >= len(r.files) {
		return nil, fmt.Errorf("no bitmap left for %s page: directory has only %d files", page.Kind, len(r.files))
	}
	data, err := os.ReadFile(r.files[r.next])
	if err != nil {
		return nil, err
	}
	r.next++
	return data, nil
}
