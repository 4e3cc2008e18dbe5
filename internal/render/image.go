package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

const (
	pageJPEGQuality = 90
	maxBitmapWidth  = 2480 // ~300dpi across an A4 page
)

// normalizeBitmap decodes a captured page bitmap and re-encodes it as
// JPEG for embedding. Captures wider than maxBitmapWidth are downscaled
// first; the document gains nothing from more pixels than print
// resolution.
func normalizeBitmap(data []byte) ([]byte, int, int, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode captured bitmap: %w", err)
	}

	if src.Bounds().Dx() > maxBitmapWidth {
		src = imaging.Resize(src, maxBitmapWidth, 0, imaging.Lanczos)
	}

	encoded, err := encodeJPEG(src, pageJPEGQuality)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to encode page bitmap: %w", err)
	}

	b := src.Bounds()
	return encoded, b.Dx(), b.Dy(), nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
