package assets

import (
	"bytes"
	"net/http"
	"strings"
)

// Font containers are not recognized by http.DetectContentType, so they
// are matched by magic number first.
var fontMagic = []struct {
	prefix      []byte
	contentType string
}{
	{[]byte("wOF2"), "font/woff2"},
	{[]byte("wOFF"), "font/woff"},
	{[]byte("OTTO"), "font/otf"},
	{[]byte{0x00, 0x01, 0x00, 0x00}, "font/ttf"},
}

var extByType = map[string]string{
	"image/jpeg":    ".jpeg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"font/woff2":    ".woff2",
	"font/woff":     ".woff",
	"font/otf":      ".otf",
	"font/ttf":      ".ttf",
	"text/css":      ".css",
}

// Sniff determines the content type of a payload from its leading bytes.
// Any charset parameter is stripped so the result is usable as a manifest
// media type.
func Sniff(data []byte) string {
	for _, m := range fontMagic {
		if bytes.HasPrefix(data, m.prefix) {
			return m.contentType
		}
	}
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

// ExtensionFor maps a sniffed content type to a file extension with a
// leading dot. Unknown types fall back to ".bin" so an embedded entry
// always has a usable name.
func ExtensionFor(contentType string) string {
	if ext, ok := extByType[contentType]; ok {
		return ext
	}
	return ".bin"
}
