package epub

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/bookforge/bookforge/internal/book"
)

// fontFaceRe matches one @font-face block.
var fontFaceRe = regexp.MustCompile(`(?s)@font-face\s*\{[^}]*\}`)

// fontFamilyRe extracts the family name from a font-face block.
var fontFamilyRe = regexp.MustCompile(`font-family\s*:\s*['"]?([^'";}]+)['"]?`)

// fontURLRe extracts the first source URL from a font-face block.
var fontURLRe = regexp.MustCompile(`url\(\s*['"]?([^'")\s]+)['"]?\s*\)`)

// embeddedFont is a fetched font binary with its archive location.
// resolveFonts returns them ordered heading first, body second.
type embeddedFont struct {
	family    string // CSS family name
	id        string // manifest id
	path      string // relative to the package document
	mediaType string
	data      []byte
}

// resolveFonts fetches the pairing's stylesheet, locates one font file
// per family and fetches both binaries. Either both fonts embed or
// neither does: any failure returns an error and the caller falls back
// to generic families.
func (w *Writer) resolveFonts(ctx context.Context, fp book.FontPairing) ([]embeddedFont, error) {
	if fp.SourceURL == "" || fp.Heading == "" || fp.Body == "" {
		return nil, fmt.Errorf("theme has no complete font pairing")
	}
	if strings.EqualFold(fp.Heading, fp.Body) {
		return nil, fmt.Errorf("font pairing repeats the family %q", fp.Heading)
	}

	css, err := w.fetcher.Fetch(ctx, fp.SourceURL)
	if err != nil {
		return nil, err
	}

	roles := []struct {
		id     string
		family string
	}{
		{"font-heading", fp.Heading},
		{"font-body", fp.Body},
	}

	fonts := make([]embeddedFont, 0, len(roles))
	for _, r := range roles {
		ref, ok := fontFaceURL(string(css.Data), r.family)
		if !ok {
			return nil, fmt.Errorf("no font-face rule for %q in %s", r.family, fp.SourceURL)
		}
		fontURL, err := resolveRef(fp.SourceURL, ref)
		if err != nil {
			return nil, err
		}
		a, err := w.fetcher.Fetch(ctx, fontURL)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(a.ContentType, "font/") {
			return nil, fmt.Errorf("%s is not a font (%s)", fontURL, a.ContentType)
		}
		fonts = append(fonts, embeddedFont{
			family:    r.family,
			id:        r.id,
			path:      "fonts/" + book.SanitizeFilename(r.family) + a.Ext,
			mediaType: a.ContentType,
			data:      a.Data,
		})
	}
	return fonts, nil
}

// fontFaceURL scans css for a font-face block declaring family and
// returns its first source URL.
func fontFaceURL(css, family string) (string, bool) {
	for _, block := range fontFaceRe.FindAllString(css, -1) {
		m := fontFamilyRe.FindStringSubmatch(block)
		if m == nil || !strings.EqualFold(strings.TrimSpace(m[1]), family) {
			continue
		}
		if u := fontURLRe.FindStringSubmatch(block); u != nil {
			return u[1], true
		}
	}
	return "", false
}

// resolveRef resolves a possibly relative url() reference against the
// stylesheet URL it came from.
func resolveRef(base, ref string) (string, error) {
	bu, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid stylesheet url %s: %w", base, err)
	}
	ru, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid font reference %s: %w", ref, err)
	}
	return bu.ResolveReference(ru).String(), nil
}
