// Package assets resolves remote image and font URLs into embeddable
// binary payloads with sniffed content types.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bookforge/bookforge/internal/errs"
)

const (
	defaultTimeout = 60 * time.Second
	userAgent      = "bookforge"
)

// Asset is a fetched binary payload. Data is byte-exact as served; the
// content type is sniffed from the payload, never taken from headers or
// the URL, and Ext is derived from it (leading dot included).
type Asset struct {
	Data        []byte
	ContentType string
	Ext         string
}

// Fetcher retrieves remote assets over HTTP. It is safe for concurrent
// use.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with a 60 second request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// Fetch retrieves the payload at url and sniffs its content type. A
// transport failure or non-2xx status yields an asset fetch error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Asset, error) {
	data, err := f.get(ctx, url)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeAssetFetch, err, "failed to fetch %s", url)
	}
	ct := Sniff(data)
	return &Asset{Data: data, ContentType: ct, Ext: ExtensionFor(ct)}, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}
