// Package epub assembles a finished book into a reflowable e-book
// archive: an uncompressed mimetype marker first, then a container
// descriptor, a package document listing every resource, two navigation
// documents and one XHTML section per logical part of the book.
// Illustrations are fetched and embedded; theme fonts are embedded when
// reachable and replaced by generic families when not.
package epub

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bookforge/bookforge/internal/assets"
	"github.com/bookforge/bookforge/internal/book"
	"github.com/bookforge/bookforge/internal/errs"
)

const (
	// The mimetype entry must be the first entry in the archive, stored
	// without compression, and hold exactly this value. Readers check the
	// bytes at a fixed offset, so any deviation makes the file unreadable.
	mimetypePath  = "mimetype"
	mimetypeValue = "application/epub+zip"

	containerPath = "META-INF/container.xml"

	// Every resource lives under one root directory. Hrefs inside the
	// package document are relative to the package document itself.
	rootDir = "OEBPS"
	opfName = "content.opf"
	opfPath = rootDir + "/" + opfName

	// Paths relative to the package document.
	stylesheetPath = "css/stylesheet.css"
	navPath        = "nav.xhtml"
	ncxPath        = "toc.ncx"

	defaultFetchConcurrency = 4
)

const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// WriterConfig holds the settings for creating a Writer.
type WriterConfig struct {
	// Fetcher retrieves illustrations and fonts. Required.
	Fetcher *assets.Fetcher

	// EmbedFonts controls whether the theme's font pairing is fetched and
	// embedded. When disabled, or when any font cannot be resolved, the
	// stylesheet declares generic families instead.
	EmbedFonts bool

	// FetchConcurrency caps parallel asset downloads. Defaults to 4.
	FetchConcurrency int

	// Logger receives progress and degradation notices. Defaults to the
	// standard logger.
	Logger *log.Logger
}

// Writer packages books into e-book archives.
type Writer struct {
	fetcher    *assets.Fetcher
	embedFonts bool
	fetchLimit int
	logger     *log.Logger
}

// NewWriter creates a Writer from the given configuration.
func NewWriter(cfg WriterConfig) (*Writer, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = defaultFetchConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Writer{
		fetcher:    cfg.Fetcher,
		embedFonts: cfg.EmbedFonts,
		fetchLimit: cfg.FetchConcurrency,
		logger:     cfg.Logger,
	}, nil
}

// Pack builds the complete e-book archive for b. The book must carry a
// cover image URL and, for every chapter, content and an illustration
// URL. An unreachable illustration aborts packaging; unreachable fonts
// only degrade the stylesheet.
func (w *Writer) Pack(ctx context.Context, b *book.Book) ([]byte, error) {
	if err := b.ValidateForPackaging(); err != nil {
		return nil, errs.Wrap(errs.ErrCodePackaging, err, "book is not ready for packaging")
	}

	images, err := w.embedImages(ctx, b)
	if err != nil {
		return nil, err
	}
	w.logger.Debug("embedded illustrations", "title", b.Title, "count", len(images))

	var fonts []embeddedFont
	if w.embedFonts {
		fonts, err = w.resolveFonts(ctx, b.Theme.FontPairing)
		if err != nil {
			w.logger.Warn("falling back to generic fonts",
				"source", b.Theme.FontPairing.SourceURL, "err", err)
			fonts = nil
		} else {
			w.logger.Debug("embedded fonts",
				"heading", b.Theme.FontPairing.Heading, "body", b.Theme.FontPairing.Body)
		}
	}

	sections, err := buildSections(b, images)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodePackaging, err, "failed to build section documents")
	}

	entries := navEntries(sections)
	modified := time.Now().UTC().Format("2006-01-02T15:04:05Z")

	opf, err := buildOPF(b, images, fonts, sections, modified)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodePackaging, err, "failed to build package document")
	}
	nav, err := buildNav(b, entries)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodePackaging, err, "failed to build navigation document")
	}
	ncx, err := buildNCX(b, entries)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodePackaging, err, "failed to build legacy navigation document")
	}
	cnt, err := buildContainer()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodePackaging, err, "failed to build container descriptor")
	}

	files := []archiveFile{
		{path: containerPath, data: cnt},
		{path: opfPath, data: opf},
		{path: rootDir + "/" + navPath, data: nav},
		{path: rootDir + "/" + ncxPath, data: ncx},
		{path: rootDir + "/" + stylesheetPath, data: buildStylesheet(b.Theme.FontPairing, fonts)},
	}
	for _, img := range images {
		files = append(files, archiveFile{path: rootDir + "/" + img.path, data: img.data})
	}
	for _, f := range fonts {
		files = append(files, archiveFile{path: rootDir + "/" + f.path, data: f.data})
	}
	for _, s := range sections {
		files = append(files, archiveFile{path: rootDir + "/" + s.path, data: s.data})
	}

	data, err := assemble(files)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodePackaging, err, "failed to assemble archive")
	}
	w.logger.Debug("assembled e-book archive", "title", b.Title, "bytes", len(data))
	return data, nil
}

// PackToFile packs b and writes the archive to path. Nothing is written
// when packaging fails.
func (w *Writer) PackToFile(ctx context.Context, b *book.Book, path string) error {
	data, err := w.Pack(ctx, b)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(errs.ErrCodePackaging, err, "failed to write %s", path)
	}
	w.logger.Info("wrote e-book", "path", path, "bytes", len(data))
	return nil
}

// archiveFile is one entry written after the mimetype marker.
type archiveFile struct {
	path string
	data []byte
}

// assemble writes the zip archive. The mimetype entry goes first and is
// stored uncompressed; everything else is deflated in the given order.
func assemble(files []archiveFile) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	mw, err := zw.CreateHeader(&zip.FileHeader{Name: mimetypePath, Method: zip.Store})
	if err != nil {
		return nil, fmt.Errorf("failed to create mimetype entry: %w", err)
	}
	if _, err := mw.Write([]byte(mimetypeValue)); err != nil {
		return nil, fmt.Errorf("failed to write mimetype entry: %w", err)
	}

	for _, f := range files {
		fw, err := zw.Create(f.path)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", f.path, err)
		}
		if _, err := fw.Write(f.data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

type container struct {
	XMLName   xml.Name           `xml:"container"`
	Version   string             `xml:"version,attr"`
	Xmlns     string             `xml:"xmlns,attr"`
	Rootfiles containerRootfiles `xml:"rootfiles"`
}

type containerRootfiles struct {
	Rootfile []containerRootfile `xml:"rootfile"`
}

type containerRootfile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// buildContainer produces the descriptor pointing readers at the
// package document.
func buildContainer() ([]byte, error) {
	c := container{
		Version: "1.0",
		Xmlns:   "urn:oasis:names:tc:opendocument:xmlns:container",
		Rootfiles: containerRootfiles{
			Rootfile: []containerRootfile{
				{FullPath: opfPath, MediaType: "application/oebps-package+xml"},
			},
		},
	}
	out, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal container descriptor: %w", err)
	}
	return append([]byte(xmlDeclaration), append(out, '\n')...), nil
}
