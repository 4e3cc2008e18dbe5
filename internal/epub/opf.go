package epub

import (
	"encoding/xml"
	"fmt"

	"github.com/google/uuid"

	"github.com/bookforge/bookforge/internal/book"
)

// Media types for entries the packager itself generates.
const (
	mediaTypeXHTML = "application/xhtml+xml"
	mediaTypeCSS   = "text/css"
	mediaTypeNCX   = "application/x-dtbncx+xml"
	mediaTypeOPF   = "application/oebps-package+xml"
)

type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Xmlns    string      `xml:"xmlns,attr"`
	Version  string      `xml:"version,attr"`
	UniqueID string      `xml:"unique-identifier,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

// opfMetadata uses literal dc-prefixed element names so the marshaler
// emits the prefixed form readers expect.
type opfMetadata struct {
	XmlnsDC     string        `xml:"xmlns:dc,attr"`
	Identifier  opfIdentifier `xml:"dc:identifier"`
	Title       string        `xml:"dc:title"`
	Language    string        `xml:"dc:language"`
	Creator     string        `xml:"dc:creator"`
	Publisher   string        `xml:"dc:publisher,omitempty"`
	Date        string        `xml:"dc:date,omitempty"`
	Description string        `xml:"dc:description,omitempty"`
	Subjects    []string      `xml:"dc:subject"`
	Metas       []opfMeta     `xml:"meta"`
}

type opfIdentifier struct {
	ID    string `xml:"id,attr"`
	Value string `xml:",chardata"`
}

type opfMeta struct {
	Name     string `xml:"name,attr,omitempty"`
	Content  string `xml:"content,attr,omitempty"`
	Property string `xml:"property,attr,omitempty"`
	Value    string `xml:",chardata"`
}

type opfManifest struct {
	Items []opfItem `xml:"item"`
}

type opfItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr,omitempty"`
}

type opfSpine struct {
	Toc      string       `xml:"toc,attr"`
	Itemrefs []opfItemref `xml:"itemref"`
}

type opfItemref struct {
	IDref  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr,omitempty"`
}

// buildOPF produces the package document: metadata, a manifest listing
// every archive entry exactly once with its sniffed media type, and the
// reading order. The cover document stays in the spine but outside the
// linear order.
func buildOPF(b *book.Book, images []embeddedImage, fonts []embeddedFont, sections []section, modified string) ([]byte, error) {
	items := []opfItem{
		{ID: "stylesheet", Href: stylesheetPath, MediaType: mediaTypeCSS},
		{ID: images[0].id, Href: images[0].path, MediaType: images[0].mediaType, Properties: "cover-image"},
	}
	for _, img := range images[1:] {
		items = append(items, opfItem{ID: img.id, Href: img.path, MediaType: img.mediaType})
	}
	for _, f := range fonts {
		items = append(items, opfItem{ID: f.id, Href: f.path, MediaType: f.mediaType})
	}
	for _, s := range sections {
		items = append(items, opfItem{ID: s.id, Href: s.path, MediaType: mediaTypeXHTML})
	}
	items = append(items,
		opfItem{ID: "nav", Href: navPath, MediaType: mediaTypeXHTML, Properties: "nav"},
		opfItem{ID: "ncx", Href: ncxPath, MediaType: mediaTypeNCX},
		opfItem{ID: "package", Href: opfName, MediaType: mediaTypeOPF},
	)
	if err := checkManifest(items); err != nil {
		return nil, err
	}

	refs := make([]opfItemref, 0, len(sections))
	for i, s := range sections {
		ref := opfItemref{IDref: s.id}
		if i == 0 {
			ref.Linear = "no"
		}
		refs = append(refs, ref)
	}

	desc := b.BackCoverBlurb
	if desc == "" {
		desc = b.PlotSummary
	}
	subjects := make([]string, 0, len(b.KDPKeywords)+len(b.KDPCategories))
	subjects = append(subjects, b.KDPKeywords...)
	subjects = append(subjects, b.KDPCategories...)

	pkg := opfPackage{
		Xmlns:    "http://www.idpf.org/2007/opf",
		Version:  "3.0",
		UniqueID: "book-id",
		Metadata: opfMetadata{
			XmlnsDC:     "http://purl.org/dc/elements/1.1/",
			Identifier:  opfIdentifier{ID: "book-id", Value: identifierValue(b.ID)},
			Title:       b.Title,
			Language:    "en",
			Creator:     b.Author.Name,
			Publisher:   b.Publisher,
			Date:        fmt.Sprintf("%d", b.PublishedYear),
			Description: desc,
			Subjects:    subjects,
			Metas: []opfMeta{
				{Property: "dcterms:modified", Value: modified},
				{Name: "cover", Content: images[0].id},
			},
		},
		Manifest: opfManifest{Items: items},
		Spine:    opfSpine{Toc: "ncx", Itemrefs: refs},
	}

	out, err := xml.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal package document: %w", err)
	}
	return append([]byte(xmlDeclaration), append(out, '\n')...), nil
}

// checkManifest enforces unique ids and hrefs across the manifest. A
// collision would make the package ambiguous for readers.
func checkManifest(items []opfItem) error {
	ids := make(map[string]bool, len(items))
	hrefs := make(map[string]bool, len(items))
	for _, it := range items {
		if ids[it.ID] {
			return fmt.Errorf("duplicate manifest id %q", it.ID)
		}
		if hrefs[it.Href] {
			return fmt.Errorf("duplicate manifest href %q", it.Href)
		}
		ids[it.ID] = true
		hrefs[it.Href] = true
	}
	return nil
}

// identifierValue renders the book id as a URN when it is a UUID, which
// is how generated books are identified; anything else passes through.
func identifierValue(id string) string {
	if _, err := uuid.Parse(id); err == nil {
		return "urn:uuid:" + id
	}
	return id
}
