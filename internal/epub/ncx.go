package epub

import (
	"encoding/xml"
	"fmt"

	"github.com/bookforge/bookforge/internal/book"
)

type ncxRoot struct {
	XMLName  xml.Name  `xml:"ncx"`
	Xmlns    string    `xml:"xmlns,attr"`
	Version  string    `xml:"version,attr"`
	Head     ncxHead   `xml:"head"`
	DocTitle ncxText   `xml:"docTitle"`
	NavMap   ncxNavMap `xml:"navMap"`
}

type ncxHead struct {
	Metas []ncxMeta `xml:"meta"`
}

type ncxMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type ncxText struct {
	Text string `xml:"text"`
}

type ncxNavMap struct {
	Points []ncxNavPoint `xml:"navPoint"`
}

type ncxNavPoint struct {
	ID        string     `xml:"id,attr"`
	PlayOrder int        `xml:"playOrder,attr"`
	Label     ncxLabel   `xml:"navLabel"`
	Content   ncxContent `xml:"content"`
}

type ncxLabel struct {
	Text string `xml:"text"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

// buildNCX produces the navigation document for legacy readers. Entries
// mirror the current-format document exactly, including order.
func buildNCX(b *book.Book, entries []navEntry) ([]byte, error) {
	points := make([]ncxNavPoint, len(entries))
	for i, e := range entries {
		points[i] = ncxNavPoint{
			ID:        fmt.Sprintf("navpoint-%d", i+1),
			PlayOrder: i + 1,
			Label:     ncxLabel{Text: e.Label},
			Content:   ncxContent{Src: e.Href},
		}
	}

	n := ncxRoot{
		Xmlns:   "http://www.daisy.org/z3986/2005/ncx/",
		Version: "2005-1",
		Head: ncxHead{Metas: []ncxMeta{
			{Name: "dtb:uid", Content: identifierValue(b.ID)},
			{Name: "dtb:depth", Content: "1"},
			{Name: "dtb:totalPageCount", Content: "0"},
			{Name: "dtb:maxPageNumber", Content: "0"},
		}},
		DocTitle: ncxText{Text: b.Title},
		NavMap:   ncxNavMap{Points: points},
	}

	out, err := xml.MarshalIndent(n, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal legacy navigation document: %w", err)
	}
	return append([]byte(xmlDeclaration), append(out, '\n')...), nil
}
