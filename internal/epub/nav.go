package epub

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/bookforge/bookforge/internal/book"
)

// navEntry is one navigation line. The same ordered list feeds both the
// current-format and the legacy navigation documents, which keeps them
// in lockstep with each other and with the spine.
type navEntry struct {
	Label string
	Href  string // relative to the package document
}

// navEntries lists every section in spine order.
func navEntries(sections []section) []navEntry {
	entries := make([]navEntry, len(sections))
	for i, s := range sections {
		entries[i] = navEntry{Label: s.title, Href: s.path}
	}
	return entries
}

const navTemplate = `<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" lang="en" xml:lang="en">
<head>
<title>{{.Title}}</title>
</head>
<body>
<nav epub:type="toc" id="toc">
<h1>{{.Heading}}</h1>
<ol>
{{range .Entries}}<li><a href="{{.Href}}">{{.Label}}</a></li>
{{end}}</ol>
</nav>
</body>
</html>
`

var navTmpl = template.Must(template.New("nav").Parse(navTemplate))

type navData struct {
	Title   string
	Heading string
	Entries []navEntry
}

// buildNav produces the navigation document for current readers.
func buildNav(b *book.Book, entries []navEntry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)
	err := navTmpl.Execute(&buf, navData{
		Title:   b.Title,
		Heading: "Contents",
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render navigation document: %w", err)
	}
	return buf.Bytes(), nil
}
