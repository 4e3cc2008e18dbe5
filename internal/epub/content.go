package epub

import (
	"bytes"
	"fmt"
	"html/template"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bookforge/bookforge/internal/book"
)

// section is one rendered content document in reading order.
type section struct {
	id    string
	path  string // relative to the package document
	title string // navigation label
	data  []byte
}

// Section documents share one skeleton and are produced through the
// escaping template engine, so titles, prose and attribute values can
// never break the markup.
const sectionTemplates = `
{{define "head"}}<head>
<title>{{.Title}}</title>
<link rel="stylesheet" type="text/css" href="../css/stylesheet.css"/>
</head>{{end}}

{{define "open"}}<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" lang="en" xml:lang="en">
{{template "head" .}}{{end}}

{{define "cover"}}{{template "open" .}}
<body class="cover">
<img class="cover" src="../{{.Image}}" alt="{{.Alt}}"/>
</body>
</html>
{{end}}

{{define "title-page"}}{{template "open" .}}
<body class="title-page">
<h1>{{.BookTitle}}</h1>
<p class="byline">{{.Author}}</p>
{{if .Publisher}}<p class="publisher">{{.Publisher}}</p>
{{end}}</body>
</html>
{{end}}

{{define "copyright"}}{{template "open" .}}
<body class="copyright">
{{range .Lines}}<p>{{.}}</p>
{{end}}</body>
</html>
{{end}}

{{define "dedication"}}{{template "open" .}}
<body class="dedication">
{{if .Dedication}}<p class="dedication">{{.Dedication}}</p>
{{end}}</body>
</html>
{{end}}

{{define "toc"}}{{template "open" .}}
<body class="toc">
<h1>{{.Title}}</h1>
<ol class="toc">
{{range .Entries}}<li><a href="{{.Href}}">{{.Label}}</a></li>
{{end}}</ol>
</body>
</html>
{{end}}

{{define "characters"}}{{template "open" .}}
<body class="characters">
<h1>{{.Title}}</h1>
<dl class="characters">
{{range .Characters}}<dt>{{.Name}}{{if .Role}} <span class="role">({{.Role}})</span>{{end}}</dt>
<dd>{{.Description}}</dd>
{{end}}</dl>
</body>
</html>
{{end}}

{{define "preface"}}{{template "open" .}}
<body class="preface">
<h1>{{.Title}}</h1>
{{range $i, $p := .Paragraphs}}{{if eq $i 0}}<p class="first">{{$p}}</p>
{{else}}<p>{{$p}}</p>
{{end}}{{end}}</body>
</html>
{{end}}

{{define "chapter"}}{{template "open" .}}
<body class="chapter">
<h1>{{.Title}}</h1>
{{if .Epigraph}}<blockquote class="epigraph"><p>{{.Epigraph}}</p></blockquote>
{{end}}{{if .Image}}<img class="illustration" src="../{{.Image}}" alt="{{.Alt}}"/>
{{end}}{{range $i, $p := .Paragraphs}}{{if eq $i 0}}<p class="first">{{$p}}</p>
{{else}}<p>{{$p}}</p>
{{end}}{{end}}</body>
</html>
{{end}}

{{define "author"}}{{template "open" .}}
<body class="author">
<h1>{{.Title}}</h1>
<p class="byline">{{.Name}}</p>
{{range .Paragraphs}}<p>{{.}}</p>
{{end}}{{if .AlsoBy}}<h2>Also by {{.Name}}</h2>
<ul class="also-by">
{{range .AlsoBy}}<li>{{.}}</li>
{{end}}</ul>
{{end}}</body>
</html>
{{end}}
`

var sectionTmpl = template.Must(template.New("sections").Parse(sectionTemplates))

type coverData struct {
	Title string
	Image string
	Alt   string
}

type titleData struct {
	Title     string
	BookTitle string
	Author    string
	Publisher string
}

type copyrightData struct {
	Title string
	Lines []string
}

type dedicationData struct {
	Title      string
	Dedication string
}

type tocEntry struct {
	Label string
	Href  string
}

type tocData struct {
	Title   string
	Entries []tocEntry
}

type characterEntry struct {
	Name        string
	Role        string
	Description string
}

type charactersData struct {
	Title      string
	Characters []characterEntry
}

type prefaceData struct {
	Title      string
	Paragraphs []string
}

type chapterData struct {
	Title      string
	Epigraph   string
	Image      string
	Alt        string
	Paragraphs []string
}

type authorData struct {
	Title      string
	Name       string
	Paragraphs []string
	AlsoBy     []string
}

// buildSections renders every content document in reading order, then
// verifies each one parses and references only entries being packaged.
// images must be the slice returned by embedImages for the same book.
func buildSections(b *book.Book, images []embeddedImage) ([]section, error) {
	secs := make([]section, 0, len(b.Chapters)+8)

	builders := []func() (section, error){
		func() (section, error) { return coverSection(b, images[0]) },
		func() (section, error) { return titleSection(b) },
		func() (section, error) { return copyrightSection(b) },
		func() (section, error) { return dedicationSection(b) },
		func() (section, error) { return tocSection(b) },
		func() (section, error) { return charactersSection(b) },
		func() (section, error) { return prefaceSection(b) },
	}
	for _, build := range builders {
		s, err := build()
		if err != nil {
			return nil, err
		}
		secs = append(secs, s)
	}
	for i := range b.Chapters {
		s, err := chapterSection(b, i, images[i+1])
		if err != nil {
			return nil, err
		}
		secs = append(secs, s)
	}
	s, err := authorSection(b)
	if err != nil {
		return nil, err
	}
	secs = append(secs, s)

	available := map[string]bool{stylesheetPath: true}
	for _, img := range images {
		available[img.path] = true
	}
	for _, s := range secs {
		available[s.path] = true
	}
	for _, s := range secs {
		if err := verifySection(s, available); err != nil {
			return nil, err
		}
	}
	return secs, nil
}

// renderSection executes one named document template. The XML
// declaration is prepended afterwards because the HTML-aware template
// engine would escape the processing instruction.
func renderSection(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)
	if err := sectionTmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func coverSection(b *book.Book, cover embeddedImage) (section, error) {
	data, err := renderSection("cover", coverData{
		Title: b.Title,
		Image: cover.path,
		Alt:   fmt.Sprintf("Cover of %s", b.Title),
	})
	if err != nil {
		return section{}, err
	}
	return section{id: "cover", path: "text/cover.xhtml", title: "Cover", data: data}, nil
}

func titleSection(b *book.Book) (section, error) {
	data, err := renderSection("title-page", titleData{
		Title:     b.Title,
		BookTitle: b.Title,
		Author:    b.Author.Name,
		Publisher: b.Publisher,
	})
	if err != nil {
		return section{}, err
	}
	return section{id: "title-page", path: "text/title.xhtml", title: "Title Page", data: data}, nil
}

func copyrightSection(b *book.Book) (section, error) {
	lines := []string{
		fmt.Sprintf("Copyright © %d %s", b.PublishedYear, b.Author.Name),
		"All rights reserved.",
	}
	if b.Publisher != "" {
		lines = append(lines, fmt.Sprintf("Published by %s", b.Publisher))
	}
	data, err := renderSection("copyright", copyrightData{Title: "Copyright", Lines: lines})
	if err != nil {
		return section{}, err
	}
	return section{id: "copyright", path: "text/copyright.xhtml", title: "Copyright", data: data}, nil
}

func dedicationSection(b *book.Book) (section, error) {
	data, err := renderSection("dedication", dedicationData{
		Title:      "Dedication",
		Dedication: b.Dedication,
	})
	if err != nil {
		return section{}, err
	}
	return section{id: "dedication", path: "text/dedication.xhtml", title: "Dedication", data: data}, nil
}

func tocSection(b *book.Book) (section, error) {
	entries := []tocEntry{{Label: "Preface", Href: "preface.xhtml"}}
	for i, c := range b.Chapters {
		entries = append(entries, tocEntry{
			Label: book.ChapterLabel(i+1, c.Title),
			Href:  fmt.Sprintf("chapter-%d.xhtml", i+1),
		})
	}
	entries = append(entries, tocEntry{Label: "About the Author", Href: "author.xhtml"})
	data, err := renderSection("toc", tocData{Title: "Contents", Entries: entries})
	if err != nil {
		return section{}, err
	}
	return section{id: "toc", path: "text/toc.xhtml", title: "Contents", data: data}, nil
}

func charactersSection(b *book.Book) (section, error) {
	chars := make([]characterEntry, len(b.MainCharacters))
	for i, c := range b.MainCharacters {
		chars[i] = characterEntry{
			Name:        c.Name,
			Role:        string(c.Role),
			Description: c.Description,
		}
	}
	data, err := renderSection("characters", charactersData{
		Title:      "Cast of Characters",
		Characters: chars,
	})
	if err != nil {
		return section{}, err
	}
	return section{id: "characters", path: "text/characters.xhtml", title: "Cast of Characters", data: data}, nil
}

func prefaceSection(b *book.Book) (section, error) {
	data, err := renderSection("preface", prefaceData{
		Title:      "Preface",
		Paragraphs: book.Reflow(b.Preface),
	})
	if err != nil {
		return section{}, err
	}
	return section{id: "preface", path: "text/preface.xhtml", title: "Preface", data: data}, nil
}

func chapterSection(b *book.Book, i int, img embeddedImage) (section, error) {
	c := b.Chapters[i]
	label := book.ChapterLabel(i+1, c.Title)
	d := chapterData{
		Title:      label,
		Image:      img.path,
		Alt:        fmt.Sprintf("Illustration for %s", c.Title),
		Paragraphs: book.Reflow(c.Content),
	}
	if c.Epigraph != "" {
		d.Epigraph = book.Quote(c.Epigraph)
	}
	data, err := renderSection("chapter", d)
	if err != nil {
		return section{}, err
	}
	return section{
		id:    fmt.Sprintf("chapter-%d", i+1),
		path:  fmt.Sprintf("text/chapter-%d.xhtml", i+1),
		title: label,
		data:  data,
	}, nil
}

func authorSection(b *book.Book) (section, error) {
	data, err := renderSection("author", authorData{
		Title:      "About the Author",
		Name:       b.Author.Name,
		Paragraphs: book.Reflow(b.Author.Bio),
		AlsoBy:     b.Author.AlsoByAuthor,
	})
	if err != nil {
		return section{}, err
	}
	return section{id: "author", path: "text/author.xhtml", title: "About the Author", data: data}, nil
}

// verifySection parses a rendered document and checks that every
// stylesheet, image and internal link reference resolves to an entry
// being packaged. Catches template regressions before an unreadable
// archive ships.
func verifySection(s section, available map[string]bool) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(s.data))
	if err != nil {
		return fmt.Errorf("%s is not parseable: %w", s.path, err)
	}

	base := path.Dir(s.path)
	var verr error
	check := func(ref string) {
		if verr != nil || ref == "" || strings.Contains(ref, "://") || strings.HasPrefix(ref, "#") {
			return
		}
		target := ref
		if i := strings.IndexByte(target, '#'); i >= 0 {
			target = target[:i]
		}
		resolved := path.Clean(path.Join(base, target))
		if !available[resolved] {
			verr = fmt.Errorf("%s references missing entry %s", s.path, resolved)
		}
	}

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok {
			check(src)
		}
	})
	doc.Find("link").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			check(href)
		}
	})
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			check(href)
		}
	})
	return verr
}
