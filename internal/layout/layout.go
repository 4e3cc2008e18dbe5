package layout

import (
	"fmt"

	"github.com/bookforge/bookforge/internal/book"
)

// Section labels used in running heads and the table of contents.
const (
	labelContents = "Contents"
	labelPreface  = "Preface"
	labelAuthor   = "About the Author"
)

// The table of contents is the first page that carries a footer; numbering
// starts there and increments by one per numbered page.
const (
	tocPageNumber     = 1
	prefacePageNumber = 2
)

func chapterPageNumber(i int) int { return prefacePageNumber + i + 1 }
func authorPageNumber(n int) int  { return prefacePageNumber + n + 1 }

// Layout partitions a book into its page sequence: cover, title page,
// copyright, dedication, table of contents, preface, one page per chapter,
// author bio, back cover. A book with n chapters always yields n+8 pages.
func Layout(b *book.Book) []Page {
	pages := make([]Page, 0, len(b.Chapters)+8)
	pages = append(pages,
		coverPage(b),
		titlePage(b),
		copyrightPage(b),
		dedicationPage(b),
		tocPage(b),
		prefacePage(b),
	)
	for i := range b.Chapters {
		pages = append(pages, chapterPage(b, i))
	}
	pages = append(pages, authorPage(b), backCoverPage(b))
	return pages
}

// numbered builds a page carrying the running head and a footer number.
func numbered(b *book.Book, kind Kind, label string, num int, body []Element) Page {
	return Page{
		Kind:   kind,
		Header: &Header{Left: b.Title, Right: label},
		Footer: &Footer{PageNumber: num},
		Body:   body,
	}
}

// paragraphs re-flows raw prose into paragraph elements. When dropCap is
// set the opening paragraph is marked for first-letter emphasis.
func paragraphs(text string, dropCap bool) []Element {
	parts := book.Reflow(text)
	els := make([]Element, 0, len(parts))
	for i, p := range parts {
		els = append(els, Paragraph{Text: p, DropCap: dropCap && i == 0})
	}
	return els
}

func coverPage(b *book.Book) Page {
	var body []Element
	if b.CoverImageURL != "" {
		body = append(body, Image{URL: b.CoverImageURL, FullBleed: true})
	} else {
		body = append(body, Heading{Text: b.Title})
	}
	return Page{Kind: KindCover, Body: body}
}

func titlePage(b *book.Book) Page {
	body := []Element{
		Heading{Text: b.Title},
		Paragraph{Text: b.Author.Name},
	}
	if b.Publisher != "" {
		body = append(body, Paragraph{Text: b.Publisher})
	}
	return Page{Kind: KindTitlePage, Body: body}
}

func copyrightPage(b *book.Book) Page {
	body := []Element{
		Paragraph{Text: fmt.Sprintf("Copyright © %d %s", b.PublishedYear, b.Author.Name)},
		Paragraph{Text: "All rights reserved."},
	}
	if b.Publisher != "" {
		body = append(body, Paragraph{Text: "Published by " + b.Publisher})
	}
	return Page{Kind: KindCopyright, Body: body}
}

func dedicationPage(b *book.Book) Page {
	var body []Element
	if b.Dedication != "" {
		body = append(body, Paragraph{Text: b.Dedication})
	}
	return Page{Kind: KindDedication, Body: body}
}

func tocPage(b *book.Book) Page {
	body := []Element{
		Heading{Text: labelContents},
		TOCItem{Label: labelPreface, Page: prefacePageNumber},
	}
	for i, c := range b.Chapters {
		body = append(body, TOCItem{Label: book.ChapterLabel(i+1, c.Title), Page: chapterPageNumber(i)})
	}
	body = append(body, TOCItem{Label: labelAuthor, Page: authorPageNumber(len(b.Chapters))})
	return numbered(b, KindTableOfContents, labelContents, tocPageNumber, body)
}

func prefacePage(b *book.Book) Page {
	body := []Element{Heading{Text: labelPreface}}
	body = append(body, paragraphs(b.Preface, true)...)
	return numbered(b, KindPreface, labelPreface, prefacePageNumber, body)
}

// chapterPage never splits a chapter: heading, epigraph, illustration, and
// every paragraph share the one page. An empty image URL omits the image
// element entirely rather than emitting a broken reference.
func chapterPage(b *book.Book, i int) Page {
	c := b.Chapters[i]
	body := []Element{Heading{Text: book.ChapterLabel(i+1, c.Title)}}
	if c.Epigraph != "" {
		body = append(body, Epigraph{Text: book.Quote(c.Epigraph)})
	}
	if c.ImageURL != "" {
		body = append(body, Image{URL: c.ImageURL})
	}
	body = append(body, paragraphs(c.Content, true)...)
	return numbered(b, KindChapter, c.Title, chapterPageNumber(i), body)
}

func authorPage(b *book.Book) Page {
	body := []Element{
		Heading{Text: labelAuthor},
		Paragraph{Text: b.Author.Name},
	}
	body = append(body, paragraphs(b.Author.Bio, false)...)
	if len(b.Author.AlsoByAuthor) > 0 {
		body = append(body, List{Title: "Also by " + b.Author.Name, Items: b.Author.AlsoByAuthor})
	}
	return numbered(b, KindAuthorBio, labelAuthor, authorPageNumber(len(b.Chapters)), body)
}

func backCoverPage(b *book.Book) Page {
	return Page{Kind: KindBackCover, Body: paragraphs(b.BackCoverBlurb, false)}
}
