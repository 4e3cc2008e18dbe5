// Package layout partitions a book into the fixed page sequence used by
// the paginated rendering pipeline. The transformation is pure: the same
// book always yields the identical page sequence, and no I/O happens here.
package layout

// Kind identifies what a page is, in the fixed front-to-back order of the
// book.
type Kind string

// Page kinds, in reading order.
const (
	KindCover           Kind = "cover"
	KindTitlePage       Kind = "title"
	KindCopyright       Kind = "copyright"
	KindDedication      Kind = "dedication"
	KindTableOfContents Kind = "toc"
	KindPreface         Kind = "preface"
	KindChapter         Kind = "chapter"
	KindAuthorBio       Kind = "author"
	KindBackCover       Kind = "back-cover"
)

// Header is the running head of a numbered page.
type Header struct {
	Left  string // book title
	Right string // current section label
}

// Footer carries the visible page number.
type Footer struct {
	PageNumber int
}

// Page is one fixed-size unit of the paginated layout. Header and Footer
// are nil on unnumbered pages (cover, front matter, back cover).
type Page struct {
	Kind   Kind
	Header *Header
	Footer *Footer
	Body   []Element
}

// Element is one typed render instruction within a page body. Rasterizer
// backends switch on the concrete type; nothing here is markup.
type Element interface {
	element()
}

// Heading is display text set in the theme's heading face.
type Heading struct {
	Text string
}

// Paragraph is body copy set in the theme's body face. DropCap marks the
// opening paragraph of the preface and of each chapter.
type Paragraph struct {
	Text    string
	DropCap bool
}

// Epigraph is a short quoted line set apart from the body copy. Text
// arrives already wrapped in typographic quotes.
type Epigraph struct {
	Text string
}

// Image places an illustration. FullBleed covers the entire page.
type Image struct {
	URL       string
	FullBleed bool
}

// TOCItem is one table-of-contents line with its target page number.
type TOCItem struct {
	Label string
	Page  int
}

// List is a titled list, used for the also-by-this-author titles.
type List struct {
	Title string
	Items []string
}

func (Heading) element()   {}
func (Paragraph) element() {}
func (Epigraph) element()  {}
func (Image) element()     {}
func (TOCItem) element()   {}
func (List) element()      {}
