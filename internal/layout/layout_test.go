package layout

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/bookforge/bookforge/internal/book"
)

func testBook(n int) *book.Book {
	b := &book.Book{
		ID:             "test-id",
		Title:          "The Clockwork Tide",
		Publisher:      "Harbor Lane Press",
		PublishedYear:  2026,
		PlotSummary:    "A lighthouse keeper discovers the sea runs on gears.",
		Preface:        "Every machine has a heartbeat.\nThis book listens for it.",
		Dedication:     "For the keepers.",
		BackCoverBlurb: "The tide is ticking.\nSomeone has to wind it.",
		Author: book.Author{
			Name:         "Mara Ellison",
			Bio:          "Mara writes from a converted lighthouse.",
			AlsoByAuthor: []string{"The Brass Harbor"},
		},
		Theme: book.Theme{
			FontPairing: book.FontPairing{Heading: "Cinzel", Body: "Lora"},
		},
		CoverImageURL: "https://img.example.com/cover.jpg",
	}
	for i := 0; i < n; i++ {
		b.Chapters = append(b.Chapters, book.Chapter{
			Title:    fmt.Sprintf("Tide Mark %d", i+1),
			Epigraph: "The sea keeps time.",
			Content:  "The gear turned at dawn.\nNobody saw it move.",
			ImageURL: fmt.Sprintf("https://img.example.com/ch%d.jpg", i+1),
		})
	}
	return b
}

func pageKinds(pages []Page) []Kind {
	kinds := make([]Kind, len(pages))
	for i, p := range pages {
		kinds[i] = p.Kind
	}
	return kinds
}

func TestLayoutPageSequence(t *testing.T) {
	for _, n := range []int{0, 1, 3, 12} {
		t.Run(fmt.Sprintf("%d chapters", n), func(t *testing.T) {
			pages := Layout(testBook(n))
			if len(pages) != n+8 {
				t.Fatalf("Layout() produced %d pages, want %d", len(pages), n+8)
			}

			want := []Kind{KindCover, KindTitlePage, KindCopyright, KindDedication, KindTableOfContents, KindPreface}
			for i := 0; i < n; i++ {
				want = append(want, KindChapter)
			}
			want = append(want, KindAuthorBio, KindBackCover)

			if got := pageKinds(pages); !reflect.DeepEqual(got, want) {
				t.Errorf("page kinds = %v, want %v", got, want)
			}
		})
	}
}

func TestLayoutDeterministic(t *testing.T) {
	b := testBook(4)
	if !reflect.DeepEqual(Layout(b), Layout(b)) {
		t.Error("Layout() is not deterministic for the same book")
	}
}

func TestLayoutPageNumbering(t *testing.T) {
	pages := Layout(testBook(2))

	// Cover, title, copyright, dedication and back cover carry no
	// header or footer.
	for _, i := range []int{0, 1, 2, 3, len(pages) - 1} {
		if pages[i].Header != nil || pages[i].Footer != nil {
			t.Errorf("page %d (%s) has header/footer, want none", i, pages[i].Kind)
		}
	}

	numbered := []struct {
		idx   int
		num   int
		right string
	}{
		{4, 1, "Contents"},
		{5, 2, "Preface"},
		{6, 3, "Tide Mark 1"},
		{7, 4, "Tide Mark 2"},
		{8, 5, "About the Author"},
	}
	for _, tt := range numbered {
		p := pages[tt.idx]
		if p.Footer == nil || p.Footer.PageNumber != tt.num {
			t.Errorf("page %d (%s): footer = %+v, want page number %d", tt.idx, p.Kind, p.Footer, tt.num)
		}
		if p.Header == nil || p.Header.Left != "The Clockwork Tide" || p.Header.Right != tt.right {
			t.Errorf("page %d (%s): header = %+v, want title / %q", tt.idx, p.Kind, p.Header, tt.right)
		}
	}
}

func TestLayoutTableOfContents(t *testing.T) {
	b := testBook(3)
	pages := Layout(b)
	toc := pages[4]

	var items []TOCItem
	for _, el := range toc.Body {
		if it, ok := el.(TOCItem); ok {
			items = append(items, it)
		}
	}

	want := []TOCItem{
		{Label: "Preface", Page: 2},
		{Label: "Chapter 1: Tide Mark 1", Page: 3},
		{Label: "Chapter 2: Tide Mark 2", Page: 4},
		{Label: "Chapter 3: Tide Mark 3", Page: 5},
		{Label: "About the Author", Page: 6},
	}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("ToC items = %+v, want %+v", items, want)
	}
}

func TestLayoutChapterPage(t *testing.T) {
	b := testBook(1)
	pages := Layout(b)
	ch := pages[6]

	if h, ok := ch.Body[0].(Heading); !ok || h.Text != "Chapter 1: Tide Mark 1" {
		t.Errorf("chapter heading = %+v, want Chapter 1: Tide Mark 1", ch.Body[0])
	}
	if e, ok := ch.Body[1].(Epigraph); !ok || e.Text != "“The sea keeps time.”" {
		t.Errorf("epigraph = %+v, want quoted epigraph", ch.Body[1])
	}
	if img, ok := ch.Body[2].(Image); !ok || img.URL != "https://img.example.com/ch1.jpg" {
		t.Errorf("image = %+v, want chapter illustration", ch.Body[2])
	}

	var paras []Paragraph
	for _, el := range ch.Body {
		if p, ok := el.(Paragraph); ok {
			paras = append(paras, p)
		}
	}
	if len(paras) != 2 {
		t.Fatalf("chapter has %d paragraphs, want 2", len(paras))
	}
	if !paras[0].DropCap {
		t.Error("opening chapter paragraph should carry the drop cap")
	}
	if paras[1].DropCap {
		t.Error("only the opening paragraph should carry the drop cap")
	}
}

func TestLayoutOmitsMissingChapterImage(t *testing.T) {
	b := testBook(1)
	b.Chapters[0].ImageURL = ""
	pages := Layout(b)

	for _, el := range pages[6].Body {
		if _, ok := el.(Image); ok {
			t.Error("chapter page contains an image element for an empty image URL")
		}
	}
	if len(pages) != 9 {
		t.Errorf("page count changed to %d when chapter image missing, want 9", len(pages))
	}
}

func TestLayoutDropCapPlacement(t *testing.T) {
	pages := Layout(testBook(2))

	// Count drop caps across the whole layout: exactly one per chapter
	// plus one for the preface.
	var dropCaps int
	var carriers []Kind
	for _, p := range pages {
		for _, el := range p.Body {
			if para, ok := el.(Paragraph); ok && para.DropCap {
				dropCaps++
				carriers = append(carriers, p.Kind)
			}
		}
	}
	if dropCaps != 3 {
		t.Errorf("layout has %d drop caps, want 3 (preface + 2 chapters), on %v", dropCaps, carriers)
	}
	for _, k := range carriers {
		if k != KindPreface && k != KindChapter {
			t.Errorf("drop cap on %s page, want preface/chapter only", k)
		}
	}
}

func TestLayoutCoverAndBackCover(t *testing.T) {
	b := testBook(1)
	pages := Layout(b)

	if img, ok := pages[0].Body[0].(Image); !ok || !img.FullBleed || img.URL != b.CoverImageURL {
		t.Errorf("cover body = %+v, want full-bleed cover image", pages[0].Body)
	}

	back := pages[len(pages)-1]
	if len(back.Body) != 2 {
		t.Errorf("back cover has %d elements, want 2 blurb paragraphs", len(back.Body))
	}

	// A book without cover art still gets a front page, with the title.
	b.CoverImageURL = ""
	pages = Layout(b)
	if h, ok := pages[0].Body[0].(Heading); !ok || h.Text != b.Title {
		t.Errorf("coverless body = %+v, want title heading", pages[0].Body)
	}
}

func TestLayoutCopyrightPage(t *testing.T) {
	pages := Layout(testBook(0))
	cp := pages[2]

	if p, ok := cp.Body[0].(Paragraph); !ok || p.Text != "Copyright © 2026 Mara Ellison" {
		t.Errorf("copyright line = %+v", cp.Body[0])
	}
	if p, ok := cp.Body[2].(Paragraph); !ok || p.Text != "Published by Harbor Lane Press" {
		t.Errorf("publisher line = %+v", cp.Body[2])
	}
}
