package epub

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/bookforge/bookforge/internal/book"
)

// offlineBook builds a fixture whose asset URLs are never fetched;
// section building only needs the assigned archive paths.
func offlineBook(n int) *book.Book {
	b := &book.Book{
		ID:             testBookID,
		Title:          "The Clockwork Tide",
		Publisher:      "Harbor Lane Press",
		PublishedYear:  2026,
		Preface:        "The harbor never sleeps.\nNeither do its clocks.",
		Dedication:     "For the keepers of small machines.",
		BackCoverBlurb: "A city kept alive by clockwork faces its final ebb.",
		Author: book.Author{
			Name:         "Mara Ellison",
			Bio:          "Mara Ellison restores tower clocks.",
			AlsoByAuthor: []string{"The Brass Harbor", "Saltworks"},
		},
		MainCharacters: []book.Character{
			{Name: "Juniper Vale", Role: book.RoleProtagonist, Description: "A tide-keeper's apprentice."},
			{Name: "Silas Crane", Role: book.RoleAntagonist, Description: "The harbor master."},
		},
		CoverImageURL: "https://example.com/cover.jpg",
	}
	for i := 1; i <= n; i++ {
		b.Chapters = append(b.Chapters, book.Chapter{
			Title:    fmt.Sprintf("Tide Mark %d", i),
			Epigraph: "The sea keeps time.",
			Content:  "Low water.\n\nThe gears wait.",
			ImageURL: fmt.Sprintf("https://example.com/chapter-%d.jpg", i),
		})
	}
	return b
}

func fakeImages(n int) []embeddedImage {
	imgs := []embeddedImage{{id: "cover-image", path: "images/cover.jpeg", mediaType: "image/jpeg"}}
	for i := 1; i <= n; i++ {
		imgs = append(imgs, embeddedImage{
			id:        fmt.Sprintf("img-%d", i),
			path:      fmt.Sprintf("images/chapter-%d.jpeg", i),
			mediaType: "image/jpeg",
		})
	}
	return imgs
}

func parseSection(t *testing.T, s section) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(s.data))
	if err != nil {
		t.Fatalf("parse %s: %v", s.path, err)
	}
	return doc
}

func findSection(t *testing.T, secs []section, id string) section {
	t.Helper()
	for _, s := range secs {
		if s.id == id {
			return s
		}
	}
	t.Fatalf("no section %q", id)
	return section{}
}

func TestBuildSections_ReadingOrder(t *testing.T) {
	secs, err := buildSections(offlineBook(2), fakeImages(2))
	if err != nil {
		t.Fatalf("buildSections() error = %v", err)
	}

	want := []string{
		"cover", "title-page", "copyright", "dedication", "toc",
		"characters", "preface", "chapter-1", "chapter-2", "author",
	}
	if len(secs) != len(want) {
		t.Fatalf("got %d sections, want %d", len(secs), len(want))
	}
	for i, id := range want {
		if secs[i].id != id {
			t.Errorf("section[%d] = %q, want %q", i, secs[i].id, id)
		}
		if !strings.HasPrefix(secs[i].path, "text/") {
			t.Errorf("section %q path = %q, want under text/", id, secs[i].path)
		}
	}
}

func TestBuildSections_EscapesMarkup(t *testing.T) {
	b := offlineBook(1)
	b.Title = "Tide & <Storm>"

	secs, err := buildSections(b, fakeImages(1))
	if err != nil {
		t.Fatalf("buildSections() error = %v", err)
	}
	title := string(findSection(t, secs, "title-page").data)
	if strings.Contains(title, "<Storm>") {
		t.Fatal("title markup was not escaped")
	}
	if !strings.Contains(title, "Tide &amp; &lt;Storm&gt;") {
		t.Fatalf("escaped title not found in document:\n%s", title)
	}
}

func TestBuildSections_StylesheetLinkEverywhere(t *testing.T) {
	secs, err := buildSections(offlineBook(1), fakeImages(1))
	if err != nil {
		t.Fatalf("buildSections() error = %v", err)
	}
	for _, s := range secs {
		doc := parseSection(t, s)
		href, ok := doc.Find("link[rel=stylesheet]").Attr("href")
		if !ok {
			t.Errorf("%s has no stylesheet link", s.path)
			continue
		}
		if href != "../css/stylesheet.css" {
			t.Errorf("%s stylesheet href = %q", s.path, href)
		}
	}
}

func TestChapterSection_Structure(t *testing.T) {
	secs, err := buildSections(offlineBook(1), fakeImages(1))
	if err != nil {
		t.Fatalf("buildSections() error = %v", err)
	}
	doc := parseSection(t, findSection(t, secs, "chapter-1"))

	if got := doc.Find("h1").Text(); got != "Chapter 1: Tide Mark 1" {
		t.Errorf("heading = %q", got)
	}
	if got := strings.TrimSpace(doc.Find("blockquote.epigraph").Text()); got != "“The sea keeps time.”" {
		t.Errorf("epigraph = %q", got)
	}
	if src, _ := doc.Find("img.illustration").Attr("src"); src != "../images/chapter-1.jpeg" {
		t.Errorf("illustration src = %q", src)
	}

	paras := doc.Find("body > p")
	if paras.Length() != 2 {
		t.Fatalf("chapter has %d paragraphs, want 2", paras.Length())
	}
	if !paras.First().HasClass("first") {
		t.Error("opening paragraph is not marked for first-letter emphasis")
	}
	if paras.Last().HasClass("first") {
		t.Error("non-opening paragraph is marked for first-letter emphasis")
	}
}

func TestChapterSection_NoEpigraph(t *testing.T) {
	b := offlineBook(1)
	b.Chapters[0].Epigraph = ""

	secs, err := buildSections(b, fakeImages(1))
	if err != nil {
		t.Fatalf("buildSections() error = %v", err)
	}
	doc := parseSection(t, findSection(t, secs, "chapter-1"))
	if doc.Find("blockquote.epigraph").Length() != 0 {
		t.Fatal("chapter without epigraph still renders a blockquote")
	}
}

func TestPrefaceSection_DropCapOnlyOnOpening(t *testing.T) {
	secs, err := buildSections(offlineBook(1), fakeImages(1))
	if err != nil {
		t.Fatalf("buildSections() error = %v", err)
	}
	paras := parseSection(t, findSection(t, secs, "preface")).Find("body > p")
	if paras.Length() != 2 {
		t.Fatalf("preface has %d paragraphs, want 2", paras.Length())
	}
	first := 0
	paras.Each(func(_ int, sel *goquery.Selection) {
		if sel.HasClass("first") {
			first++
		}
	})
	if first != 1 {
		t.Fatalf("%d paragraphs marked first, want exactly 1", first)
	}
}

func TestTocSection_Entries(t *testing.T) {
	secs, err := buildSections(offlineBook(2), fakeImages(2))
	if err != nil {
		t.Fatalf("buildSections() error = %v", err)
	}
	doc := parseSection(t, findSection(t, secs, "toc"))

	type entry struct{ label, href string }
	var got []entry
	doc.Find("ol.toc a").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		got = append(got, entry{sel.Text(), href})
	})

	want := []entry{
		{"Preface", "preface.xhtml"},
		{"Chapter 1: Tide Mark 1", "chapter-1.xhtml"},
		{"Chapter 2: Tide Mark 2", "chapter-2.xhtml"},
		{"About the Author", "author.xhtml"},
	}
	if len(got) != len(want) {
		t.Fatalf("toc lists %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("toc[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCharactersSection_Roster(t *testing.T) {
	secs, err := buildSections(offlineBook(0), fakeImages(0))
	if err != nil {
		t.Fatalf("buildSections() error = %v", err)
	}
	doc := parseSection(t, findSection(t, secs, "characters"))

	names := doc.Find("dl.characters dt")
	if names.Length() != 2 {
		t.Fatalf("roster lists %d characters, want 2", names.Length())
	}
	if got := names.First().Text(); got != "Juniper Vale (protagonist)" {
		t.Errorf("first roster entry = %q", got)
	}
	if got := doc.Find("dl.characters dd").First().Text(); got != "A tide-keeper's apprentice." {
		t.Errorf("first description = %q", got)
	}
}

func TestAuthorSection_AlsoBy(t *testing.T) {
	secs, err := buildSections(offlineBook(0), fakeImages(0))
	if err != nil {
		t.Fatalf("buildSections() error = %v", err)
	}
	doc := parseSection(t, findSection(t, secs, "author"))

	if got := doc.Find("h2").Text(); got != "Also by Mara Ellison" {
		t.Errorf("also-by heading = %q", got)
	}
	items := doc.Find("ul.also-by li")
	if items.Length() != 2 {
		t.Fatalf("also-by lists %d titles, want 2", items.Length())
	}
}

func TestCoverSection_Image(t *testing.T) {
	secs, err := buildSections(offlineBook(0), fakeImages(0))
	if err != nil {
		t.Fatalf("buildSections() error = %v", err)
	}
	doc := parseSection(t, findSection(t, secs, "cover"))

	img := doc.Find("img.cover")
	if src, _ := img.Attr("src"); src != "../images/cover.jpeg" {
		t.Errorf("cover src = %q", src)
	}
	if alt, _ := img.Attr("alt"); alt != "Cover of The Clockwork Tide" {
		t.Errorf("cover alt = %q", alt)
	}
}

func TestVerifySection_CatchesMissingReference(t *testing.T) {
	s := section{
		id:   "chapter-1",
		path: "text/chapter-1.xhtml",
		data: []byte(`<html><body><img src="../images/nope.jpeg"/></body></html>`),
	}
	available := map[string]bool{"images/cover.jpeg": true}

	err := verifySection(s, available)
	if err == nil {
		t.Fatal("verifySection() accepted a dangling image reference")
	}
	if !strings.Contains(err.Error(), "images/nope.jpeg") {
		t.Fatalf("error does not name the missing entry: %v", err)
	}
}

func TestVerifySection_IgnoresExternalAndFragmentRefs(t *testing.T) {
	s := section{
		id:   "copyright",
		path: "text/copyright.xhtml",
		data: []byte(`<html><body><a href="https://example.com/x">x</a><a href="#top">top</a></body></html>`),
	}
	if err := verifySection(s, map[string]bool{}); err != nil {
		t.Fatalf("verifySection() error = %v", err)
	}
}
