package book

import (
	"strings"
	"testing"

	"github.com/bookforge/bookforge/internal/errs"
)

func testPlan() *Plan {
	return &Plan{
		Title:          "  The Clockwork Tide  ",
		Publisher:      "Harbor Lane Press",
		PlotSummary:    "A lighthouse keeper discovers the sea runs on gears.",
		Preface:        "Every machine has a heartbeat.",
		Dedication:     "For the keepers.",
		BackCoverBlurb: "The tide is ticking.",
		Author: Author{
			Name:         " Mara Ellison ",
			Bio:          "Mara writes from a converted lighthouse.",
			AlsoByAuthor: []string{"The Brass Harbor", "  ", "Salt and Springs"},
		},
		MainCharacters: []Character{
			{Name: "Ida", Role: RoleProtagonist, Description: "the keeper"},
			{Name: "", Role: RoleSupporting, Description: "dropped"},
			{Name: "Corvus", Role: RoleAntagonist, Description: "the salvager"},
		},
		Theme: Theme{
			FontPairing: FontPairing{Heading: "Cinzel", Body: "Lora", SourceURL: "https://fonts.example.com/css"},
			ImageStyle:  "ink and copper etching",
		},
		CoverPrompt: "a lighthouse made of gears",
		Chapters: []PlanChapter{
			{Title: "Low Water", Summary: "the first gear", Epigraph: "The sea keeps time.", ImagePrompt: "gears in foam"},
			{Title: "", Summary: "untitled", Epigraph: "", ImagePrompt: ""},
		},
		KDPKeywords:   []string{"clockwork", " tide ", ""},
		KDPCategories: []string{"Fiction / Fantasy"},
	}
}

func TestFromPlan(t *testing.T) {
	b, err := FromPlan(testPlan())
	if err != nil {
		t.Fatalf("FromPlan() error = %v", err)
	}

	if b.Title != "The Clockwork Tide" {
		t.Errorf("Title = %q, want trimmed title", b.Title)
	}
	if b.ID == "" {
		t.Error("ID is empty, want generated identifier")
	}
	if b.PublishedYear == 0 {
		t.Error("PublishedYear is zero")
	}
	if b.Author.Name != "Mara Ellison" {
		t.Errorf("Author.Name = %q, want trimmed name", b.Author.Name)
	}
	if len(b.Author.AlsoByAuthor) != 2 {
		t.Errorf("AlsoByAuthor has %d entries, want 2 (blank dropped)", len(b.Author.AlsoByAuthor))
	}
	if len(b.MainCharacters) != 2 {
		t.Fatalf("MainCharacters has %d entries, want 2 (unnamed dropped)", len(b.MainCharacters))
	}
	if b.MainCharacters[1].Name != "Corvus" {
		t.Errorf("MainCharacters[1].Name = %q, want Corvus", b.MainCharacters[1].Name)
	}
	if len(b.Chapters) != 2 {
		t.Fatalf("Chapters has %d entries, want 2", len(b.Chapters))
	}
	if b.Chapters[1].Title != "Chapter 2" {
		t.Errorf("untitled chapter Title = %q, want Chapter 2", b.Chapters[1].Title)
	}
	if b.Chapters[0].Content != "" || b.Chapters[0].ImageURL != "" {
		t.Error("chapter content/image should start empty")
	}
	if len(b.KDPKeywords) != 2 {
		t.Errorf("KDPKeywords has %d entries, want 2", len(b.KDPKeywords))
	}
}

func TestFromPlanRejectsBadPlans(t *testing.T) {
	if _, err := FromPlan(nil); err == nil {
		t.Error("FromPlan(nil) error = nil, want error")
	}
	if _, err := FromPlan(&Plan{Title: "   "}); err == nil {
		t.Error("FromPlan with blank title: error = nil, want error")
	}
}

func TestSetChapterFields(t *testing.T) {
	b, err := FromPlan(testPlan())
	if err != nil {
		t.Fatalf("FromPlan() error = %v", err)
	}

	if err := b.SetChapterContent(0, "The gear turned at dawn."); err != nil {
		t.Fatalf("SetChapterContent(0) error = %v", err)
	}
	if b.Chapters[0].Content != "The gear turned at dawn." {
		t.Errorf("Chapters[0].Content = %q", b.Chapters[0].Content)
	}

	if err := b.SetChapterImageURL(1, "https://img.example.com/ch2.png"); err != nil {
		t.Fatalf("SetChapterImageURL(1) error = %v", err)
	}
	if b.Chapters[1].ImageURL != "https://img.example.com/ch2.png" {
		t.Errorf("Chapters[1].ImageURL = %q", b.Chapters[1].ImageURL)
	}

	// Out-of-range indices must not panic or write anywhere.
	if err := b.SetChapterContent(2, "x"); err == nil {
		t.Error("SetChapterContent(2) error = nil, want out of range error")
	}
	if err := b.SetChapterContent(-1, "x"); err == nil {
		t.Error("SetChapterContent(-1) error = nil, want out of range error")
	}
	if err := b.SetChapterImageURL(99, "https://x"); err == nil {
		t.Error("SetChapterImageURL(99) error = nil, want out of range error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Book)
		wantErr bool
	}{
		{name: "valid", mutate: func(b *Book) {}, wantErr: false},
		{name: "missing title", mutate: func(b *Book) { b.Title = "" }, wantErr: true},
		{name: "missing author name", mutate: func(b *Book) { b.Author.Name = "" }, wantErr: true},
		{name: "bad cover url", mutate: func(b *Book) { b.CoverImageURL = "not-a-url" }, wantErr: true},
		{name: "bad character role", mutate: func(b *Book) { b.MainCharacters[0].Role = "narrator" }, wantErr: true},
		{name: "untitled chapter", mutate: func(b *Book) { b.Chapters[0].Title = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := FromPlan(testPlan())
			if err != nil {
				t.Fatalf("FromPlan() error = %v", err)
			}
			tt.mutate(b)
			err = b.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errs.Is(err, errs.ErrCodeInvalidBook) {
				t.Errorf("Validate() code = %v, want INVALID_BOOK", errs.GetCode(err))
			}
		})
	}
}

func TestValidateForPackaging(t *testing.T) {
	ready := func(t *testing.T) *Book {
		t.Helper()
		b, err := FromPlan(testPlan())
		if err != nil {
			t.Fatalf("FromPlan() error = %v", err)
		}
		b.SetCoverImageURL("https://img.example.com/cover.jpg")
		for i := range b.Chapters {
			if err := b.SetChapterContent(i, "Some finished prose."); err != nil {
				t.Fatal(err)
			}
			if err := b.SetChapterImageURL(i, "https://img.example.com/ch.jpg"); err != nil {
				t.Fatal(err)
			}
		}
		return b
	}

	t.Run("fully enriched book passes", func(t *testing.T) {
		if err := ready(t).ValidateForPackaging(); err != nil {
			t.Errorf("ValidateForPackaging() error = %v", err)
		}
	})

	t.Run("missing cover", func(t *testing.T) {
		b := ready(t)
		b.CoverImageURL = ""
		if err := b.ValidateForPackaging(); err == nil {
			t.Error("error = nil, want missing cover error")
		}
	})

	t.Run("missing chapter content", func(t *testing.T) {
		b := ready(t)
		b.Chapters[1].Content = "   "
		err := b.ValidateForPackaging()
		if err == nil {
			t.Fatal("error = nil, want missing content error")
		}
		if !strings.Contains(err.Error(), "chapter 2") {
			t.Errorf("error = %v, want it to name chapter 2", err)
		}
	})

	t.Run("missing chapter image", func(t *testing.T) {
		b := ready(t)
		b.Chapters[0].ImageURL = ""
		if err := b.ValidateForPackaging(); err == nil {
			t.Error("error = nil, want missing image error")
		}
	})
}
