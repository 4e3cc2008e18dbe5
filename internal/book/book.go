package book

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bookforge/bookforge/internal/errs"
)

// FromPlan normalizes a raw plan into a canonical Book: fields are
// trimmed, empty list entries dropped, and the record receives its
// identifier and publication year. Chapter content and image URLs start
// empty and are filled in later via the Set* methods.
func FromPlan(p *Plan) (*Book, error) {
	if p == nil {
		return nil, errs.New(errs.ErrCodeInvalidBook, "plan is nil")
	}
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, errs.New(errs.ErrCodeInvalidBook, "plan has no title")
	}

	b := &Book{
		ID:             uuid.NewString(),
		Title:          title,
		Publisher:      strings.TrimSpace(p.Publisher),
		PublishedYear:  time.Now().Year(),
		PlotSummary:    strings.TrimSpace(p.PlotSummary),
		Preface:        strings.TrimSpace(p.Preface),
		Dedication:     strings.TrimSpace(p.Dedication),
		BackCoverBlurb: strings.TrimSpace(p.BackCoverBlurb),
		Author: Author{
			Name:         strings.TrimSpace(p.Author.Name),
			Bio:          strings.TrimSpace(p.Author.Bio),
			AlsoByAuthor: trimList(p.Author.AlsoByAuthor),
		},
		Theme:         p.Theme,
		CoverPrompt:   strings.TrimSpace(p.CoverPrompt),
		KDPKeywords:   trimList(p.KDPKeywords),
		KDPCategories: trimList(p.KDPCategories),
	}

	b.MainCharacters = make([]Character, 0, len(p.MainCharacters))
	for _, c := range p.MainCharacters {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		b.MainCharacters = append(b.MainCharacters, Character{
			Name:        name,
			Role:        c.Role,
			Description: strings.TrimSpace(c.Description),
		})
	}

	b.Chapters = make([]Chapter, 0, len(p.Chapters))
	for i, c := range p.Chapters {
		title := strings.TrimSpace(c.Title)
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		b.Chapters = append(b.Chapters, Chapter{
			Title:       title,
			Summary:     strings.TrimSpace(c.Summary),
			Epigraph:    strings.TrimSpace(c.Epigraph),
			ImagePrompt: strings.TrimSpace(c.ImagePrompt),
		})
	}

	return b, nil
}

// SetChapterContent stores the finished prose for the chapter at the given
// zero-based index.
func (b *Book) SetChapterContent(i int, content string) error {
	if i < 0 || i >= len(b.Chapters) {
		return fmt.Errorf("chapter index %d out of range (have %d chapters)", i, len(b.Chapters))
	}
	b.Chapters[i].Content = content
	return nil
}

// SetChapterImageURL stores the illustration URL for the chapter at the
// given zero-based index.
func (b *Book) SetChapterImageURL(i int, url string) error {
	if i < 0 || i >= len(b.Chapters) {
		return fmt.Errorf("chapter index %d out of range (have %d chapters)", i, len(b.Chapters))
	}
	b.Chapters[i].ImageURL = url
	return nil
}

// SetCoverImageURL stores the cover art URL.
func (b *Book) SetCoverImageURL(url string) {
	b.CoverImageURL = url
}

// Validate checks the structural fields every consumer relies on: a title,
// an author name, titled chapters, and well-formed URLs where present.
func (b *Book) Validate() error {
	if err := validator.New().Struct(b); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidBook, err, "book record is invalid")
	}
	return nil
}

// ValidateForPackaging checks everything Validate does plus the fields the
// packaging engine requires filled in: the cover URL and every chapter's
// content and image URL.
func (b *Book) ValidateForPackaging() error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.CoverImageURL == "" {
		return errs.New(errs.ErrCodeInvalidBook, "cover image url is empty")
	}
	for i, c := range b.Chapters {
		if strings.TrimSpace(c.Content) == "" {
			return errs.New(errs.ErrCodeInvalidBook, "chapter %d (%s) has no content", i+1, c.Title)
		}
		if c.ImageURL == "" {
			return errs.New(errs.ErrCodeInvalidBook, "chapter %d (%s) has no image url", i+1, c.Title)
		}
	}
	return nil
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
