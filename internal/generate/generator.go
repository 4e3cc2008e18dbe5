// Package generate drives the external content collaborator through the
// staged flow that fills a book record: plan, chapter drafts, proofread
// passes, then artwork. The collaborator is an explicit capability
// handed to the coordinator; nothing here reaches for ambient state.
package generate

import (
	"context"

	"github.com/bookforge/bookforge/internal/book"
)

// ContentGenerator is the external collaborator that produces plans,
// prose and artwork. Implementations own their transport, retry and
// rate-limit behavior; see Retry and Throttled for building blocks.
type ContentGenerator interface {
	// PlanBook turns a free-form prompt into a raw book plan.
	PlanBook(ctx context.Context, prompt string) (*book.Plan, error)

	// WriteChapter drafts the prose for one chapter.
	WriteChapter(ctx context.Context, cc ChapterContext) (string, error)

	// Proofread returns a cleaned-up revision of the given text.
	Proofread(ctx context.Context, text string) (string, error)

	// GenerateImage renders a prompt in the given style and returns the
	// URL of the produced image.
	GenerateImage(ctx context.Context, prompt, style string) (string, error)
}

// ChapterContext carries the framing a collaborator needs to draft one
// chapter consistently with the rest of the book.
type ChapterContext struct {
	BookTitle     string
	PlotSummary   string
	Characters    []book.Character
	ChapterNumber int // 1-based position in the book
	ChapterTitle  string
	Summary       string
	Epigraph      string
}

func chapterContext(b *book.Book, i int) ChapterContext {
	c := b.Chapters[i]
	return ChapterContext{
		BookTitle:     b.Title,
		PlotSummary:   b.PlotSummary,
		Characters:    b.MainCharacters,
		ChapterNumber: i + 1,
		ChapterTitle:  c.Title,
		Summary:       c.Summary,
		Epigraph:      c.Epigraph,
	}
}
