package generate

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/bookforge/bookforge/internal/book"
	"github.com/bookforge/bookforge/internal/errs"
)

const defaultConcurrency = 4

// Stage identifies one step of the generation flow.
type Stage string

const (
	StagePlan      Stage = "plan"
	StageContent   Stage = "content"
	StageProofread Stage = "proofread"
	StageImages    Stage = "images"
)

// ProgressEvent reports coordinator progress for display.
type ProgressEvent struct {
	Stage   Stage
	Message string
	Chapter int // 1-based chapter number, 0 for stage-level events
}

// Config holds the settings for creating a Coordinator.
type Config struct {
	// Generator is the content collaborator. Required.
	Generator ContentGenerator

	// Concurrency caps chapter-level fan-out within a stage. Defaults
	// to 4.
	Concurrency int

	// OnProgress, when set, receives progress events. Events are
	// emitted from the coordinating goroutine only.
	OnProgress func(ProgressEvent)

	// Logger defaults to the standard logger.
	Logger *log.Logger
}

// Coordinator owns the book record through the generation flow. Stages
// run strictly in order; chapter-level calls inside a stage fan out and
// join, and their results are applied to the book one at a time by the
// coordinator itself.
type Coordinator struct {
	gen        ContentGenerator
	limit      int
	onProgress func(ProgressEvent)
	logger     *log.Logger
}

// NewCoordinator creates a Coordinator from the given configuration.
func NewCoordinator(cfg Config) (*Coordinator, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("content generator is required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Coordinator{
		gen:        cfg.Generator,
		limit:      cfg.Concurrency,
		onProgress: cfg.OnProgress,
		logger:     cfg.Logger,
	}, nil
}

// Generate runs the full flow for one prompt: plan the book, draft
// every chapter, proofread the drafts, then produce the cover and
// chapter artwork. Any failure aborts the whole flow; no partial book
// is ever returned.
func (c *Coordinator) Generate(ctx context.Context, prompt string) (*book.Book, error) {
	c.progress(ProgressEvent{Stage: StagePlan, Message: "planning book"})
	plan, err := c.gen.PlanBook(ctx, prompt)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeGeneration, err, "failed to plan book")
	}
	b, err := book.FromPlan(plan)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeGeneration, err, "generator returned an invalid plan")
	}
	c.logger.Debug("planned book", "title", b.Title, "chapters", len(b.Chapters))
	c.progress(ProgressEvent{Stage: StagePlan, Message: fmt.Sprintf("planned %q with %d chapters", b.Title, len(b.Chapters))})

	if err := c.contentStage(ctx, b); err != nil {
		return nil, err
	}
	if err := c.proofreadStage(ctx, b); err != nil {
		return nil, err
	}
	if err := c.imagesStage(ctx, b); err != nil {
		return nil, err
	}

	if err := b.ValidateForPackaging(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeGeneration, err, "generated book is incomplete")
	}
	return b, nil
}

func (c *Coordinator) contentStage(ctx context.Context, b *book.Book) error {
	c.progress(ProgressEvent{Stage: StageContent, Message: fmt.Sprintf("drafting %d chapters", len(b.Chapters))})
	drafts, err := c.fanOut(ctx, len(b.Chapters), func(ctx context.Context, i int) (string, error) {
		return c.gen.WriteChapter(ctx, chapterContext(b, i))
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeGeneration, err, "failed to draft chapters")
	}
	for _, d := range drafts {
		if err := b.SetChapterContent(d.index, d.value); err != nil {
			return errs.Wrap(errs.ErrCodeGeneration, err, "failed to apply chapter draft")
		}
		c.progress(ProgressEvent{Stage: StageContent, Chapter: d.index + 1, Message: fmt.Sprintf("drafted %s", b.Chapters[d.index].Title)})
	}
	return nil
}

func (c *Coordinator) proofreadStage(ctx context.Context, b *book.Book) error {
	c.progress(ProgressEvent{Stage: StageProofread, Message: fmt.Sprintf("proofreading %d chapters", len(b.Chapters))})
	revised, err := c.fanOut(ctx, len(b.Chapters), func(ctx context.Context, i int) (string, error) {
		return c.gen.Proofread(ctx, b.Chapters[i].Content)
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeGeneration, err, "failed to proofread chapters")
	}
	for _, r := range revised {
		if err := b.SetChapterContent(r.index, r.value); err != nil {
			return errs.Wrap(errs.ErrCodeGeneration, err, "failed to apply proofread revision")
		}
		c.progress(ProgressEvent{Stage: StageProofread, Chapter: r.index + 1, Message: fmt.Sprintf("proofread %s", b.Chapters[r.index].Title)})
	}
	return nil
}

func (c *Coordinator) imagesStage(ctx context.Context, b *book.Book) error {
	style := b.Theme.ImageStyle

	c.progress(ProgressEvent{Stage: StageImages, Message: "generating cover art"})
	coverURL, err := c.gen.GenerateImage(ctx, b.CoverPrompt, style)
	if err != nil {
		return errs.Wrap(errs.ErrCodeGeneration, err, "failed to generate cover art")
	}
	b.SetCoverImageURL(coverURL)

	c.progress(ProgressEvent{Stage: StageImages, Message: fmt.Sprintf("generating %d chapter illustrations", len(b.Chapters))})
	urls, err := c.fanOut(ctx, len(b.Chapters), func(ctx context.Context, i int) (string, error) {
		return c.gen.GenerateImage(ctx, b.Chapters[i].ImagePrompt, style)
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeGeneration, err, "failed to generate chapter illustrations")
	}
	for _, u := range urls {
		if err := b.SetChapterImageURL(u.index, u.value); err != nil {
			return errs.Wrap(errs.ErrCodeGeneration, err, "failed to apply illustration url")
		}
		c.progress(ProgressEvent{Stage: StageImages, Chapter: u.index + 1, Message: fmt.Sprintf("illustrated %s", b.Chapters[u.index].Title)})
	}
	return nil
}

// indexed pairs one fan-out result with the chapter it belongs to.
type indexed struct {
	index int
	value string
}

// fanOut runs fn once per chapter with bounded concurrency and collects
// (index, result) pairs for the caller to apply sequentially. The
// goroutines never touch the book; a single failure cancels the rest.
func (c *Coordinator) fanOut(ctx context.Context, n int, fn func(ctx context.Context, i int) (string, error)) ([]indexed, error) {
	results := make([]indexed, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)
	for i := range n {
		g.Go(func() error {
			v, err := fn(gctx, i)
			if err != nil {
				return fmt.Errorf("chapter %d: %w", i+1, err)
			}
			results[i] = indexed{index: i, value: v}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Coordinator) progress(event ProgressEvent) {
	if c.onProgress != nil {
		c.onProgress(event)
	}
}
