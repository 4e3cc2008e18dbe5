package generate

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/bookforge/bookforge/internal/book"
)

// throttled rate-limits every call to the wrapped generator.
type throttled struct {
	gen     ContentGenerator
	limiter *rate.Limiter
}

// Throttled wraps gen so its calls collectively respect the given
// requests-per-second budget. Generation backends meter requests, so
// implementations are typically wrapped before being handed to the
// Coordinator.
func Throttled(gen ContentGenerator, rps float64) ContentGenerator {
	return &throttled{gen: gen, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (t *throttled) PlanBook(ctx context.Context, prompt string) (*book.Plan, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.gen.PlanBook(ctx, prompt)
}

func (t *throttled) WriteChapter(ctx context.Context, cc ChapterContext) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return t.gen.WriteChapter(ctx, cc)
}

func (t *throttled) Proofread(ctx context.Context, text string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return t.gen.Proofread(ctx, text)
}

func (t *throttled) GenerateImage(ctx context.Context, prompt, style string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return t.gen.GenerateImage(ctx, prompt, style)
}
