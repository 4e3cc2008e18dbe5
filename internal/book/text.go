package book

import (
	"fmt"
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Reflow splits raw newline-delimited prose into paragraphs. Each line is
// trimmed and empty lines are dropped, so applying Reflow to the joined
// result of a previous Reflow yields the same paragraphs.
func Reflow(text string) []string {
	lines := strings.Split(text, "\n")
	paragraphs := make([]string, 0, len(lines))
	for _, line := range lines {
		if p := strings.TrimSpace(line); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// SanitizeFilename derives a filesystem-safe base name from a book title:
// whitespace runs become single underscores.
func SanitizeFilename(title string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(title), "_")
}

// Quote wraps a line in typographic double quotes, as epigraphs are
// rendered in both output pipelines.
func Quote(s string) string {
	return "“" + s + "”"
}

// ChapterLabel formats the display label for chapter n (1-based). Print
// headings, tables of contents and e-book navigation all use this form,
// so a reader sees the same label everywhere.
func ChapterLabel(n int, title string) string {
	return fmt.Sprintf("Chapter %d: %s", n, title)
}
