// Package book defines the canonical book record produced by the model
// builder and consumed read-only by the layout and packaging pipelines.
package book

// Role classifies a character's part in the story.
type Role string

// Character roles.
const (
	RoleProtagonist Role = "protagonist"
	RoleAntagonist  Role = "antagonist"
	RoleSupporting  Role = "supporting"
)

// Author describes the book's author.
type Author struct {
	Name         string   `json:"name" validate:"required"`
	Bio          string   `json:"bio"`
	AlsoByAuthor []string `json:"alsoByAuthor"`
}

// Character is one entry of the book's character roster.
type Character struct {
	Name        string `json:"name" validate:"required"`
	Role        Role   `json:"role" validate:"omitempty,oneof=protagonist antagonist supporting"`
	Description string `json:"description"`
}

// FontPairing names the heading and body font families and the stylesheet
// URL they can be fetched from.
type FontPairing struct {
	Heading   string `json:"heading"`
	Body      string `json:"body"`
	SourceURL string `json:"sourceUrl" validate:"omitempty,url"`
}

// Theme governs the book's visual identity: illustration style and
// typography. The same pairing binds headings and body copy in both the
// paginated rendering and the e-book stylesheet.
type Theme struct {
	FontPairing FontPairing `json:"fontPairing"`
	ImageStyle  string      `json:"imageStyle"`
}

// Chapter is one narrative unit. Content and ImageURL start empty and are
// filled in by the generation coordinator before packaging.
type Chapter struct {
	Title       string `json:"title" validate:"required"`
	Summary     string `json:"summary"`
	Epigraph    string `json:"epigraph"`
	ImagePrompt string `json:"imagePrompt"`
	Content     string `json:"content"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
}

// Book is the root aggregate describing one generated work. It is built
// once from a Plan, enriched in place chapter-by-chapter, then treated as
// read-only input by both output pipelines.
type Book struct {
	ID             string      `json:"id"`
	Title          string      `json:"title" validate:"required"`
	Publisher      string      `json:"publisher"`
	PublishedYear  int         `json:"publishedYear"`
	PlotSummary    string      `json:"plotSummary"`
	Preface        string      `json:"preface"`
	Dedication     string      `json:"dedication"`
	BackCoverBlurb string      `json:"backCoverBlurb"`
	Author         Author      `json:"author"`
	MainCharacters []Character `json:"mainCharacters" validate:"dive"`
	Theme          Theme       `json:"theme"`
	CoverImageURL  string      `json:"coverImageUrl" validate:"omitempty,url"`
	CoverPrompt    string      `json:"coverPrompt"`
	Chapters       []Chapter   `json:"chapters" validate:"dive"`
	KDPKeywords    []string    `json:"kdpKeywords"`
	KDPCategories  []string    `json:"kdpCategories"`
}

// PlanChapter is the outline of a chapter before its prose and
// illustration exist.
type PlanChapter struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Epigraph    string `json:"epigraph"`
	ImagePrompt string `json:"imagePrompt"`
}

// Plan is the raw book outline returned by the planning stage. The builder
// normalizes it into a canonical Book.
type Plan struct {
	Title          string        `json:"title"`
	Publisher      string        `json:"publisher"`
	PlotSummary    string        `json:"plotSummary"`
	Preface        string        `json:"preface"`
	Dedication     string        `json:"dedication"`
	BackCoverBlurb string        `json:"backCoverBlurb"`
	Author         Author        `json:"author"`
	MainCharacters []Character   `json:"mainCharacters"`
	Theme          Theme         `json:"theme"`
	CoverPrompt    string        `json:"coverPrompt"`
	Chapters       []PlanChapter `json:"chapters"`
	KDPKeywords    []string      `json:"kdpKeywords"`
	KDPCategories  []string      `json:"kdpCategories"`
}
