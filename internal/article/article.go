// Package article holds the article entity that owns a block document, its
// validation rules and the mapping between blocks and persisted sections.
package article

import (
	"fmt"
	"strings"
	"time"

	"inkwell/api/internal/block"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusScheduled Status = "scheduled"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is one of the lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusScheduled, StatusArchived:
		return true
	}
	return false
}

// Fields are the editable article attributes besides the block body.
type Fields struct {
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Subtitle      string     `json:"subtitle"`
	Status        Status     `json:"status"`
	Introduction  string     `json:"introduction"`
	Conclusion    string     `json:"conclusion"`
	FeaturedImage string     `json:"featuredImage"`
	CategoryRef   string     `json:"categoryRef"`
	AuthorRef     string     `json:"authorRef"`
	Tags          []string   `json:"tags"`
	ScheduledAt   *time.Time `json:"scheduledAt,omitempty"`
}

type Article struct {
	ID string `json:"id"`
	Fields
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Section is the persisted form of a block, keyed by its position.
type Section struct {
	ArticleID  string         `json:"articleId"`
	OrderIndex int            `json:"orderIndex"`
	BlockID    string         `json:"blockId"`
	BlockType  block.Type     `json:"blockType"`
	Content    string         `json:"content"`
	Heading    string         `json:"heading"`
	ImageURL   string         `json:"imageUrl"`
	BlockData  map[string]any `json:"blockData"`
}

// ValidationError is returned for input that must not reach the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Normalize trims the text fields, defaults the status to draft and
// derives a slug from the title when none is set.
func Normalize(f Fields) Fields {
	f.Title = strings.TrimSpace(f.Title)
	f.Subtitle = strings.TrimSpace(f.Subtitle)
	f.Slug = strings.TrimSpace(f.Slug)
	if f.Status == "" {
		f.Status = StatusDraft
	}
	if f.Slug == "" {
		f.Slug = Slugify(f.Title)
	}
	tags := make([]string, 0, len(f.Tags))
	for _, t := range f.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	f.Tags = tags
	return f
}

// Validate checks normalized fields.
func Validate(f Fields) error {
	switch {
	case f.Title == "":
		return &ValidationError{Field: "title", Message: "title is required"}
	case f.Slug == "":
		return &ValidationError{Field: "slug", Message: "slug is required"}
	case f.Slug != Slugify(f.Slug):
		return &ValidationError{Field: "slug", Message: "slug may only contain lowercase letters, digits and dashes"}
	case !f.Status.Valid():
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", f.Status)}
	case f.Status == StatusScheduled && f.ScheduledAt == nil:
		return &ValidationError{Field: "scheduledAt", Message: "scheduled articles need a publish time"}
	}
	return nil
}

// SectionsFromBlocks maps the ordered block list to the full section set
// submitted on every save. OrderIndex is the block position.
func SectionsFromBlocks(articleID string, blocks []block.Block) []Section {
	sections := make([]Section, len(blocks))
	for i, b := range blocks {
		sections[i] = Section{
			ArticleID:  articleID,
			OrderIndex: i,
			BlockID:    b.ID,
			BlockType:  b.Type,
			Content:    b.Content,
			Heading:    b.Heading,
			ImageURL:   b.ImageURL,
			BlockData:  b.BlockData(),
		}
	}
	return sections
}

// BlocksFromSections rebuilds blocks in order_index order. Sections are
// expected to be sorted already.
func BlocksFromSections(sections []Section) []block.Block {
	blocks := make([]block.Block, 0, len(sections))
	for _, s := range sections {
		id := s.BlockID
		if id == "" {
			id = fmt.Sprintf("sec_%s_%d", s.ArticleID, s.OrderIndex)
		}
		blocks = append(blocks, block.Block{
			ID:       id,
			Type:     s.BlockType,
			Content:  s.Content,
			Heading:  s.Heading,
			ImageURL: s.ImageURL,
			Data:     block.DecodeData(s.BlockType, s.BlockData),
		})
	}
	return blocks
}
